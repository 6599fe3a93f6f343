package queue

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrInvalidArgument is returned by constructors when capacity is not positive.
var ErrInvalidArgument = errors.New("queue: capacity must be > 0")

// ErrClosed is returned by Insert after Shutdown, and by Retrieve once the
// queue is shut down and empty.
//
// ErrClosed is the normal end-of-stream signal for a pipeline stage.
var ErrClosed = errors.New("queue: closed")

// ErrWouldBlock is returned by TryInsert when the queue is full and by
// TryRetrieve when it is empty, as long as the queue is open.
//
// This is an alias for [iox.ErrWouldBlock]. The blocking operations never
// return it.
var ErrWouldBlock = iox.ErrWouldBlock

// IsClosed reports whether err is or wraps ErrClosed.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}
