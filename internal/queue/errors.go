package queue

import (
	"errors"
	"fmt"
)

// ErrQueue matches every error returned by Client.
var ErrQueue = errors.New("queue operation failed")

type Op string

const (
	OpResolve Op = "resolve"
	OpSend    Op = "send"
	OpReceive Op = "receive"
	OpDelete  Op = "delete"
)

// Error records which operation failed on which queue.
type Error struct {
	Op    Op
	Queue string
	Err   error
}

func newError(op Op, queueName string, err error) *Error {
	return &Error{Op: op, Queue: queueName, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("queue %s %q: %v", e.Op, e.Queue, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrQueue
}
