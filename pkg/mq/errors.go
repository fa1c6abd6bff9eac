package mq

import "errors"

// RequeueError asks the consumer to nack the delivery with requeue instead of
// dropping it. Handlers return it for failures a later redelivery can fix.
type RequeueError struct {
	Err error
}

func (e RequeueError) Error() string {
	return "requeue: " + e.Err.Error()
}

func (e RequeueError) Unwrap() error {
	return e.Err
}

// Temporary marks err for requeue. Already marked errors are returned as is.
func Temporary(err error) error {
	if err == nil || ShouldRequeue(err) {
		return err
	}
	return RequeueError{Err: err}
}

func ShouldRequeue(err error) bool {
	var re RequeueError
	return errors.As(err, &re)
}
