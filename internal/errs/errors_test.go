package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		requeue bool
	}{
		{name: "configuration", err: errs.Configuration("missing app %q", "ios")},
		{name: "validation", err: errs.Validation("bad number")},
		{name: "transport", err: errs.Transport("smtp 550")},
		{name: "data overflow", err: fmt.Errorf("apns: %w", errs.ErrDataOverflow)},
		{name: "not supported", err: errs.NotSupported("add to queue")},
		{name: "parse failure", err: fmt.Errorf("%w: bad payload", errs.ErrParseFailure)},
		{name: "database", err: errors.New("connection refused"), requeue: true},
		{name: "already temporary", err: mq.Temporary(errors.New("broker")), requeue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errs.Retryable(tt.err)

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.requeue, mq.ShouldRequeue(err))
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, errs.Retryable(nil))
	})
}
