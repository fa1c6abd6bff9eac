package mq_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/stretchr/testify/assert"
)

func TestTemporary(t *testing.T) {
	base := errors.New("connection reset")

	t.Run("marks for requeue and keeps the cause", func(t *testing.T) {
		err := mq.Temporary(base)

		assert.True(t, mq.ShouldRequeue(err))
		assert.ErrorIs(t, err, base)
	})

	t.Run("survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("handle task: %w", mq.Temporary(base))

		assert.True(t, mq.ShouldRequeue(err))
	})

	t.Run("does not mark twice", func(t *testing.T) {
		once := mq.Temporary(base)

		assert.Equal(t, once, mq.Temporary(once))
		assert.Equal(t, "requeue: connection reset", once.Error())
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, mq.Temporary(nil))
		assert.False(t, mq.ShouldRequeue(nil))
	})

	t.Run("plain errors are dropped", func(t *testing.T) {
		assert.False(t, mq.ShouldRequeue(base))
	})
}
