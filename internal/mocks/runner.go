package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type Runner struct {
	mock.Mock
}

func (r *Runner) Enqueue(ctx context.Context, name string, payload any, delay time.Duration) error {
	args := r.Called(ctx, name, payload, delay)
	return args.Error(0)
}
