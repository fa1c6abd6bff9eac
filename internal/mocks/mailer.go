package mocks

import (
	"context"

	"github.com/Behyna/notification-services/pkg/mailer"
	"github.com/stretchr/testify/mock"
)

type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, email mailer.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
