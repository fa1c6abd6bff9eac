package mocks

import (
	"context"
	"time"

	"github.com/Behyna/notification-services/internal/model"
	"github.com/stretchr/testify/mock"
)

type PhoneRepository struct {
	mock.Mock
}

func (p *PhoneRepository) Allocate(ctx context.Context) (*model.Phone, error) {
	args := p.Called(ctx)
	phone, _ := args.Get(0).(*model.Phone)
	return phone, args.Error(1)
}

func (p *PhoneRepository) FindByNumber(ctx context.Context, number string) (*model.Phone, error) {
	args := p.Called(ctx, number)
	phone, _ := args.Get(0).(*model.Phone)
	return phone, args.Error(1)
}

func (p *PhoneRepository) FindAll(ctx context.Context) ([]model.Phone, error) {
	args := p.Called(ctx)
	phones, _ := args.Get(0).([]model.Phone)
	return phones, args.Error(1)
}

type PhoneReceiverRepository struct {
	mock.Mock
}

func (p *PhoneReceiverRepository) FindByNumber(ctx context.Context, number string) (*model.PhoneReceiver, error) {
	args := p.Called(ctx, number)
	receiver, _ := args.Get(0).(*model.PhoneReceiver)
	return receiver, args.Error(1)
}

func (p *PhoneReceiverRepository) Create(ctx context.Context, receiver *model.PhoneReceiver) error {
	args := p.Called(ctx, receiver)
	return args.Error(0)
}

func (p *PhoneReceiverRepository) Update(ctx context.Context, receiver *model.PhoneReceiver) error {
	args := p.Called(ctx, receiver)
	return args.Error(0)
}

type PhoneSentRepository struct {
	mock.Mock
}

func (p *PhoneSentRepository) Create(ctx context.Context, sent *model.PhoneSent) error {
	args := p.Called(ctx, sent)
	return args.Error(0)
}

func (p *PhoneSentRepository) Update(ctx context.Context, sent *model.PhoneSent) error {
	args := p.Called(ctx, sent)
	return args.Error(0)
}

func (p *PhoneSentRepository) GetByID(ctx context.Context, id int64) (*model.PhoneSent, error) {
	args := p.Called(ctx, id)
	sent, _ := args.Get(0).(*model.PhoneSent)
	return sent, args.Error(1)
}

func (p *PhoneSentRepository) FindBySMSID(ctx context.Context, smsID string) (*model.PhoneSent, error) {
	args := p.Called(ctx, smsID)
	sent, _ := args.Get(0).(*model.PhoneSent)
	return sent, args.Error(1)
}

type PendingMessageRepository struct {
	mock.Mock
}

func (p *PendingMessageRepository) Create(ctx context.Context, pending *model.PhonePendingMessage) error {
	args := p.Called(ctx, pending)
	return args.Error(0)
}

func (p *PendingMessageRepository) Next(ctx context.Context, fromPhone string) (*model.PhonePendingMessage, error) {
	args := p.Called(ctx, fromPhone)
	pending, _ := args.Get(0).(*model.PhonePendingMessage)
	return pending, args.Error(1)
}

func (p *PendingMessageRepository) Delete(ctx context.Context, id int64) error {
	args := p.Called(ctx, id)
	return args.Error(0)
}

func (p *PendingMessageRepository) DistinctFromPhones(ctx context.Context) ([]string, error) {
	args := p.Called(ctx)
	numbers, _ := args.Get(0).([]string)
	return numbers, args.Error(1)
}

type PhoneReceivedRawRepository struct {
	mock.Mock
}

func (p *PhoneReceivedRawRepository) Create(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	args := p.Called(ctx, raw)
	return args.Error(0)
}

func (p *PhoneReceivedRawRepository) Update(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	args := p.Called(ctx, raw)
	return args.Error(0)
}

func (p *PhoneReceivedRawRepository) GetByID(ctx context.Context, id int64) (*model.PhoneReceivedRaw, error) {
	args := p.Called(ctx, id)
	raw, _ := args.Get(0).(*model.PhoneReceivedRaw)
	return raw, args.Error(1)
}

func (p *PhoneReceivedRawRepository) FindPendingBefore(ctx context.Context, before time.Time, limit int) ([]model.PhoneReceivedRaw, error) {
	args := p.Called(ctx, before, limit)
	raws, _ := args.Get(0).([]model.PhoneReceivedRaw)
	return raws, args.Error(1)
}

type PhoneReceivedRepository struct {
	mock.Mock
}

func (p *PhoneReceivedRepository) Create(ctx context.Context, received *model.PhoneReceived) error {
	args := p.Called(ctx, received)
	return args.Error(0)
}

func (p *PhoneReceivedRepository) ExistsBySMSID(ctx context.Context, smsID string) (bool, error) {
	args := p.Called(ctx, smsID)
	return args.Bool(0), args.Error(1)
}
