package sms

import (
	"context"
	"errors"
	"time"

	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/pkg/smsprovider"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type ProviderService interface {
	SendWithRetry(ctx context.Context, msg smsprovider.Message) (smsprovider.Response, error)
	Lookup(ctx context.Context, number string) (smsprovider.LookupResult, error)
}

type Provider struct {
	provider smsprovider.Provider
	breaker  *gobreaker.CircuitBreaker
	config   smsprovider.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewProviderService(provider smsprovider.Provider, config smsprovider.Config, logger *zap.Logger,
	metrics *metrics.Metrics) ProviderService {
	if config.MaxRetry <= 0 {
		config.MaxRetry = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sms-provider",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isPermanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("SMS provider circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Provider{provider: provider, breaker: breaker, config: config, logger: logger, metrics: metrics}
}

func (p *Provider) SendWithRetry(ctx context.Context, msg smsprovider.Message) (smsprovider.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= p.config.MaxRetry; attempt++ {
		p.logger.Debug("Attempting to send SMS",
			zap.Int("attempt", attempt),
			zap.String("to", msg.To),
			zap.String("from", msg.From))

		response, err := p.send(ctx, msg)
		if err == nil {
			p.logger.Info("SMS sent successfully",
				zap.String("sid", response.SID),
				zap.String("status", response.Status),
				zap.Int("attempt", attempt))
			return response, nil
		}

		lastErr = err
		p.logger.Warn("SMS send attempt failed",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.String("to", msg.To))

		if isPermanent(err) || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p.logger.Error("Non-retryable error encountered",
				zap.Error(err),
				zap.String("to", msg.To))
			return smsprovider.Response{}, err
		}

		if attempt < p.config.MaxRetry {
			delay := time.Duration(attempt) * 100 * time.Millisecond
			p.logger.Debug("Waiting before retry", zap.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return smsprovider.Response{}, ctx.Err()
			}
		}
	}

	p.logger.Error("All retry attempts exhausted",
		zap.Error(lastErr),
		zap.Int("maxRetries", p.config.MaxRetry),
		zap.String("to", msg.To))

	return smsprovider.Response{}, lastErr
}

func (p *Provider) send(ctx context.Context, msg smsprovider.Message) (smsprovider.Response, error) {
	start := time.Now()

	result, err := p.breaker.Execute(func() (interface{}, error) {
		providerCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
		return p.provider.Send(providerCtx, msg)
	})
	p.metrics.RecordProviderCall(time.Since(start), err == nil)
	if err != nil {
		return smsprovider.Response{}, err
	}

	return result.(smsprovider.Response), nil
}

func (p *Provider) Lookup(ctx context.Context, number string) (smsprovider.LookupResult, error) {
	providerCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()
	return p.provider.Lookup(providerCtx, number)
}

func isPermanent(err error) bool {
	switch smsprovider.CodeOf(err) {
	case smsprovider.ErrorCodeInvalidNumber, smsprovider.ErrorCodeUnauthorized, smsprovider.ErrorCodeNotSupported:
		return true
	default:
		return false
	}
}
