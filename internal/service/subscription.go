package service

import (
	"context"
	"slices"
	"time"

	"github.com/Behyna/notification-services/internal/constants"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/notification"
	"github.com/Behyna/notification-services/internal/repository"
	"go.uber.org/zap"
)

type SubscriptionService interface {
	Get(ctx context.Context, user notification.Receiver) (Subscriptions, error)
	Put(ctx context.Context, user notification.Receiver, cmd UpdateSubscriptionsCommand) (Subscriptions, error)
}

type subscription struct {
	repo      repository.UnsubscribedUserRepository
	policy    *notification.CategoryPolicy
	labels    map[string]map[string]string
	txManager repository.TxManager
	logger    *zap.Logger
}

func NewSubscriptionService(repo repository.UnsubscribedUserRepository, cfg notification.Config,
	txManager repository.TxManager, logger *zap.Logger) SubscriptionService {
	return &subscription{
		repo:      repo,
		policy:    notification.NewCategoryPolicy(cfg),
		labels:    cfg.Labels(),
		txManager: txManager,
		logger:    logger,
	}
}

func (s *subscription) Get(ctx context.Context, user notification.Receiver) (Subscriptions, error) {
	categories, err := s.policy.UserCategories(user)
	if err != nil {
		s.logger.Error("Failed to resolve user categories", zap.Error(err), zap.Int64("userID", user.ID))
		return Subscriptions{}, NewServiceError(constants.ErrCodeConfiguration, err)
	}

	row, err := s.repo.GetOrCreate(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load subscriptions", zap.Error(err), zap.Int64("userID", user.ID))
		return Subscriptions{}, NewServiceError(constants.ErrCodeDatabase, ErrDatabase)
	}

	return s.represent(row, categories), nil
}

func (s *subscription) Put(ctx context.Context, user notification.Receiver, cmd UpdateSubscriptionsCommand) (Subscriptions, error) {
	categories, err := s.policy.UserCategories(user)
	if err != nil {
		s.logger.Error("Failed to resolve user categories", zap.Error(err), zap.Int64("userID", user.ID))
		return Subscriptions{}, NewServiceError(constants.ErrCodeConfiguration, err)
	}

	var row *model.UnsubscribedUser
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		row, err = s.repo.GetOrCreate(ctx, user.ID)
		if err != nil {
			return err
		}

		if cmd.UnsubscribedFromAll != nil {
			row.UnsubscribedFromAll = *cmd.UnsubscribedFromAll
		}
		row.SetUnsubscriptions(unsubscriptions(categories, cmd.Channels))
		row.UpdatedAt = time.Now()

		return s.repo.Save(ctx, row)
	})
	if err != nil {
		s.logger.Error("Failed to save subscriptions", zap.Error(err), zap.Int64("userID", user.ID))
		return Subscriptions{}, NewServiceError(constants.ErrCodeDatabase, ErrDatabase)
	}

	s.logger.Info("Subscriptions updated",
		zap.Int64("userID", user.ID),
		zap.Bool("unsubscribedFromAll", row.UnsubscribedFromAll))

	return s.represent(row, categories), nil
}

// unsubscriptions rebuilds the stored opt-outs. Channels absent from the request
// end up with no opt-outs.
func unsubscriptions(categories map[string][]string, channels map[string]ChannelPreferences) model.Unsubscriptions {
	out := make(model.Unsubscriptions, len(categories))
	for channel, names := range categories {
		out[channel] = []string{}

		prefs, ok := channels[channel]
		if !ok {
			continue
		}
		for _, name := range names {
			if subscribed, ok := prefs.Categories[name]; ok && !subscribed {
				out[channel] = append(out[channel], name)
			}
		}
		if prefs.UnsubscribedFromAll {
			out[channel] = append(out[channel], model.UnsubscribeAll)
		}
	}
	return out
}

func (s *subscription) represent(row *model.UnsubscribedUser, categories map[string][]string) Subscriptions {
	result := Subscriptions{
		UnsubscribedFromAll: row.UnsubscribedFromAll,
		Labels:              make(map[string]map[string]string, len(categories)),
		Channels:            make(map[string]ChannelPreferences, len(categories)),
	}

	for channel, names := range categories {
		unsubscribed := row.Categories(channel)
		prefs := ChannelPreferences{
			UnsubscribedFromAll: slices.Contains(unsubscribed, model.UnsubscribeAll),
			Categories:          make(map[string]bool, len(names)),
		}
		labels := make(map[string]string, len(names))

		for _, name := range names {
			prefs.Categories[name] = !slices.Contains(unsubscribed, name)
			labels[name] = s.labels[channel][name]
		}

		result.Channels[channel] = prefs
		result.Labels[channel] = labels
	}

	return result
}
