package notification

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/repository"
)

type SubscriptionFilter struct {
	repo repository.UnsubscribedUserRepository
}

func NewSubscriptionFilter(repo repository.UnsubscribedUserRepository) *SubscriptionFilter {
	return &SubscriptionFilter{repo: repo}
}

// Filter drops receivers that opted out of def's channel and category. Order is preserved.
func (f *SubscriptionFilter) Filter(ctx context.Context, def Definition, receivers []Receiver) ([]Receiver, error) {
	if !def.CheckSubscription || def.Category == PriorityCategory || len(receivers) == 0 {
		return receivers, nil
	}

	rows, err := f.repo.FindByUserIDs(ctx, receiverIDs(receivers))
	if err != nil {
		return nil, err
	}

	unsubscribed := make(map[int64]model.UnsubscribedUser, len(rows))
	for _, row := range rows {
		unsubscribed[row.UserID] = row
	}

	kept := make([]Receiver, 0, len(receivers))
	for _, r := range receivers {
		if row, ok := unsubscribed[r.ID]; ok && row.IsUnsubscribed(def.Kind.Key(), def.Category) {
			continue
		}
		kept = append(kept, r)
	}

	return kept, nil
}
