package notification

import (
	"slices"

	"github.com/Behyna/notification-services/internal/errs"
)

type CategoryPolicy struct {
	cfg Config
}

func NewCategoryPolicy(cfg Config) *CategoryPolicy {
	return &CategoryPolicy{cfg: cfg}
}

// Check validates def.Category against the registry and every receiver's user type.
func (p *CategoryPolicy) Check(def Definition, receivers []Receiver) error {
	if def.Category == PriorityCategory || !def.CheckSubscription {
		return nil
	}

	if def.Category == "" {
		return errs.Configuration("%s: category is required", def.Name)
	}

	categories, ok := p.cfg.Categories[def.Kind.Key()]
	if !ok {
		return errs.Configuration("%s: missing categories config for %s", def.Name, def.Kind)
	}
	if _, ok := categories[def.Category]; !ok {
		return errs.Configuration("%s: unknown category %q for %s", def.Name, def.Category, def.Kind)
	}

	if len(p.cfg.UserTypes) == 0 {
		return nil
	}

	for _, r := range receivers {
		userType, err := p.userType(r)
		if err != nil {
			return err
		}
		if !slices.Contains(userType.Categories[def.Kind.Key()], def.Category) {
			return errs.Configuration("%s: user type %s is not allowed category %q for %s",
				def.Name, userType.Name, def.Category, def.Kind)
		}
	}

	return nil
}

// UserCategories returns the categories per channel key the receiver may be sent.
// With no user type mapping configured every registered category is allowed.
func (p *CategoryPolicy) UserCategories(r Receiver) (map[string][]string, error) {
	if len(p.cfg.UserTypes) == 0 {
		all := make(map[string][]string, len(p.cfg.Categories))
		for channel, categories := range p.cfg.Categories {
			for name := range categories {
				all[channel] = append(all[channel], name)
			}
			slices.Sort(all[channel])
		}
		return all, nil
	}

	userType, err := p.userType(r)
	if err != nil {
		return nil, err
	}
	return userType.Categories, nil
}

func (p *CategoryPolicy) userType(r Receiver) (UserType, error) {
	for _, ut := range p.cfg.UserTypes {
		if ut.Predicate(r) {
			return ut, nil
		}
	}
	return UserType{}, errs.Configuration("no user type matches receiver %d", r.ID)
}
