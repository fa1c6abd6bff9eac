package notification

import (
	"fmt"

	"github.com/Behyna/notification-services/internal/config"
)

// Predicate classifies a receiver into a user type.
type Predicate func(Receiver) bool

// UserType is one entry of the ordered user type mapping. The first matching
// predicate decides which categories a receiver may get.
type UserType struct {
	Name       string
	Predicate  Predicate
	Categories map[string][]string
}

// Config is the injected notification configuration.
type Config struct {
	// Categories maps channel key to category name to label.
	Categories map[string]map[string]string
	UserTypes  []UserType
	History    bool
}

// DefaultPredicates are the user type predicates known to configuration files.
func DefaultPredicates() map[string]Predicate {
	return map[string]Predicate{
		"for_admin": func(r Receiver) bool { return r.IsSuperuser },
		"for_user":  func(r Receiver) bool { return !r.IsSuperuser },
		"for_all":   func(Receiver) bool { return true },
	}
}

func NewConfig(cfg config.Notifications, predicates map[string]Predicate) (Config, error) {
	c := Config{Categories: cfg.Categories, History: cfg.History}

	for _, uc := range cfg.UserCategories {
		predicate, ok := predicates[uc.UserType]
		if !ok {
			return Config{}, fmt.Errorf("no predicate registered for user type %q", uc.UserType)
		}
		c.UserTypes = append(c.UserTypes, UserType{
			Name:       uc.UserType,
			Predicate:  predicate,
			Categories: uc.Categories,
		})
	}

	return c, nil
}

// Labels returns the human readable category labels per channel key.
func (c Config) Labels() map[string]map[string]string {
	labels := make(map[string]map[string]string, len(c.Categories))
	for channel, categories := range c.Categories {
		copied := make(map[string]string, len(categories))
		for name, label := range categories {
			copied[name] = label
		}
		labels[channel] = copied
	}
	return labels
}
