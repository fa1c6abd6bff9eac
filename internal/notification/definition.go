package notification

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Behyna/notification-services/internal/config"
)

// PriorityCategory bypasses category and subscription checks.
const PriorityCategory = "system"

const DefaultCategory = "default"

var ErrUnknownNotification = errors.New("UNKNOWN_NOTIFICATION")

// Definition describes one kind of notification: its channel, category and templates.
type Definition struct {
	Name              string
	Kind              ChannelKind
	Category          string
	CheckSubscription bool

	// Message is the SMS body template, the websocket message or the push alert.
	Message     string
	Title       string
	Description string
	Data        map[string]string

	// websocket
	Serializer string

	// sms
	SendAsync bool

	// email
	EmailName        string
	Subject          string
	Sender           string
	Attachments      []string
	EmailCategories  []string
	UnsubscribeGroup int

	Chain []ChainEntry
}

// ChainEntry schedules a follow-up notification. Transform and Condition name
// strategies registered in Strategies.
type ChainEntry struct {
	Notification string        `json:"notification"`
	Delay        time.Duration `json:"delay"`
	Transform    string        `json:"transform,omitempty"`
	Condition    string        `json:"condition,omitempty"`
}

type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
}

func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]Definition)}
}

// LoadRegistry builds a registry from configured definitions and checks that chains resolve.
func LoadRegistry(defs []config.Definition) (*Registry, error) {
	r := NewRegistry()

	for _, d := range defs {
		def, err := definitionFromConfig(d)
		if err != nil {
			return nil, err
		}
		r.Register(def)
	}

	for _, def := range r.definitions {
		for _, entry := range def.Chain {
			if _, ok := r.definitions[entry.Notification]; !ok {
				return nil, fmt.Errorf("%s chains unknown notification %q", def.Name, entry.Notification)
			}
		}
	}

	return r, nil
}

func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Name] = def
}

func (r *Registry) Lookup(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownNotification, name)
	}
	return def, nil
}

func definitionFromConfig(d config.Definition) (Definition, error) {
	kind, err := ParseChannelKind(d.Kind)
	if err != nil {
		return Definition{}, fmt.Errorf("definition %s: %w", d.Name, err)
	}

	category := d.Category
	if category == "" {
		category = DefaultCategory
	}

	// websocket notifications skip subscription checks unless configured otherwise
	checkSubscription := kind != WebSocket
	if d.CheckSubscription != nil {
		checkSubscription = *d.CheckSubscription
	}

	def := Definition{
		Name:              d.Name,
		Kind:              kind,
		Category:          category,
		CheckSubscription: checkSubscription,
		Message:           d.Message,
		Title:             d.Title,
		Description:       d.Description,
		Data:              d.Data,
		Serializer:        d.Serializer,
		SendAsync:         d.SendAsync,
		EmailName:         d.EmailName,
		Subject:           d.Subject,
		Sender:            d.Sender,
		Attachments:       d.Attachments,
		EmailCategories:   d.EmailCategories,
		UnsubscribeGroup:  d.UnsubscribeGroup,
	}

	for _, c := range d.Chain {
		def.Chain = append(def.Chain, ChainEntry{
			Notification: c.Notification,
			Delay:        c.Delay,
			Transform:    c.Transform,
			Condition:    c.Condition,
		})
	}

	return def, nil
}
