package notification

import (
	"fmt"
	"sync"
)

// Transform rewrites the arguments of a chained notification.
type Transform func(item any, receivers []Receiver, context map[string]any) (any, []Receiver, map[string]any, error)

// Condition decides whether a chained notification is sent, given the parent result.
type Condition func(item any, receivers []Receiver, context map[string]any, parent Result) bool

const (
	ConditionAlways          = "always"
	ConditionParentSucceeded = "parent_succeeded"
	TransformSuperusers      = "superusers_only"
)

// Strategies holds named transforms and conditions so chain entries stay serializable.
type Strategies struct {
	mu         sync.RWMutex
	transforms map[string]Transform
	conditions map[string]Condition
}

func NewStrategies() *Strategies {
	s := &Strategies{
		transforms: make(map[string]Transform),
		conditions: make(map[string]Condition),
	}

	s.RegisterCondition(ConditionAlways, func(any, []Receiver, map[string]any, Result) bool {
		return true
	})
	s.RegisterCondition(ConditionParentSucceeded, func(_ any, _ []Receiver, _ map[string]any, parent Result) bool {
		return parent.Sent > 0
	})
	s.RegisterTransform(TransformSuperusers, func(item any, receivers []Receiver, context map[string]any) (any, []Receiver, map[string]any, error) {
		kept := make([]Receiver, 0, len(receivers))
		for _, r := range receivers {
			if r.IsSuperuser {
				kept = append(kept, r)
			}
		}
		return item, kept, context, nil
	})

	return s
}

func (s *Strategies) RegisterTransform(name string, fn Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transforms[name] = fn
}

func (s *Strategies) RegisterCondition(name string, fn Condition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conditions[name] = fn
}

func (s *Strategies) Transform(name string) (Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn, ok := s.transforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", name)
	}
	return fn, nil
}

func (s *Strategies) Condition(name string) (Condition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn, ok := s.conditions[name]
	if !ok {
		return nil, fmt.Errorf("unknown condition %q", name)
	}
	return fn, nil
}
