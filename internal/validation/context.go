package validation

import (
	"context"
	"sync"
)

// ServiceProvider resolves named services for validation rules that need
// something outside the instance, e.g. a repository for uniqueness checks.
type ServiceProvider interface {
	Service(name string) (any, bool)
}

// Services is a map backed ServiceProvider.
//
// The zero value is ready to use. It is safe for concurrent use so one
// registry can be shared by every request.
type Services struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewServices creates an empty registry.
func NewServices() *Services {
	return &Services{services: make(map[string]any)}
}

// Provide registers (or replaces) the service under name.
func (s *Services) Provide(name string, service any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.services == nil {
		s.services = make(map[string]any)
	}
	s.services[name] = service
}

func (s *Services) Service(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.services[name]
	return service, ok
}

// Context bundles the instance under validation with the service lookup
// used by rules. It is created per validation call.
type Context struct {
	// Instance is the object being validated.
	Instance any

	// Items carries arbitrary per-call values for rules.
	Items map[string]any

	services ServiceProvider
}

// NewContext creates a validation context. services may be nil.
func NewContext(instance any, services ServiceProvider, items map[string]any) *Context {
	if items == nil {
		items = make(map[string]any)
	}

	return &Context{
		Instance: instance,
		Items:    items,
		services: services,
	}
}

// Service resolves a service by name. It reports false when the context
// has no provider or the provider does not know the name.
func (vc *Context) Service(name string) (any, bool) {
	if vc == nil || vc.services == nil {
		return nil, false
	}
	return vc.services.Service(name)
}

// GetService resolves a service and asserts it to T.
func GetService[T any](vc *Context, name string) (T, bool) {
	var zero T

	service, ok := vc.Service(name)
	if !ok {
		return zero, false
	}

	typed, ok := service.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// ruleStateKey carries per-call rule state through the validator's context.
type ruleStateKey struct{}

// ruleState lets rules registered with Engine.RegisterRule see the
// validation Context and report faults back to the engine.
type ruleState struct {
	vc  *Context
	err error
}

func withRuleState(ctx context.Context, state *ruleState) context.Context {
	return context.WithValue(ctx, ruleStateKey{}, state)
}

func ruleStateFrom(ctx context.Context) *ruleState {
	if state, ok := ctx.Value(ruleStateKey{}).(*ruleState); ok {
		return state
	}
	return &ruleState{}
}
