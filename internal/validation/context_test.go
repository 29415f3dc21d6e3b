package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type emailChecker interface {
	Exists(email string) bool
}

type fakeEmailChecker map[string]bool

func (f fakeEmailChecker) Exists(email string) bool {
	return f[email]
}

func TestContext_ServiceLookup(t *testing.T) {
	t.Parallel()

	services := NewServices()
	services.Provide("emails", fakeEmailChecker{"taken@example.com": true})

	vc := NewContext("instance", services, nil)

	checker, ok := GetService[emailChecker](vc, "emails")
	assert.True(t, ok)
	assert.True(t, checker.Exists("taken@example.com"))

	_, ok = GetService[emailChecker](vc, "missing")
	assert.False(t, ok)

	// Registered, but not the requested type.
	_, ok = GetService[*Services](vc, "emails")
	assert.False(t, ok)
}

func TestContext_WithoutProvider(t *testing.T) {
	t.Parallel()

	vc := NewContext(42, nil, nil)

	_, ok := vc.Service("anything")
	assert.False(t, ok)
	assert.Equal(t, 42, vc.Instance)
	assert.NotNil(t, vc.Items)

	var nilContext *Context
	_, ok = nilContext.Service("anything")
	assert.False(t, ok)
}

func TestServices_ZeroValueAndReplace(t *testing.T) {
	t.Parallel()

	var services Services
	services.Provide("clock", 1)
	services.Provide("clock", 2)

	got, ok := services.Service("clock")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}
