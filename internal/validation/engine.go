package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by types that know how to validate themselves.
//
// Typical pattern:
//   - Define a struct with validator tags (`validate:"required,email"`)
//   - Implement Validate for rules that tags can't express (cross-field checks)
//   - Return nil when there is nothing to report
//
// Only the instance handed to the engine has its hook called. Nested fields
// are checked through their tags alone, even when their type implements
// Validatable; a parent that needs them must call their Validate itself and
// wrap the results in a CompositeResult.
type Validatable interface {
	Validate(vc *Context) []ValidationResult
}

// AsyncValidatable is the I/O-bound counterpart of Validatable. ValidateAsync
// may block (e.g. a uniqueness lookup in a store); a returned error is an
// engine fault, not a validation failure.
type AsyncValidatable interface {
	ValidateAsync(ctx context.Context, vc *Context) ([]ValidationResult, error)
}

// RuleFunc is a context-aware validation rule bound to a struct tag.
//
// It receives the validation Context so it can resolve services. Returning
// an error aborts validation; the error is returned to the caller unchanged.
type RuleFunc func(ctx context.Context, vc *Context, fl validator.FieldLevel) (bool, error)

// Engine runs struct tag rules and the self-validation hook and produces
// ValidationResults. It wraps a single *validator.Validate, which caches
// struct metadata and is safe for concurrent use.
//
// Rules must be registered before the engine is shared between goroutines.
// Asynchronous validations run on the engine's own pond worker pool.
type Engine struct {
	validate *validator.Validate
	messages map[string]string
	pool     pond.Pool
}

// NewEngine creates an Engine that reports fields by their json name.
func NewEngine() *Engine {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Use the json tag as field name so sink keys match the payload the client sent.
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Engine{
		validate: validate,
		messages: make(map[string]string),
		pool:     pond.NewPool(AsyncConcurrency),
	}
}

var defaultEngine = NewEngine()

// Stop waits for running asynchronous validations and rejects new ones.
// Validations submitted afterwards resolve to an error.
func (e *Engine) Stop() {
	e.pool.StopAndWait()
}

// Validator exposes the underlying validator, e.g. to register plain
// (non context-aware) validations or aliases. Failures of an alias are
// reported with the message of the rule that failed inside it.
func (e *Engine) Validator() *validator.Validate {
	return e.validate
}

// RegisterRule binds rule to tag. message is the failure text shown after
// the field name (e.g. "is already taken").
func (e *Engine) RegisterRule(tag, message string, rule RuleFunc) error {
	if tag == "" {
		return errors.New("validation: rule tag must not be empty")
	}
	if rule == nil {
		return fmt.Errorf("validation: rule %q has no function", tag)
	}

	err := e.validate.RegisterValidationCtx(tag, func(ctx context.Context, fl validator.FieldLevel) bool {
		state := ruleStateFrom(ctx)

		// A previous rule already faulted: the whole call fails, skip the remaining I/O.
		if state.err != nil {
			return true
		}

		ok, err := rule(ctx, state.vc, fl)
		if err != nil {
			state.err = fmt.Errorf("validation rule %q on %s: %w", tag, fl.FieldName(), err)
			return true
		}
		return ok
	})
	if err != nil {
		return fmt.Errorf("registering validation rule %q: %w", tag, err)
	}

	if message != "" {
		e.messages[tag] = message
	}
	return nil
}

// TryValidateObject validates instance and reports its results and validity.
//
// Tag rules run first. The Validate hook only runs when every tag rule
// passed, so it can rely on well-formed fields.
func (e *Engine) TryValidateObject(instance Validatable, vc *Context) ([]ValidationResult, bool, error) {
	vc = ensureContext(instance, vc)

	results, err := e.validateStruct(context.Background(), instance, vc)
	if err != nil {
		return nil, false, err
	}

	if len(results) == 0 {
		results = instance.Validate(vc)
	}

	return results, len(results) == 0, nil
}

// TryValidateObjectAsync is TryValidateObject for AsyncValidatable. ctx
// reaches tag rules and the ValidateAsync hook.
func (e *Engine) TryValidateObjectAsync(ctx context.Context, instance AsyncValidatable, vc *Context) ([]ValidationResult, bool, error) {
	vc = ensureContext(instance, vc)

	results, err := e.validateStruct(ctx, instance, vc)
	if err != nil {
		return nil, false, err
	}

	if len(results) == 0 {
		results, err = instance.ValidateAsync(ctx, vc)
		if err != nil {
			return nil, false, err
		}
	}

	return results, len(results) == 0, nil
}

// validateStruct runs the tag rules and converts failures into results.
func (e *Engine) validateStruct(ctx context.Context, instance any, vc *Context) ([]ValidationResult, error) {
	if !hasTagRules(instance) {
		return nil, nil
	}

	state := &ruleState{vc: vc}
	err := e.validate.StructCtx(withRuleState(ctx, state), instance)

	// A rule fault wins over ordinary failures collected in the same pass.
	if state.err != nil {
		return nil, state.err
	}
	if err == nil {
		return nil, nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		// InvalidValidationError and friends: the engine could not run.
		return nil, err
	}

	return e.groupFieldErrors(fieldErrors), nil
}

// groupFieldErrors turns validator.FieldErrors into results. Failures inside
// nested structs are wrapped in one CompositeResult per nesting level, in
// order of first appearance.
func (e *Engine) groupFieldErrors(fieldErrors validator.ValidationErrors) []ValidationResult {
	root := &resultNode{}

	for _, fe := range fieldErrors {
		parents := namespaceParents(fe.Namespace())

		node := root
		for _, segment := range parents {
			node = node.child(segment)
		}
		node.add(NewResult(e.translate(fe), fe.Field()))
	}

	return root.results
}

// resultNode is one level of the nesting tree built by groupFieldErrors.
// The root has no composite and collects top level results.
type resultNode struct {
	composite *CompositeResult
	children  map[string]*resultNode
	results   []ValidationResult
}

func (n *resultNode) add(r ValidationResult) {
	if n.composite == nil {
		n.results = append(n.results, r)
		return
	}
	n.composite.AddResult(r)
}

func (n *resultNode) child(segment string) *resultNode {
	if c, ok := n.children[segment]; ok {
		return c
	}

	if n.children == nil {
		n.children = make(map[string]*resultNode)
	}

	c := &resultNode{composite: NewCompositeResult(segment+" is invalid", segment)}
	n.children[segment] = c
	n.add(c.composite)
	return c
}

// namespaceParents returns the path between the root struct and the failing
// field, e.g. "Signup.address.street" -> ["address"].
func namespaceParents(namespace string) []string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 2 {
		return nil
	}
	return parts[1 : len(parts)-1]
}

// hasTagRules reports whether instance is something the validator can walk.
// Non-struct Validatable types (maps, named slices) only have their hook.
// A nil pointer still goes to the validator so the fault surfaces.
func hasTagRules(instance any) bool {
	v := reflect.ValueOf(instance)
	if !v.IsValid() {
		return true
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Struct
}

func ensureContext(instance any, vc *Context) *Context {
	if vc != nil {
		return vc
	}
	return NewContext(instance, nil, nil)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
