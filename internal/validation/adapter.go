package validation

import (
	"context"
)

// ErrorSink receives validation messages keyed by field name. The unkeyed
// entry uses "". Implementations are owned by the caller and are not
// expected to be safe for concurrent writers.
type ErrorSink interface {
	AddError(field, message string)
}

// ValidateAndCollect validates instance with the default engine and copies
// every flattened message into sink. See Engine.ValidateAndCollect.
func ValidateAndCollect(instance Validatable, vc *Context, sink ErrorSink) (bool, error) {
	return defaultEngine.ValidateAndCollect(instance, vc, sink)
}

// ValidateAndCollectAsync is the AsyncValidatable variant of ValidateAndCollect.
// See Engine.ValidateAndCollectAsync.
func ValidateAndCollectAsync(ctx context.Context, instance AsyncValidatable, vc *Context, sink ErrorSink) *Future[bool] {
	return defaultEngine.ValidateAndCollectAsync(ctx, instance, vc, sink)
}

// CollectErrors validates instance and returns the populated sink.
func CollectErrors[S ErrorSink](instance Validatable, vc *Context, sink S) (S, error) {
	if _, err := defaultEngine.ValidateAndCollect(instance, vc, sink); err != nil {
		return sink, err
	}
	return sink, nil
}

// CollectErrorsAsync validates instance in the background and resolves to the populated sink.
func CollectErrorsAsync[S ErrorSink](ctx context.Context, instance AsyncValidatable, vc *Context, sink S) *Future[S] {
	return submit(defaultEngine.pool, func() (S, error) {
		if _, err := defaultEngine.validateAndCollectAsync(ctx, instance, vc, sink); err != nil {
			return sink, err
		}
		return sink, nil
	})
}

// ValidateAndCollect runs the engine against instance, flattens the results
// and adds each message to sink: under its first member name when it has
// one, and always under "". It returns the engine's validity flag.
//
// Engine faults are returned unchanged. An invalid instance is not an error.
func (e *Engine) ValidateAndCollect(instance Validatable, vc *Context, sink ErrorSink) (bool, error) {
	results, isValid, err := e.TryValidateObject(instance, vc)
	if err != nil {
		return false, err
	}

	addToSink(Flatten(results), sink)

	return isValid, nil
}

// ValidateAndCollectAsync starts validation on the engine's worker pool and
// returns a Future for the validity flag. ctx is handed to tag rules and the
// ValidateAsync hook only; once started the work runs to completion.
func (e *Engine) ValidateAndCollectAsync(ctx context.Context, instance AsyncValidatable, vc *Context, sink ErrorSink) *Future[bool] {
	return submit(e.pool, func() (bool, error) {
		return e.validateAndCollectAsync(ctx, instance, vc, sink)
	})
}

func (e *Engine) validateAndCollectAsync(ctx context.Context, instance AsyncValidatable, vc *Context, sink ErrorSink) (bool, error) {
	results, isValid, err := e.TryValidateObjectAsync(ctx, instance, vc)
	if err != nil {
		return false, err
	}

	addToSink(Flatten(results), sink)

	return isValid, nil
}

// addToSink records only the first member name; other members of the same
// result are not used as keys.
func addToSink(results []ValidationResult, sink ErrorSink) {
	for _, result := range results {
		message := result.ErrorMessage()

		if members := result.MemberNames(); len(members) > 0 {
			sink.AddError(members[0], message)
		}
		sink.AddError("", message)
	}
}
