package validation

import (
	"github.com/alitto/pond/v2"
)

// AsyncConcurrency bounds how many asynchronous validations an Engine runs
// at once. Further submissions queue until a worker is free.
const AsyncConcurrency = 128

// Future is the pending outcome of an asynchronous validation.
//
//	isValid, err := engine.ValidateAndCollectAsync(ctx, req, vc, modelState).Await()
type Future[T any] struct {
	task  pond.Task
	value T
}

// Await blocks until the validation finished. The error is the engine fault,
// if any; an invalid instance is reported through the value.
func (f *Future[T]) Await() (T, error) {
	err := f.task.Wait()
	return f.value, err
}

// submit runs fn on pool. The value is written before the task completes,
// so it is safe to read once Wait returned.
func submit[T any](pool pond.Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{}
	f.task = pool.SubmitErr(func() error {
		value, err := fn()
		f.value = value
		return err
	})
	return f
}
