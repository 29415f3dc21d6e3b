// Package validation contains the logic for validating
// request data and copying the results into an error sink.
//
// It uses the `validator` library to enforce rules (like
// required fields or email formats) defined in struct tags,
// runs the type's own Validate hook, flattens nested results
// and appends every message to a model-state style sink so the
// client gets per-field errors it can understand.
//
// Flow for one instance:
//  1. Engine runs struct tag rules (nested structs become CompositeResult).
//  2. If no tag rule failed, the instance's Validate / ValidateAsync hook runs.
//  3. Results are flattened depth first.
//  4. Each message is added under its first member name (if any) and under "".
//
// Only the root instance is self-validated. Nested structs are validated
// through their tags; their own Validate hooks are not called.
package validation
