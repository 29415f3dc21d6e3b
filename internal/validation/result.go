package validation

// ValidationResult is one validation failure: an error message plus the
// member (field) names it applies to.
//
// Implementations are immutable once handed to the adapter.
type ValidationResult interface {
	// ErrorMessage is the human-readable message.
	ErrorMessage() string

	// MemberNames lists the fields the failure applies to. May be empty.
	MemberNames() []string
}

// Result is a leaf ValidationResult.
type Result struct {
	message string
	members []string
}

// NewResult creates a leaf result for the given members.
//
// Example:
//
//	validation.NewResult("email is required", "email")
func NewResult(message string, members ...string) *Result {
	return &Result{
		message: message,
		members: append([]string(nil), members...),
	}
}

func (r *Result) ErrorMessage() string {
	return r.message
}

func (r *Result) MemberNames() []string {
	return append([]string(nil), r.members...)
}

func (r *Result) String() string {
	return r.message
}

// CompositeResult groups nested results, typically the failures of a
// sub-object. Its own message and members are never added to a sink;
// Flatten replaces it with its leaves.
type CompositeResult struct {
	Result
	results []ValidationResult
}

// NewCompositeResult creates an empty composite. Children are attached with AddResult.
func NewCompositeResult(message string, members ...string) *CompositeResult {
	return &CompositeResult{
		Result: Result{
			message: message,
			members: append([]string(nil), members...),
		},
	}
}

// AddResult appends a nested result. Only meant to be used while building
// the composite, before it is returned to a caller.
func (c *CompositeResult) AddResult(r ValidationResult) {
	c.results = append(c.results, r)
}

// Results returns the nested results in insertion order.
func (c *CompositeResult) Results() []ValidationResult {
	return append([]ValidationResult(nil), c.results...)
}

// Flatten walks results depth first and returns every leaf in order.
// Composite nodes are dropped and their children spliced in place.
//
// There is no cycle detection: a composite that (indirectly) contains
// itself never terminates.
func Flatten(results []ValidationResult) []ValidationResult {
	return flattenInto(nil, results)
}

func flattenInto(flattened, results []ValidationResult) []ValidationResult {
	for _, r := range results {
		if composite, ok := r.(*CompositeResult); ok {
			flattened = flattenInto(flattened, composite.results)
			continue
		}
		flattened = append(flattened, r)
	}

	return flattened
}
