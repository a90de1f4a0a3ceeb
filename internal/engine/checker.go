package engine

import "context"

// Verdict is the classification of a single candidate file.
type Verdict struct {
	Path  string
	Valid bool
	// Output is the trimmed standard output of the oracle, if any.
	Output string
	// Err is set when the oracle could not be invoked or answered outside its
	// contract. A verdict with Err set is never valid.
	Err error
}

// Checker decides whether a file is a valid imaging object.
//
// Implementations must fail closed: anything other than an explicit positive
// answer yields Valid == false. Check never returns an error; invocation
// problems are reported through Verdict.Err.
type Checker interface {
	Named
	Check(ctx context.Context, path string) Verdict
}

type CheckFunc func(ctx context.Context, path string) Verdict

type checkFunction struct {
	name string
	kind string
	fn   CheckFunc
}

func (c *checkFunction) Name() string {
	return c.name
}

func (c *checkFunction) Kind() string {
	return c.kind
}

func (c *checkFunction) Check(ctx context.Context, path string) Verdict {
	return c.fn(ctx, path)
}

// CheckFunction adapts a function into a Checker.
func CheckFunction(name string, kind string, fn CheckFunc) Checker {
	return &checkFunction{name: name, kind: kind, fn: fn}
}
