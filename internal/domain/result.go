package domain

// ResultState tags a Result.
type ResultState int

const (
	// ResultDisabled means the read was skipped because a required
	// parameter was missing. It is not an error.
	ResultDisabled ResultState = iota
	ResultOk
	ResultErr
)

// Result is the outcome of a cached read: Ok(value), Err(err) or Disabled.
type Result[T any] struct {
	State ResultState
	Value T
	Err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{State: ResultOk, Value: v}
}

// Fail wraps an error.
func Fail[T any](err error) Result[T] {
	return Result[T]{State: ResultErr, Err: err}
}

// Disabled returns a skipped result.
func Disabled[T any]() Result[T] {
	return Result[T]{State: ResultDisabled}
}

func (r Result[T]) IsOk() bool       { return r.State == ResultOk }
func (r Result[T]) IsErr() bool      { return r.State == ResultErr }
func (r Result[T]) IsDisabled() bool { return r.State == ResultDisabled }

// Get returns the value and error in the conventional Go shape. A disabled
// result yields the zero value and a nil error.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}
