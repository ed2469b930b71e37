package catchpanic

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries a recovered panic value along with the stack of the
// goroutine that panicked.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

func Catch(fn func()) (err error) {
	defer func() {
		if ex := recover(); ex != nil {
			err = fmt.Errorf("catchpanic.Catch: %w", &PanicError{Value: ex, Stack: debug.Stack()})
		}
	}()

	fn()

	return
}

func CatchErr1[T any](fn func() (T, error)) (T, error) {
	var res T
	var err error

	if err1 := Catch(func() { res, err = fn() }); err1 != nil {
		var zero T
		return zero, err1
	}

	return res, err
}
