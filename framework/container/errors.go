package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("container: entry not found")

	// ErrContainer matches every *ContainerError, whether it was raised while
	// registering a binding or while building an instance.
	ErrContainer = errors.New("container: error")
)

// NotFoundError is returned by Get when nothing is registered under ID.
// It means "nothing bound", as opposed to "bound but unbuildable".
type NotFoundError struct{ ID string }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: no entry registered for [%s]", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ContainerError reports a configuration or resolution failure.
//
// Every recursion level wraps the error of the level below it, so the root
// cause stays reachable through Unwrap and the full identifier path through
// Chain:
//
//	container: cannot resolve [Greeter]: cannot resolve parameter 'hello' of [Greeting]: [HelloImpl] is not instantiable
type ContainerError struct {
	// ID is the identifier or type the failure is attributed to.
	ID  string
	Msg string
	Err error
}

func (e *ContainerError) Error() string {
	var b strings.Builder
	b.WriteString("container: ")

	var err error = e
	for err != nil {
		ce, ok := err.(*ContainerError)
		if !ok {
			b.WriteString(err.Error())
			break
		}
		b.WriteString(ce.Msg)
		if ce.Err != nil {
			b.WriteString(": ")
		}
		err = ce.Err
	}
	return b.String()
}

func (e *ContainerError) Unwrap() error { return e.Err }

func (e *ContainerError) Is(target error) bool { return target == ErrContainer }

// Chain returns the identifiers from the outermost failure down to the root cause.
func (e *ContainerError) Chain() []string {
	var ids []string
	for ce := e; ce != nil; {
		ids = append(ids, ce.ID)
		var next *ContainerError
		if !errors.As(ce.Err, &next) {
			break
		}
		ce = next
	}
	return ids
}

func configError(id, format string, args ...any) *ContainerError {
	return &ContainerError{ID: id, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(id string, err error, format string, args ...any) *ContainerError {
	return &ContainerError{ID: id, Msg: fmt.Sprintf(format, args...), Err: err}
}
