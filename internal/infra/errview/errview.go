// Package errview converts Go error values into entity.ErrorView chains.
//
// Stack frames are taken from errors that follow the github.com/pkg/errors
// convention of exposing a StackTrace() method. Causes are followed through
// Unwrap() error, Unwrap() []error (first element) and Cause() error.
package errview

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"

	pkgerrors "github.com/pkg/errors"

	"errnotice/internal/domain/entity"
)

// maxChainDepth stops the walk on cyclic or pathological chains.
const maxChainDepth = 64

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

type causer interface {
	Cause() error
}

type multiUnwrapper interface {
	Unwrap() []error
}

// FromError builds the view chain for err. It returns nil for a nil error.
func FromError(err error) *entity.ErrorView {
	if err == nil {
		return nil
	}

	head := newView(err)
	cur := head
	for depth := 1; depth < maxChainDepth; depth++ {
		err = nextCause(err)
		if err == nil {
			break
		}
		cur.Cause = newView(err)
		cur = cur.Cause
	}
	return head
}

func newView(err error) *entity.ErrorView {
	return &entity.ErrorView{
		TypeName: TypeName(err),
		Message:  Message(err),
		Frames:   Frames(err),
	}
}

// TypeName returns the fully-qualified runtime type name of err, for example
// "*errors.errorString" or "*errnotice/internal/app.TimeoutError".
func TypeName(err error) string {
	if err == nil {
		return ""
	}
	if p, ok := err.(*panicked); ok {
		err = p.err
	}
	t := reflect.TypeOf(err)
	prefix := ""
	for t.Kind() == reflect.Pointer {
		prefix += "*"
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return prefix + t.String()
	}
	return prefix + t.PkgPath() + "." + t.Name()
}

// Message returns err.Error(). A panicking Error method yields "".
func Message(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = ""
		}
	}()
	return err.Error()
}

// Frames returns the stack attached directly to err, or nil.
func Frames(err error) []entity.Frame {
	st, ok := err.(stackTracer)
	if !ok {
		return nil
	}
	return framesFromStack(st.StackTrace())
}

func framesFromStack(stack pkgerrors.StackTrace) []entity.Frame {
	out := make([]entity.Frame, 0, len(stack))
	for _, f := range stack {
		// pkg/errors stores return addresses; step back into the call.
		pc := uintptr(f) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			out = append(out, entity.Frame{File: "unknown", Number: 0, Method: "unknown"})
			continue
		}
		file, line := fn.FileLine(pc)
		out = append(out, entity.Frame{File: file, Number: line, Method: fn.Name()})
	}
	return out
}

func nextCause(err error) error {
	if p, ok := err.(*panicked); ok {
		err = p.err
	}
	if next := errors.Unwrap(err); next != nil {
		return next
	}
	if m, ok := err.(multiUnwrapper); ok {
		for _, e := range m.Unwrap() {
			if e != nil {
				return e
			}
		}
		return nil
	}
	if c, ok := err.(causer); ok {
		if next := c.Cause(); next != err {
			return next
		}
	}
	return nil
}

// panicked attaches the stack captured at recovery to an error that carried
// none. It is invisible to views and type names: the panicked error stays the
// outermost link and only its frames come from here.
type panicked struct {
	err   error
	stack pkgerrors.StackTrace
}

func (p *panicked) Error() string                    { return p.err.Error() }
func (p *panicked) Unwrap() error                    { return p.err }
func (p *panicked) StackTrace() pkgerrors.StackTrace { return p.stack }

// FromPanic converts a recovered panic value into an error whose frames point
// at the panic site. An error value keeps its own type and message; any other
// value becomes "panic: <value>".
func FromPanic(rec any) error {
	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", rec)
	} else if _, hasStack := err.(stackTracer); hasStack {
		return err
	}
	return &panicked{err: err, stack: callerStack()}
}

// callerStack returns the stack of FromPanic's caller.
func callerStack() pkgerrors.StackTrace {
	st := pkgerrors.WithStack(errPlaceholder).(stackTracer).StackTrace()
	// Drop callerStack and FromPanic.
	if len(st) > 2 {
		return st[2:]
	}
	return st
}

var errPlaceholder = errors.New("stack")
