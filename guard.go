package execlog

import (
	"fmt"
)

// Execute runs action and returns its result and true. If action returns an
// error or panics, the failure is logged at error severity, onError (when
// set) is called with it, and Execute returns the zero value and false. The
// failure never reaches the caller.
func Execute[T any](l Logger, action func() (T, error), onError func(error)) (T, bool) {
	var zero T
	result, err := protect(action)
	if err == nil {
		return result, true
	}
	HandleError(l, err, emptyString)
	if onError != nil {
		callHandler(l, onError, err)
	}
	return zero, false
}

// Run is Execute for actions without a result.
func Run(l Logger, action func() error, onError func(error)) bool {
	var wrapped func() (struct{}, error)
	if action != nil {
		wrapped = func() (struct{}, error) {
			return struct{}{}, action()
		}
	}
	_, ok := Execute(l, wrapped, onError)
	return ok
}

// ExecuteCustom logs a failure like Execute and then lets catch decide the
// result. Without a catch block the failure is returned as is.
func ExecuteCustom[T any](l Logger, action func() (T, error), catch func(error) (T, error)) (T, error) {
	result, err := protect(action)
	if err == nil {
		return result, nil
	}
	HandleError(l, err, emptyString)
	if catch == nil {
		var zero T
		return zero, err
	}
	return protect(func() (T, error) { return catch(err) })
}

// HandleError logs an already caught error. An empty message becomes
// "Oops! Something went wrong: <err>".
func HandleError(l Logger, err error, message string) {
	if l == nil || err == nil {
		return
	}
	if message == emptyString {
		message = GuardMessagePrefix + err.Error()
	}
	l.LogError(message, err)
}

// protect calls action, converting a nil action and any panic into an error.
func protect[T any](action func() (T, error)) (result T, err error) {
	if action == nil {
		return result, New(errMsgNilAction)
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, recovered(r)
		}
	}()
	return action()
}

// callHandler runs a recovery handler; a panicking handler is logged, not propagated.
func callHandler(l Logger, onError func(error), err error) {
	_, herr := protect(func() (struct{}, error) {
		onError(err)
		return struct{}{}, nil
	})
	if herr != nil {
		HandleError(l, herr, emptyString)
	}
}

// recovered turns a recovered panic value into an *ErrorRecord located at the
// panic site. Error values are kept as the cause.
func recovered(r any) *ErrorRecord {
	f, ok := panicFrame()
	if err, isErr := r.(error); isErr {
		return newLocated("panic", err, f, ok)
	}
	return newLocated(fmt.Sprintf("panic: %v", r), nil, f, ok)
}
