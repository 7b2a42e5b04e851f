package engine

import (
	"context"

	"github.com/dop251/goja"
)

const (
	textUndefined = "undefined"
	textNull      = "null"
)

// render converts a completion value to text.
//
// Primitives use the script's own string conversion, so strings come back
// without quotes and numbers in their shortest form. Functions, Error and
// Date objects and primitive wrappers also use it, and symbols render as
// String(sym) does. Other objects and arrays are encoded with the
// JSON.stringify captured at construction; when that yields undefined the
// string conversion is used instead. A promise is unwrapped once its job
// queue has drained: a fulfilled promise renders its value, a rejected or
// pending one is a ScriptError.
func (s *Session) render(ctx context.Context, v goja.Value) (string, error) {
	switch {
	case v == nil, goja.IsUndefined(v):
		return textUndefined, nil
	case goja.IsNull(v):
		return textNull, nil
	}

	if _, isSym := v.(*goja.Symbol); isSym {
		return s.callString(ctx, v)
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String(), nil
	}

	switch obj.ClassName() {
	case "Promise":
		if p, ok := obj.Export().(*goja.Promise); ok {
			return s.renderPromise(ctx, p)
		}
	case "Error":
		return s.toString(ctx, v)
	case "Date", "String", "Number", "Boolean", "BigInt":
		return s.callString(ctx, v)
	}
	if _, isFunc := goja.AssertFunction(v); isFunc {
		return s.toString(ctx, v)
	}

	out, err := s.stringify(s.jsonObj, v)
	if err != nil {
		return "", s.convertError(ctx, err)
	}
	if out == nil || goja.IsUndefined(out) {
		return s.toString(ctx, v)
	}
	return out.String(), nil
}

func (s *Session) renderPromise(ctx context.Context, p *goja.Promise) (string, error) {
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return s.render(ctx, p.Result())
	case goja.PromiseStateRejected:
		reason, err := s.render(ctx, p.Result())
		if err != nil {
			return "", err
		}
		return "", &ScriptError{Message: "promise rejected: " + reason}
	default:
		return "", &ScriptError{Message: "promise still pending"}
	}
}

// callString applies the String function captured at construction.
func (s *Session) callString(ctx context.Context, v goja.Value) (string, error) {
	out, err := s.stringFn(goja.Undefined(), v)
	if err != nil {
		return "", s.convertError(ctx, err)
	}
	return out.String(), nil
}

// toString applies the script's String conversion. A throwing toString
// becomes a ScriptError.
func (s *Session) toString(ctx context.Context, v goja.Value) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			if ex, ok := p.(*goja.Exception); ok {
				out, err = "", s.convertError(ctx, ex)
				return
			}
			if ie, ok := p.(*goja.InterruptedError); ok {
				out, err = "", s.convertError(ctx, ie)
				return
			}
			panic(p)
		}
	}()
	return v.String(), nil
}
