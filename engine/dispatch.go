package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// native builds the object the bootstrap receives as its second argument.
// Every method returns plain values or a reply object; none of them throw,
// so error text is raised as a script Error by the bootstrap.
func (s *Session) native() *goja.Object {
	obj := s.vm.NewObject()
	_ = obj.Set("log", s.nativeLog)
	_ = obj.Set("call", s.nativeCall)
	_ = obj.Set("has", func(name string) bool {
		return s.ops.Has(name)
	})
	_ = obj.Set("list", func(goja.FunctionCall) goja.Value {
		names := s.ops.Names()
		items := make([]any, len(names))
		for i, n := range names {
			items[i] = n
		}
		return s.vm.NewArray(items...)
	})
	_ = obj.Set("search", func(query string, limit int) goja.Value {
		hits, err := s.ops.Search(query, limit)
		return s.reply(hits, err)
	})
	_ = obj.Set("describe", func(name string) goja.Value {
		doc, err := s.ops.Describe(name)
		return s.reply(doc, err)
	})
	return obj
}

// nativeCall dispatches ops.call(name, args). The op runs on the calling
// goroutine with the run's context.
func (s *Session) nativeCall(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	if s.maxCalls > 0 && len(s.opCalls) >= s.maxCalls {
		return s.failure(fmt.Errorf("%w: %s: at most %d calls per run", ErrOpLimit, name, s.maxCalls))
	}
	var args []any
	if exported, ok := call.Argument(1).Export().([]any); ok {
		args = exported
	}

	start := time.Now()
	result, err := s.ops.Call(s.runCtx, name, args)
	record := OpCall{
		Op:         name,
		Args:       args,
		DurationMs: time.Since(start).Milliseconds(),
	}

	var data []byte
	if err == nil {
		if data, err = json.Marshal(result); err != nil {
			err = fmt.Errorf("%s: cannot encode result: %w", name, err)
		}
	}

	var reply goja.Value
	if err != nil {
		record.Error = err.Error()
		s.logger.Debug("op failed", zap.String("op", name), zap.Error(err))
		reply = s.failure(err)
	} else {
		record.Result = result
		reply = s.success(data)
	}

	s.opCalls = append(s.opCalls, record)
	if s.onOpCall != nil {
		s.onOpCall(record)
	}
	return reply
}

// reply encodes a host result as {ok, json} or {ok: false, error}. Results
// cross into the script as JSON so they arrive as ordinary script objects
// and arrays rather than wrapped host values.
func (s *Session) reply(v any, err error) goja.Value {
	if err != nil {
		return s.failure(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return s.failure(fmt.Errorf("cannot encode result: %w", err))
	}
	return s.success(data)
}

func (s *Session) success(data []byte) goja.Value {
	obj := s.vm.NewObject()
	_ = obj.Set("ok", true)
	_ = obj.Set("json", string(data))
	return obj
}

func (s *Session) failure(err error) goja.Value {
	obj := s.vm.NewObject()
	_ = obj.Set("ok", false)
	_ = obj.Set("error", err.Error())
	return obj
}
