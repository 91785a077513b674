package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"

	"github.com/Chative-trip-planner/server/internal/trip/model"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	errUnknownTool  = "unknown_tool"
	errLimitReached = "tool_limit_reached"
)

// ErrToolLimit marks calls beyond the per-batch cap. They are never executed.
var ErrToolLimit = errors.New(errLimitReached)

// Sink receives every successful result, in request order, before it is
// reported to the model. A Sink error is a persistence failure and aborts the
// batch.
type Sink interface {
	Ingest(ctx context.Context, call schema.ToolCall, res model.ToolResult) (note string, err error)
}

// Outcome is the result of one requested invocation.
type Outcome struct {
	Call    schema.ToolCall
	Status  string
	Result  model.ToolResult
	Err     error
	Note    string
	Message *schema.Message
}

// reply is the JSON body of the tool message fed back to the model.
type reply struct {
	Status  string           `json:"status"`
	Kind    model.ResultKind `json:"kind,omitempty"`
	Data    any              `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
	Name    string           `json:"name,omitempty"`
}

// Dispatcher runs one batch of tool calls. Unlike compose.ToolsNode, a failed
// or unknown call becomes an error result and never fails the batch.
type Dispatcher struct {
	registry    Registry
	callTimeout time.Duration
	parallelism int
	maxCalls    int
}

func NewDispatcher(registry Registry, cfg model.ToolConfig) *Dispatcher {
	d := &Dispatcher{
		registry:    registry,
		callTimeout: cfg.CallTimeout,
		parallelism: cfg.Parallelism,
		maxCalls:    cfg.MaxCalls,
	}
	if d.callTimeout <= 0 {
		d.callTimeout = 20 * time.Second
	}
	if d.parallelism <= 0 {
		d.parallelism = 1
	}
	if d.maxCalls <= 0 {
		d.maxCalls = 6
	}
	return d
}

// Dispatch executes a batch of tool calls. Provider calls run concurrently,
// each under its own timeout, and a failing call never affects its siblings.
// Successful results then go through sink one at a time in request order.
// The returned outcomes line up with calls. The error is non-nil only when
// sink fails.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []schema.ToolCall, sink Sink) ([]Outcome, error) {
	outcomes := make([]Outcome, len(calls))

	var g errgroup.Group
	g.SetLimit(d.parallelism)

	for i, call := range calls {
		outcomes[i].Call = call
		name := call.Function.Name

		if i >= d.maxCalls {
			outcomes[i].Status = StatusError
			outcomes[i].Err = fmt.Errorf("%s: %w", name, ErrToolLimit)
			continue
		}
		t, ok := d.registry[name]
		if !ok {
			outcomes[i].Status = StatusError
			outcomes[i].Err = fmt.Errorf("%w: %q", model.ErrUnknownTool, name)
			continue
		}

		g.Go(func() error {
			res, err := d.invoke(ctx, name, t, call.Function.Arguments)
			if err != nil {
				outcomes[i].Status = StatusError
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Status = StatusSuccess
			outcomes[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	for i := range outcomes {
		o := &outcomes[i]
		if o.Status == StatusSuccess && sink != nil {
			note, err := sink.Ingest(ctx, o.Call, o.Result)
			if err != nil {
				return outcomes, fmt.Errorf("ingest %s result: %w", o.Call.Function.Name, err)
			}
			o.Note = note
		}
		o.Message = toolMessage(o)
		logOutcome(o)
	}
	return outcomes, nil
}

// invoke runs one tool and decodes its JSON output back into a ToolResult.
// Tool callbacks registered on ctx observe every call.
func (d *Dispatcher) invoke(ctx context.Context, name string, t tool.InvokableTool, arguments string) (model.ToolResult, error) {
	ctx = einocb.ReuseHandlers(ctx, &einocb.RunInfo{Name: name, Type: "TripTool", Component: components.ComponentOfTool})
	ctx = einocb.OnStart(ctx, &tool.CallbackInput{ArgumentsInJSON: arguments})

	var res model.ToolResult
	out, err := d.call(ctx, t, arguments)
	if err == nil {
		if err = json.Unmarshal([]byte(out), &res); err != nil {
			err = fmt.Errorf("decode %s output: %w", name, err)
		}
	}
	if err != nil {
		einocb.OnError(ctx, err)
		return model.ToolResult{}, err
	}
	einocb.OnEnd(ctx, &tool.CallbackOutput{Response: out})
	return res, nil
}

// call bounds a tool run by the per-call timeout even when the tool ignores
// its context. A timeout is reported like any other provider failure.
func (d *Dispatcher) call(ctx context.Context, t tool.InvokableTool, arguments string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		out, err := t.InvokableRun(callCtx, arguments)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return "", fmt.Errorf("provider call timed out after %s", d.callTimeout)
		}
		return r.out, r.err
	case <-callCtx.Done():
		return "", fmt.Errorf("provider call timed out after %s", d.callTimeout)
	}
}

func toolMessage(o *Outcome) *schema.Message {
	name := o.Call.Function.Name
	var body reply

	switch {
	case errors.Is(o.Err, model.ErrUnknownTool):
		body = reply{Status: StatusError, Error: errUnknownTool, Name: name}
	case errors.Is(o.Err, ErrToolLimit):
		body = reply{Status: StatusError, Error: errLimitReached, Name: name}
	case o.Status == StatusError:
		body = reply{Status: StatusError, Message: o.Err.Error()}
	case o.Result.Kind == model.ResultText:
		body = reply{Status: StatusSuccess, Kind: o.Result.Kind, Message: o.Note}
	default:
		body = reply{Status: StatusSuccess, Kind: o.Result.Kind, Data: o.Result.Payload(), Message: o.Note}
	}

	content, err := json.Marshal(body)
	if err != nil {
		content = []byte(fmt.Sprintf(`{"status":"error","message":%q}`, err.Error()))
	}
	msg := schema.ToolMessage(string(content), o.Call.ID)
	msg.ToolName = name
	return msg
}

func logOutcome(o *Outcome) {
	ev := logx.Debug()
	if o.Status == StatusError {
		ev = logx.Warn().Err(o.Err)
	}
	ev.Str("tool_name", o.Call.Function.Name).
		Str("tool_call_id", o.Call.ID).
		Str("status", o.Status).
		Str("kind", string(o.Result.Kind)).
		Msg("tool call finished")
}
