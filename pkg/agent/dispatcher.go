package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/Amarendra0207/Agentic-Travel/internal/logging"
	"github.com/Amarendra0207/Agentic-Travel/pkg/concurrent"
	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

const (
	errorKindUnknown = "tool_unknown"
	errorKindFailure = "tool_execution_failure"

	defaultToolParallelism = 4
)

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	// Parallelism bounds concurrent tool calls within one turn. 1 runs them sequentially.
	Parallelism int
	// Timeout bounds each tool call. Zero means only the run context applies.
	Timeout time.Duration
	Logger  *zap.SugaredLogger
}

// Dispatcher executes tool calls against a catalog. It never fails: unknown tools and tool
// failures become error results in the conversation.
type Dispatcher struct {
	catalog     *ToolCatalog
	parallelism int
	timeout     time.Duration
	logger      *zap.SugaredLogger
}

func NewDispatcher(catalog *ToolCatalog, opts DispatcherOptions) *Dispatcher {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = defaultToolParallelism
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Dispatcher{catalog: catalog, parallelism: parallelism, timeout: opts.Timeout, logger: logger}
}

// Dispatch runs one call and returns its tool result message.
func (d *Dispatcher) Dispatch(ctx context.Context, runID string, call models.ToolCall) (result models.Message) {
	log := logging.WithTool(d.logger.With("run_id", runID), call.Name, call.ID)

	tool, spec, ok := d.catalog.Lookup(call.Name)
	if !ok {
		log.Warnw("model requested unknown tool")
		return errorResult(call, errorKindUnknown, fmt.Errorf("%w: %s", ErrToolUnknown, call.Name))
	}

	if call.ArgumentsError != "" {
		log.Warnw("model sent malformed tool arguments", "error", call.ArgumentsError)
		return errorResult(call, errorKindFailure, &ToolExecutionError{
			Tool: spec.Name,
			Err:  fmt.Errorf("%w: %s", ErrInvalidArguments, call.ArgumentsError),
		})
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("tool panicked", "panic", r)
			result = errorResult(call, errorKindFailure, &ToolExecutionError{Tool: spec.Name, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := tool.Invoke(callCtx, ToolRequest{RunID: runID, CallID: call.ID, Arguments: call.Arguments})
	if err != nil {
		log.Warnw("tool failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return errorResult(call, errorKindFailure, &ToolExecutionError{Tool: spec.Name, Err: err})
	}
	log.Debugw("tool completed", "duration_ms", time.Since(start).Milliseconds(), "bytes", len(resp.Content))
	return models.ToolResultMessage(call.ID, call.Name, resp.Content, false)
}

// DispatchAll runs the calls of one turn concurrently and returns one result per call, in call order.
func (d *Dispatcher) DispatchAll(ctx context.Context, runID string, calls []models.ToolCall) []models.Message {
	results, _ := concurrent.ParallelMap(ctx, calls, func(ctx context.Context, _ int, call models.ToolCall) models.Message {
		return d.Dispatch(ctx, runID, call)
	}, d.parallelism)

	for i, call := range calls {
		if results[i].Role != "" {
			continue
		}
		cause := context.Cause(ctx)
		if cause == nil {
			cause = errors.New("call was not dispatched")
		}
		results[i] = errorResult(call, errorKindFailure, &ToolExecutionError{Tool: call.Name, Err: cause})
	}
	return results
}

// errorResult encodes a failure as {"error":{"kind":...,"tool":...,"message":...}}.
func errorResult(call models.ToolCall, kind string, err error) models.Message {
	payload, _ := sjson.Set(`{}`, "error.kind", kind)
	payload, _ = sjson.Set(payload, "error.tool", call.Name)
	payload, _ = sjson.Set(payload, "error.message", err.Error())
	return models.ToolResultMessage(call.ID, call.Name, payload, true)
}
