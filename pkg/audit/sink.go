// Package audit persists finished runs. Sinks are write-only: nothing stored here is ever read back
// into a run.
package audit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

// Sink stores the record of a finished run.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close(ctx context.Context) error
}

// ToolCallRecord summarizes one dispatched tool call.
type ToolCallRecord struct {
	CallID  string `json:"call_id"`
	Tool    string `json:"tool"`
	IsError bool   `json:"is_error"`
}

// Record is the audit view of an agent.Result.
type Record struct {
	RunID      string           `json:"run_id"`
	Posture    string           `json:"posture"`
	Status     string           `json:"status"`
	Turns      int              `json:"turns"`
	Cancelled  bool             `json:"cancelled"`
	Reason     string           `json:"reason,omitempty"`
	FinalText  string           `json:"final_text"`
	ToolCalls  []ToolCallRecord `json:"tool_calls"`
	Transcript []models.Message `json:"transcript"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewRecord flattens a result. Tool calls are listed in transcript order with their error flag
// taken from the matching tool result message.
func NewRecord(res *agent.Result, at time.Time) Record {
	rec := Record{
		RunID:      res.RunID,
		Posture:    string(res.Posture),
		Status:     string(res.Status),
		Turns:      res.Turns,
		Cancelled:  res.Cancelled,
		FinalText:  res.FinalText,
		Transcript: res.Transcript,
		CreatedAt:  at.UTC(),
	}
	if res.Reason != nil {
		rec.Reason = res.Reason.Error()
	}

	failed := map[string]bool{}
	for _, m := range res.Transcript {
		if m.Role == models.RoleTool && m.IsError {
			failed[m.ToolCallID] = true
		}
	}
	rec.ToolCalls = []ToolCallRecord{}
	for _, m := range res.Transcript {
		for _, call := range m.ToolCalls {
			rec.ToolCalls = append(rec.ToolCalls, ToolCallRecord{CallID: call.ID, Tool: call.Name, IsError: failed[call.ID]})
		}
	}
	return rec
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Write(context.Context, Record) error { return nil }
func (NopSink) Close(context.Context) error         { return nil }

// MultiSink writes each record to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Hook adapts a sink to agent.Options.OnComplete. Write failures are logged and dropped.
func Hook(sink Sink, logger *zap.SugaredLogger, timeout time.Duration) func(context.Context, *agent.Result) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return func(ctx context.Context, res *agent.Result) {
		if sink == nil || res == nil {
			return
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := sink.Write(ctx, NewRecord(res, time.Now())); err != nil {
			logger.Warnw("audit write failed", "run_id", res.RunID, "error", err)
		}
	}
}
