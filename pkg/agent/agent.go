package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Amarendra0207/Agentic-Travel/internal/logging"
	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

// DefaultMaxTurns bounds model invocations per run when Options.MaxTurns is not set.
const DefaultMaxTurns = 25

// Agent drives the tool-calling loop: ask the model, run the tools it requests, repeat until it
// answers without tool calls or the turn bound is reached.
type Agent struct {
	binding      *binding
	catalog      *ToolCatalog
	dispatcher   *Dispatcher
	maxTurns     int
	instructions map[BudgetPosture]string
	logger       *zap.SugaredLogger
	onComplete   func(context.Context, *Result)
}

// Options configure a new Agent.
type Options struct {
	Model models.ChatModel
	// Catalog is used as is when set; otherwise one is built from Providers.
	Catalog   *ToolCatalog
	Providers []ToolProvider

	MaxTurns        int
	ToolParallelism int
	ToolTimeout     time.Duration

	// Instructions overrides the system instruction of individual postures.
	Instructions map[BudgetPosture]string
	Logger       *zap.SugaredLogger
	// OnComplete observes every run that ends with a status, e.g. to persist the transcript.
	OnComplete func(context.Context, *Result)
}

// New creates an Agent with the provided options.
func New(opts Options) (*Agent, error) {
	if opts.Model == nil {
		return nil, errors.New("agent requires a language model")
	}

	catalog := opts.Catalog
	if catalog == nil {
		var err error
		catalog, err = NewToolCatalog(opts.Providers...)
		if err != nil {
			return nil, fmt.Errorf("build tool catalog: %w", err)
		}
	}

	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	instructions := make(map[BudgetPosture]string, len(opts.Instructions))
	for p, text := range opts.Instructions {
		if p.Valid() && strings.TrimSpace(text) != "" {
			instructions[p] = text
		}
	}

	return &Agent{
		binding: newBinding(opts.Model, catalog),
		catalog: catalog,
		dispatcher: NewDispatcher(catalog, DispatcherOptions{
			Parallelism: opts.ToolParallelism,
			Timeout:     opts.ToolTimeout,
			Logger:      logger,
		}),
		maxTurns:     maxTurns,
		instructions: instructions,
		logger:       logger,
		onComplete:   opts.OnComplete,
	}, nil
}

// Catalog returns the tools offered to the model.
func (a *Agent) Catalog() *ToolCatalog { return a.catalog }

// ModelName identifies the bound chat model, e.g. "groq:llama-3.3-70b-versatile".
func (a *Agent) ModelName() string { return a.binding.model.Name() }

// MaxTurns returns the configured turn bound.
func (a *Agent) MaxTurns() int { return a.maxTurns }

func (a *Agent) instructionFor(p BudgetPosture) string {
	if text, ok := a.instructions[p]; ok {
		return text
	}
	return InstructionFor(p)
}

// Run answers one request. The context carries the caller's deadline.
//
// A ModelUnavailable failure is returned as an error together with the partial result.
// Hitting the turn bound or a done context is not an error: the result has StatusTruncated and
// the latest assistant text.
func (a *Agent) Run(ctx context.Context, posture BudgetPosture, userText string) (*Result, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, errors.New("user input is empty")
	}
	if !posture.Valid() {
		posture = PostureBudgetFriendly
	}

	res := &Result{RunID: uuid.NewString(), Posture: posture}
	log := logging.WithRun(a.logger, res.RunID, string(posture)).With("model", a.binding.model.Name())
	start := time.Now()
	conversation := composeWith(a.instructionFor, posture, userText)

	for {
		if err := ctx.Err(); err != nil {
			return a.truncate(ctx, log, start, res, conversation, true, fmt.Errorf("%w: %w", ErrLoopTruncated, err)), nil
		}

		res.Turns++
		msg, err := a.binding.invoke(ctx, conversation)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return a.truncate(ctx, log, start, res, conversation, true, fmt.Errorf("%w: %w", ErrLoopTruncated, ctxErr)), nil
			}
			res.Transcript = conversation
			log.Errorw("model call failed", "turn", res.Turns, "error", err)
			return res, err
		}
		conversation = append(conversation, msg)

		if len(msg.ToolCalls) == 0 {
			res.FinalText = msg.Content
			res.Status = StatusCompleted
			res.Transcript = conversation
			log.Infow("run completed", "turns", res.Turns, "duration_ms", time.Since(start).Milliseconds())
			a.complete(ctx, res)
			return res, nil
		}

		if res.Turns >= a.maxTurns {
			return a.truncate(ctx, log, start, res, conversation, false,
				fmt.Errorf("%w after %d turns", ErrLoopTruncated, res.Turns)), nil
		}

		log.Debugw("dispatching tools", "turn", res.Turns, "calls", len(msg.ToolCalls))
		conversation = append(conversation, a.dispatcher.DispatchAll(ctx, res.RunID, msg.ToolCalls)...)
	}
}

// RunWithDeadline is Run with an absolute deadline. A deadline already in the past returns a
// cancelled, truncated result without calling the model.
func (a *Agent) RunWithDeadline(ctx context.Context, posture BudgetPosture, userText string, deadline time.Time) (*Result, error) {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	return a.Run(ctx, posture, userText)
}

func (a *Agent) truncate(ctx context.Context, log *zap.SugaredLogger, start time.Time, res *Result, conversation []models.Message, cancelled bool, reason error) *Result {
	res.Status = StatusTruncated
	res.Cancelled = cancelled
	res.Reason = reason
	res.Transcript = conversation
	res.FinalText = latestAssistantText(conversation)
	log.Warnw("run truncated", "turns", res.Turns, "cancelled", cancelled, "reason", reason,
		"duration_ms", time.Since(start).Milliseconds())
	a.complete(ctx, res)
	return res
}

func (a *Agent) complete(ctx context.Context, res *Result) {
	if a.onComplete != nil {
		a.onComplete(context.WithoutCancel(ctx), res)
	}
}

func latestAssistantText(conversation []models.Message) string {
	for i := len(conversation) - 1; i >= 0; i-- {
		m := conversation[i]
		if m.Role == models.RoleAssistant && strings.TrimSpace(m.Content) != "" {
			return m.Content
		}
	}
	return ""
}
