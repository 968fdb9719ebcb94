package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
)

// Server exposes the planner over HTTP. Every request is an independent run.
type Server struct {
	agent      *agent.Agent
	runTimeout time.Duration
	logger     *zap.SugaredLogger
	engine     *gin.Engine
}

type Options struct {
	// RunTimeout bounds each request. Zero leaves only the client's own deadline.
	RunTimeout time.Duration
	Logger     *zap.SugaredLogger
}

func New(a *agent.Agent, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{agent: a, runTimeout: opts.RunTimeout, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.POST("/query", s.handleQuery)
	r.GET("/tools", s.handleTools)
	r.GET("/health", s.handleHealth)
	s.engine = r
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("listening", "addr", addr, "model", s.agent.ModelName(), "tools", s.agent.Catalog().Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Infow("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debugw("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.UserText()) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "query or question is required"})
		return
	}

	posture := agent.ParsePosture(req.BudgetPreference)
	ctx := c.Request.Context()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	res, err := s.agent.Run(ctx, posture, EnrichQuery(req, posture))
	if err != nil {
		var runID string
		if res != nil {
			runID = res.RunID
		}
		if errors.Is(err, agent.ErrModelUnavailable) {
			c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error(), RunID: runID})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), RunID: runID})
		return
	}

	c.JSON(http.StatusOK, QueryResponse{
		Answer:    res.FinalText,
		Status:    string(res.Status),
		Turns:     res.Turns,
		ToolCalls: res.ToolCalls(),
		Cancelled: res.Cancelled,
		RunID:     res.RunID,
	})
}

type toolInfo struct {
	Name        string         `json:"name"`
	Provider    string         `json:"provider"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

func (s *Server) handleTools(c *gin.Context) {
	catalog := s.agent.Catalog()
	specs := catalog.Specs()
	out := make([]toolInfo, 0, len(specs))
	for _, spec := range specs {
		out = append(out, toolInfo{
			Name:        spec.Name,
			Provider:    catalog.Owner(spec.Name),
			Description: spec.Description,
			InputSchema: spec.InputSchema,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"model":     s.agent.ModelName(),
		"tools":     s.agent.Catalog().Len(),
		"max_turns": s.agent.MaxTurns(),
	})
}
