package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Amarendra0207/Agentic-Travel/internal/app"
	"github.com/Amarendra0207/Agentic-Travel/internal/config"
	"github.com/Amarendra0207/Agentic-Travel/internal/logging"
	"github.com/Amarendra0207/Agentic-Travel/internal/server"
	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

const version = "0.3.0"

func main() {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:    "travel-agent",
		Usage:   "budget-aware travel planner driven by a tool-calling language model",
		Version: version,
		Flags:   config.GetFlags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the planner over HTTP",
				Action: runServe,
			},
			{
				Name:      "ask",
				Usage:     "answer one travel question and print the plan",
				ArgsUsage: "<question>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "budget", Aliases: []string{"b"}, Value: string(agent.PostureBudgetFriendly), Usage: "cheapest, budget_friendly or luxurious"},
					&cli.StringFlag{Name: "from", Usage: "origin airport code"},
					&cli.StringFlag{Name: "to", Usage: "destination airport code"},
					&cli.BoolFlag{Name: "transcript", Usage: "print every message exchanged with the model"},
				},
				Action: runAsk,
			},
			{
				Name:  "tools",
				Usage: "list the tools offered to the model",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "utcp", Usage: "list the tools under their UTCP names"},
				},
				Action: runTools,
			},
			{
				Name:   "config",
				Usage:  "print the resolved configuration with secrets masked",
				Action: runConfig,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context, c *cli.Command) (*config.Configuration, *app.App, error) {
	cfg := config.NewConfiguration(c)
	logging.InitLogger(cfg.Verbose)
	a, err := app.Build(ctx, cfg, logging.GetLogger())
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}

func runServe(ctx context.Context, c *cli.Command) error {
	cfg, a, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer zap.L().Sync()
	defer a.Close(context.WithoutCancel(ctx))

	gin.SetMode(cfg.Server.GinMode)
	srv := server.New(a.Agent, server.Options{RunTimeout: cfg.Agent.RunTimeout, Logger: logging.GetLogger()})
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func runAsk(ctx context.Context, c *cli.Command) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("ask needs a question, e.g. travel-agent ask \"3 days in Lisbon\"")
	}

	cfg, a, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer zap.L().Sync()
	defer a.Close(context.WithoutCancel(ctx))

	if cfg.Agent.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Agent.RunTimeout)
		defer cancel()
	}

	posture := agent.ParsePosture(c.String("budget"))
	req := server.QueryRequest{Query: question, StartLocationCode: c.String("from"), EndLocationCode: c.String("to")}
	res, err := a.Agent.Run(ctx, posture, server.EnrichQuery(req, posture))
	if err != nil {
		return err
	}

	if c.Bool("transcript") {
		for _, m := range res.Transcript {
			printMessage(m)
		}
		fmt.Println()
	}
	fmt.Println(res.FinalText)
	if res.Status == agent.StatusTruncated {
		fmt.Fprintf(os.Stderr, "\n[%s after %d turns: %v]\n", res.Status, res.Turns, res.Reason)
	}
	return nil
}

func printMessage(m models.Message) {
	switch {
	case m.Role == models.RoleTool:
		status := "ok"
		if m.IsError {
			status = "error"
		}
		fmt.Printf("[tool %s %s] %s\n", m.ToolName, status, m.Content)
	case len(m.ToolCalls) > 0:
		names := make([]string, 0, len(m.ToolCalls))
		for _, call := range m.ToolCalls {
			names = append(names, call.Name)
		}
		fmt.Printf("[%s -> %s] %s\n", m.Role, strings.Join(names, ", "), m.Content)
	default:
		fmt.Printf("[%s] %s\n", m.Role, m.Content)
	}
}

func runTools(ctx context.Context, c *cli.Command) error {
	_, a, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	catalog := a.Agent.Catalog()
	if c.Bool("utcp") {
		for _, t := range catalog.UTCPTools("travel") {
			fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description)
		}
		planner := a.Agent.AsUTCPTool("travel.plan_trip", "Plan a trip end to end with the travel planner.")
		fmt.Fprintf(w, "%s\t%s\n", planner.Name, planner.Description)
		return nil
	}
	for _, spec := range catalog.Specs() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", spec.Name, catalog.Owner(spec.Name), spec.Description)
	}
	return nil
}

func runConfig(_ context.Context, c *cli.Command) error {
	config.NewConfiguration(c).PrintConfig(os.Stdout)
	return nil
}
