package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/sandroweb/html-template-project/internal/build"
	"github.com/sandroweb/html-template-project/internal/config"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

// Global is shared state passed to every command.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command line.
type CLI struct {
	Config  string           `short:"c" help:"Project configuration file" default:"sitebuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Deploy         DeployCmd         `cmd:"" default:"withargs" help:"Development build into the output directory"`
	Production     ProductionCmd     `cmd:"" help:"Production build, promoted to the project root"`
	Watch          WatchCmd          `cmd:"" help:"Build, serve and rebuild on changes"`
	ApplyTemplates ApplyTemplatesCmd `cmd:"" name:"apply-templates" help:"Render the HTML templates only"`
	PromoteToRoot  PromoteCmd        `cmd:"" name:"promote-to-root" help:"Copy the output tree into the project root"`
	Init           InitCmd           `cmd:"" help:"Write an example project configuration"`
	MyIP           MyIPCmd           `cmd:"" name:"my-ip" help:"Development build addressed by this machine's LAN IP"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (g *Global) logger() *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runPlan loads the project and executes plan once. Only a fatal task
// failure or cancellation is returned; warnings are logged by the run.
func runPlan(g *Global, root *CLI, plan tasks.Plan) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	svc := build.NewService(afero.NewOsFs(), cfg, build.WithLogger(g.logger()))
	_, err = svc.Run(ctx, plan)
	return err
}
