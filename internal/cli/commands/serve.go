package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/wadocs/internal/site"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port    int
	NoWatch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the site and serve it with live reload",
		Long: `Build the site, serve the output directory over HTTP and rebuild when
Markdown files change. Open pages reload automatically after each rebuild.`,
		Example: `  # Serve on the configured port
  wadocs serve

  # Serve on another port without watching
  wadocs serve --port 8080 --no-watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "Port to listen on (default from config, 4000)")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "Do not rebuild on file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	if err := cfg.ValidateDirectories(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := cmdCtx.OpenState(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	b, err := site.New(site.Config{
		DocsDir:     cfg.DocsDir,
		OutputDir:   cfg.OutputDir,
		Title:       cfg.Site.Title,
		BaseURL:     cfg.Site.BaseURL,
		Workers:     cfg.Site.Workers,
		Incremental: true,
		Logger:      cmdCtx.Logger,
	}, store)
	if err != nil {
		return err
	}

	port := cfg.Serve.Port
	if opts.Port > 0 {
		port = opts.Port
	}
	srv := site.NewDevServer(b, site.DevConfig{
		Port:  port,
		Watch: cfg.Serve.Watch && !opts.NoWatch,
	})

	cmdCtx.Renderer.Success("Serving " + cfg.OutputDir)
	cmdCtx.Renderer.Muted("Press Ctrl+C to stop")
	return srv.Serve(ctx)
}
