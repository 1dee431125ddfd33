package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hallvardm/altoview/internal/archive"
	"github.com/hallvardm/altoview/internal/config"
	"github.com/hallvardm/altoview/internal/pagedata"
	"github.com/hallvardm/altoview/internal/server"
	"github.com/hallvardm/altoview/internal/store"
)

var (
	servePort  int
	servePaper string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the viewer server",
	Long:  `Starts the altoview web server: the two-pane viewer UI plus the JSON page-data and rendered-image API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if servePort != 0 {
			cfg.ListenPort = servePort
		}

		papers, err := archive.Discover(cfg.UnpackedDir)
		if err != nil {
			return fmt.Errorf("discovering archives: %w", err)
		}

		paper, err := pickPaper(papers, servePaper)
		if err != nil {
			return err
		}
		if len(paper.Pages) > 0 {
			log.Printf("serving %s (%d pages) from %s", paper.Name, len(paper.Pages), paper.Dir)
		} else {
			log.Printf("no OCR pages found under %s; the viewer will report an empty archive", cfg.UnpackedDir)
		}

		cache, err := store.Open(cfg.CachePath)
		if err != nil {
			return fmt.Errorf("opening image cache: %w", err)
		}
		defer cache.Close()

		srv := server.New(server.Config{
			Port:     cfg.ListenPort,
			AllowAll: cfg.AllowAllOrigins,
			Verbose:  verbose,
		}, pagedata.New(paper, cfg.MaxRenderDim), cache)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "altoview v%s starting on http://127.0.0.1:%d/\n", Version, cfg.ListenPort)
		return srv.Start()
	},
}

// pickPaper selects the newspaper to serve: the named one, or the first
// discovered. No papers at all still yields a servable empty archive.
func pickPaper(papers []archive.Newspaper, name string) (archive.Newspaper, error) {
	if name == "" {
		if len(papers) == 0 {
			return archive.Newspaper{}, nil
		}
		return papers[0], nil
	}
	for _, p := range papers {
		if p.Name == name {
			return p, nil
		}
	}
	return archive.Newspaper{}, fmt.Errorf("no unpacked newspaper named %q", name)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&servePaper, "paper", "", "Newspaper directory name to serve (default: first found)")
	rootCmd.AddCommand(serveCmd)
}
