package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chordsheet/internal/catalog"
	"chordsheet/internal/config"
	"chordsheet/internal/library"
	"chordsheet/internal/logging"
	"chordsheet/internal/model"
	"chordsheet/internal/render"
	"chordsheet/internal/song"
	"chordsheet/internal/source"
	"chordsheet/internal/state"
)

// app holds the services every command shares.
type app struct {
	cfg      config.Config
	logger   *logging.Logger
	dir      *source.Dir
	lib      *library.Library
	keys     *state.Store
	renderer *render.Renderer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envPath    string
		a          = &app{}
	)

	root := &cobra.Command{
		Use:           "chordsheet",
		Short:         "Read, transpose and print chord sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, envPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.Finalize(); err != nil {
				return err
			}
			return a.init(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "chordsheet.yaml", "YAML config file")
	root.PersistentFlags().StringVar(&envPath, "env-file", ".env", "dotenv file with CHORDSHEET_* overrides")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		showCmd(a),
		listCmd(a),
		searchCmd(a),
		checkCmd(a),
		exportCmd(a),
		keyCmd(a),
		watchCmd(a),
		pickCmd(a),
	)
	return root
}

func (a *app) init(cfg config.Config) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.dir = source.NewDir(cfg.LibraryDir)

	var provider source.Provider = a.dir
	if cfg.SourceURL != "" {
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		provider = source.WithRetry(source.NewHTTP(httpClient, cfg.SourceURL), 3, 400*time.Millisecond)
		logger.Debugf("Reading songs from %s", cfg.SourceURL)
	}

	a.lib = library.New(library.Options{
		Dir:     a.dir,
		Loader:  song.NewLoader(provider, cfg.StrictDirectives, logger),
		Cache:   catalog.NewCache(cfg.CachePath),
		TTL:     cfg.CacheTTL,
		Workers: cfg.Workers,
		Strict:  cfg.StrictDirectives,
		Logger:  logger,
	})

	a.keys, err = state.NewStore(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("initialize key preferences: %w", err)
	}

	if cfg.Color && isTerminal(os.Stdout) {
		a.renderer = render.Colored(cfg.Width)
	} else {
		a.renderer = render.Plain(cfg.Width)
	}
	return nil
}

// resolve turns a query into a song entry. Without a local library to
// index, the query is used as the song name as given.
func (a *app) resolve(ctx context.Context, query string) (model.Entry, error) {
	entries, err := a.lib.Index(ctx, false)
	if err != nil {
		if a.cfg.SourceURL != "" && isMissingLibrary(err) {
			return model.Entry{Name: query, ID: library.EntryID(query)}, nil
		}
		return model.Entry{}, err
	}
	return library.Resolve(entries, query)
}

// targetKey picks the key a song is shown in: an explicit key wins over
// the stored preference.
func (a *app) targetKey(name, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if k, ok := a.keys.Key(name); ok {
		return k
	}
	return ""
}

func isMissingLibrary(err error) bool {
	return errors.Is(err, library.ErrNoListing) || errors.Is(err, os.ErrNotExist)
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
