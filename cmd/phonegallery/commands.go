package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vbonduro/phonegallery/internal/config"
	"github.com/vbonduro/phonegallery/internal/db"
	"github.com/vbonduro/phonegallery/internal/logging"
	"github.com/vbonduro/phonegallery/internal/photostore"
	"github.com/vbonduro/phonegallery/internal/photostore/local"
	s3store "github.com/vbonduro/phonegallery/internal/photostore/s3"
	"github.com/vbonduro/phonegallery/internal/service"
	"github.com/vbonduro/phonegallery/internal/stats"
	"github.com/vbonduro/phonegallery/internal/store"
	"github.com/vbonduro/phonegallery/internal/web"
)

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "phonegallery",
		Short: "Personal phone catalog with a JSON API",
		Long: `phonegallery keeps a catalog of the phones you have owned in SQLite and
serves it as a JSON API. Run without a subcommand to start the server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./phonegallery.yaml if present)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Seed, backfill and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), configFile, func(ctx context.Context, a *app) error {
				version, err := db.SchemaVersion(ctx, a.db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d\n", color.New(color.FgGreen).Sprint("OK"), version)
				return nil
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load the starter catalog into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), configFile, func(ctx context.Context, a *app) error {
				n, err := a.service.Seed(ctx)
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "database already has phones, nothing seeded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d phones\n", n)
				return nil
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "backfill",
		Short: "Embed referenced image files as data URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), configFile, func(ctx context.Context, a *app) error {
				result, err := a.service.BackfillImages(ctx)
				if err != nil {
					return err
				}
				failed := fmt.Sprint(result.Failed)
				if result.Failed > 0 {
					failed = color.New(color.FgYellow).Sprint(result.Failed)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrated %d, failed %s\n", result.Migrated, failed)
				return nil
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), configFile, func(ctx context.Context, a *app) error {
				st, err := a.service.Statistics(ctx)
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), st)
				return nil
			})
		},
	})

	return root
}

// app holds everything a command needs, built from configuration.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	images  photostore.PhotoStore
	service *service.PhoneService
	closers []func()
}

func openApp(ctx context.Context, configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, closers: []func(){cleanup}}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = database
	a.closers = append(a.closers, func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	})

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}
	a.images = images

	a.service = service.NewPhoneService(
		store.NewPhoneStore(database),
		images,
		service.Options{RequireImage: cfg.RequireImage},
		logger,
	)
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func withApp(ctx context.Context, configFile string, fn func(context.Context, *app) error) error {
	a, err := openApp(ctx, configFile)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func newImageStore(ctx context.Context, cfg *config.Config) (photostore.PhotoStore, error) {
	switch cfg.ImageBackend {
	case config.ImageBackendS3:
		slog.Info("using S3 image backend", "bucket", cfg.S3Bucket)
		return s3store.NewS3PhotoStore(ctx, s3store.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		slog.Info("using local image backend", "path", cfg.ImageLocalPath)
		return local.NewLocalPhotoStore(cfg.ImageLocalPath)
	}
}

func runServe(ctx context.Context, configFile string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, configFile, func(ctx context.Context, a *app) error {
		a.service.Initialize(ctx, a.cfg.SeedOnStart, a.cfg.BackfillOnStart)
		server := web.NewServer(a.service, a.images, a.logger)
		if err := server.ListenAndServe(ctx, a.cfg.ListenAddr); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
}

const barWidth = 30

func printStats(w io.Writer, st stats.Statistics) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	bold.Fprintln(w, "Phones")
	fmt.Fprintf(w, "  total      %d\n", st.Total)
	fmt.Fprintf(w, "  still own  %d\n", st.Kept)
	fmt.Fprintf(w, "  current    %d\n", st.Current)
	fmt.Fprintf(w, "  liked      %s\n", green.Sprint(st.Liked))
	fmt.Fprintf(w, "  disliked   %s\n", red.Sprint(st.Disliked))
	fmt.Fprintf(w, "  avg years  %.1f\n", st.AverageOwnershipYears)

	if len(st.Brands) > 0 {
		bold.Fprintln(w, "Brands")
		nameWidth := 0
		for _, b := range st.Brands {
			nameWidth = max(nameWidth, len(b.Brand))
		}
		for _, b := range st.Brands {
			bar := strings.Repeat("#", b.Total*barWidth/st.MaxBrandCount)
			fmt.Fprintf(w, "  %-*s %s %d (%s/%s)\n", nameWidth, b.Brand, bar, b.Total,
				green.Sprint(b.Liked), red.Sprint(b.Disliked))
		}
	}

	if st.MostLiked != nil {
		fmt.Fprintf(w, "Most liked:    %s (%d)\n", green.Sprint(st.MostLiked.Brand), st.MostLiked.Count)
	}
	if st.MostDisliked != nil {
		fmt.Fprintf(w, "Most disliked: %s (%d)\n", red.Sprint(st.MostDisliked.Brand), st.MostDisliked.Count)
	}
}
