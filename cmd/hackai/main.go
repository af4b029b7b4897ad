package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yaxinw04/hackai/config"
	"github.com/yaxinw04/hackai/handlers"
	"github.com/yaxinw04/hackai/internal/captions"
	"github.com/yaxinw04/hackai/internal/download"
	"github.com/yaxinw04/hackai/internal/ffmpeg"
	"github.com/yaxinw04/hackai/internal/finalize"
	"github.com/yaxinw04/hackai/internal/jobstore"
	"github.com/yaxinw04/hackai/internal/pipeline"
	"github.com/yaxinw04/hackai/internal/storage"
	"github.com/yaxinw04/hackai/internal/transcribe"
	"github.com/yaxinw04/hackai/internal/worker"
	"github.com/yaxinw04/hackai/middleware"
	"github.com/yaxinw04/hackai/models"
)

func main() {
	_ = godotenv.Load()
	config.InitLogger()

	root := &cobra.Command{
		Use:   "hackai",
		Short: "Turn long-form videos into short clips",
	}
	root.AddCommand(serveCmd(), processCmd())

	if err := root.Execute(); err != nil {
		config.Logger().WithError(err).Fatal("command failed")
	}
}

// app bundles everything built from the settings so both commands share the
// same wiring.
type app struct {
	settings config.Settings
	store    jobstore.Store
	backend  storage.Backend
	orch     *pipeline.Orchestrator
	fin      *finalize.Engine
	burner   *captions.Burner
	pool     *worker.Pool
}

func buildApp() (*app, error) {
	settings := config.Load()
	log := config.Logger()

	var store jobstore.Store
	var err error
	switch settings.JobStoreBackend {
	case "badger":
		store, err = jobstore.OpenBadgerStore(settings.JobStoreDir())
	case "postgrest":
		store, err = jobstore.NewPostgrestStore(settings.SupabaseURL, settings.SupabaseKey)
	default:
		store = jobstore.NewMemoryStore()
	}
	if err != nil {
		return nil, fmt.Errorf("opening job store %q: %w", settings.JobStoreBackend, err)
	}

	var backend storage.Backend
	if settings.UseSupabase {
		backend, err = storage.NewSupabaseBackend(settings.SupabaseURL, settings.SupabaseKey, settings.SupabaseBucket)
	} else {
		backend, err = storage.NewLocalBackend(settings.OutputDir)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing storage backend: %w", err)
	}

	ff := ffmpeg.New(settings.FFmpegPath, settings.FFprobePath)
	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Store:       store,
		Storage:     backend,
		Downloader:  download.New(settings.YTDLPPath),
		Transcriber: transcribe.NewWhisperCLI(settings.WhisperBin, settings.WhisperModel, settings.FFmpegPath),
		Captioner:   captions.NewGenerator(settings.OpenAIAPIKey, settings.OpenAIBaseURL, settings.OpenAIModel, log),
		Renderer:    ff,
		Log:         log,
	}, pipeline.Config{
		OutputDir:    settings.OutputDir,
		MaxClipCount: settings.MaxClipCount,
	})

	return &app{
		settings: settings,
		store:    store,
		backend:  backend,
		orch:     orch,
		fin:      finalize.NewEngine(store, ff, settings.OutputDir, log),
		burner:   captions.NewBurner(ff),
		pool:     worker.NewPool(settings.WorkerCount, settings.WorkerCount*4, log),
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			a.pool.Start()
			defer a.pool.Stop()

			h := handlers.NewApplicationHandler(
				a.store, a.backend, a.pool, a.orch, a.fin, a.burner, a.settings, config.Logger(),
			)

			srv := fiber.New(fiber.Config{
				AppName: "hackai",
			})
			srv.Use(cors.New(cors.Config{
				AllowOrigins: "*",
				AllowHeaders: "Origin, Content-Type, Accept",
			}))
			srv.Use(recover.New())
			srv.Use(middleware.RequestLogger())

			srv.Get("/health", h.HandleHealthCheck)

			apiV1 := srv.Group("/api/v1")
			apiV1.Post("/process", h.HandleProcessVideo)
			apiV1.Get("/status/:jobId", h.HandleJobStatus)
			apiV1.Get("/jobs", h.HandleListJobs)
			apiV1.Post("/jobs/:jobId/finalize", h.HandleFinalizeClips)

			clips := apiV1.Group("/jobs/:jobId/clips/:clipId")
			clips.Post("/captions/generate", h.HandleGenerateCaptions)
			clips.Post("/captions/apply", h.HandleApplyCaptions)

			if lb, ok := a.backend.(*storage.LocalBackend); ok {
				srv.Static("/clips", lb.BaseDir())
			}

			addr := fmt.Sprintf("%s:%d", a.settings.Host, a.settings.Port)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen(addr)
			}()
			config.Logger().WithField("addr", addr).Info("server started")

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				config.Logger().WithField("signal", sig.String()).Info("shutting down")
				return srv.ShutdownWithTimeout(10 * time.Second)
			}
		},
	}
}

func processCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "process <url>",
		Short: "Process one video from the command line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			job, err := newPendingJob(args[0], prompt)
			if err != nil {
				return err
			}
			if err := a.store.Create(ctx, job); err != nil {
				return fmt.Errorf("creating job: %w", err)
			}
			if err := a.orch.Run(ctx, job.ID); err != nil {
				return err
			}

			final, err := a.store.Load(ctx, job.ID)
			if err != nil {
				return err
			}
			for _, clip := range final.Results {
				fmt.Printf("%s  %-20s  %6.1fs-%6.1fs  %s\n",
					clip.ID, clip.Title, clip.StartTime, clip.EndTime, clip.URLPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "natural-language instruction, e.g. \"create 5 clips\"")
	return cmd
}

func newPendingJob(url, prompt string) (*models.Job, error) {
	if url == "" {
		return nil, fmt.Errorf("a video URL is required")
	}
	now := time.Now().UTC()
	return &models.Job{
		ID:        uuid.NewString(),
		Status:    models.JobStatusPending,
		Message:   "Queued for processing",
		URL:       url,
		Prompt:    prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
