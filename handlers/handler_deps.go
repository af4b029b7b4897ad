package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yaxinw04/hackai/config"
	"github.com/yaxinw04/hackai/internal/captions"
	"github.com/yaxinw04/hackai/internal/finalize"
	"github.com/yaxinw04/hackai/internal/jobstore"
	"github.com/yaxinw04/hackai/internal/pipeline"
	"github.com/yaxinw04/hackai/internal/storage"
	"github.com/yaxinw04/hackai/internal/worker"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Store        jobstore.Store
	Storage      storage.Backend
	Pool         *worker.Pool
	Orchestrator *pipeline.Orchestrator
	Finalizer    *finalize.Engine
	Burner       *captions.Burner
	Settings     config.Settings
	Validate     *validator.Validate
	Logger       *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(
	store jobstore.Store,
	backend storage.Backend,
	pool *worker.Pool,
	orchestrator *pipeline.Orchestrator,
	finalizer *finalize.Engine,
	burner *captions.Burner,
	settings config.Settings,
	logger *logrus.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		Store:        store,
		Storage:      backend,
		Pool:         pool,
		Orchestrator: orchestrator,
		Finalizer:    finalizer,
		Burner:       burner,
		Settings:     settings,
		Validate:     validator.New(),
		Logger:       logger,
	}
}
