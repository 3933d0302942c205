package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/pipeline-backend/internal/api"
	runapi "github.com/futig/pipeline-backend/internal/api/run"
	"github.com/futig/pipeline-backend/internal/config"
	"github.com/futig/pipeline-backend/internal/integration/callback"
	"github.com/futig/pipeline-backend/internal/integration/llm"
	"github.com/futig/pipeline-backend/internal/pkg/validator"
	"github.com/futig/pipeline-backend/internal/usecase/pipeline"
	"github.com/futig/pipeline-backend/internal/usecase/run"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Initialize connectors
	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, logger)

	var llmConnector pipeline.ModelCaller
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the model service")
		llmConnector = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real connector for the model service")
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	// Initialize validators
	runValidator := validator.NewValidator(cfg.PipelineCfg)
	logger.Info("Validators initialized")

	// Initialize use cases
	pipelineUC := pipeline.NewUsecase(llmConnector, logger)
	runUC := run.NewUsecase(
		pipelineUC,
		callbackConnector,
		cfg.RunRegistryCfg.TTL,
		cfg.RunRegistryCfg.CleanupInterval,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	runHandler := runapi.NewHandler(runUC, runValidator, cfg.PipelineCfg)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(runHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}
