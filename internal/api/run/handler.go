package run

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/pipeline-backend/internal/config"
	"github.com/futig/pipeline-backend/internal/entity"
	"github.com/futig/pipeline-backend/internal/pkg/logger"
	"github.com/futig/pipeline-backend/internal/pkg/response"
	"github.com/futig/pipeline-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   RunUsecase
	validator *validator.Validator
	cfg       config.PipelineConfig
}

func NewHandler(
	usecase RunUsecase,
	validator *validator.Validator,
	cfg config.PipelineConfig,
) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
		cfg:       cfg,
	}
}

// StartRun handles POST /pipeline-run - Start new pipeline run
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartRun")

	requestID := r.Header.Get("X-Request-ID")

	var req entity.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateStartRun(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctxzap.Info(ctx, "starting pipeline run",
		zap.String("model_id", req.ModelID),
		zap.Int("main_chars", len(req.MainContent)),
		zap.Int("aux_chars", len(req.AuxiliaryContext)),
	)

	run, err := h.usecase.StartRun(ctx, toPipelineInput(&req, h.cfg), req.CallbackURL, requestID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "pipeline run accepted", zap.String("run_id", run.ID))

	response.Accepted(w, entity.StartRunResponse{
		RunID:  run.ID,
		Status: string(run.Status),
	})
}

// GetRun handles GET /pipeline-run/{id} - Get run status and progress
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	ctx := logger.WithRunID(logger.WithAction(r.Context(), "GetRun"), runID)

	ctxzap.Debug(ctx, "fetching run")

	run, err := h.usecase.GetRun(ctx, runID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toRunDTO(run))
}

// GetResult handles GET /pipeline-run/{id}/result - Get final result
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	ctx := logger.WithRunID(logger.WithAction(r.Context(), "GetResult"), runID)

	ctxzap.Debug(ctx, "fetching run result")

	result, err := h.usecase.GetResult(ctx, runID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "run result fetched successfully",
		zap.Int("result_length", len(result)),
	)

	response.Success(w, entity.RunResultDTO{
		ID:     runID,
		Result: result,
	})
}

// CancelRun handles POST /pipeline-run/{id}/cancel - Cancel run
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	ctx := logger.WithRunID(logger.WithAction(r.Context(), "CancelRun"), runID)

	ctxzap.Info(ctx, "cancelling run")

	if err := h.usecase.CancelRun(ctx, runID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]string{
		"message": "run cancellation requested",
	})
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrRunNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "run not found", err)
	} else if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrInvalidChunkSize) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else if errors.Is(err, entity.ErrRunNotActive) || errors.Is(err, entity.ErrRunNotFinished) || errors.Is(err, entity.ErrRunCancelled) {
		h.respondError(ctx, w, http.StatusConflict, "invalid run state", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
