package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"floorgrid/internal/domain"
	"floorgrid/internal/engine"
)

// AllocationService is the engine surface the handlers depend on.
// *engine.Engine satisfies it.
type AllocationService interface {
	Allocate(ctx context.Context, req engine.AllocateRequest) (*engine.AllocationResult, error)
	Deallocate(ctx context.Context, pledgeID, paymentID *string) (*engine.DeallocationResult, error)
	Contribute(ctx context.Context, amountPence int64) (*domain.CustomAmountPool, error)
	CreateBatch(ctx context.Context, req engine.CreateBatchRequest) (uuid.UUID, error)
	GetBatch(ctx context.Context, batchID string) (*domain.AllocationBatch, error)
	ApproveAndAllocate(ctx context.Context, batchID, approverID string, pkg *domain.Package) (*engine.AllocationResult, error)
	RejectBatch(ctx context.Context, batchID string) error
	DeallocateBatch(ctx context.Context, batchID string) (*engine.DeallocationResult, error)
	GridStatus(ctx context.Context, rectangle string) ([]domain.GridCell, error)
	AllocationStats(ctx context.Context) (*domain.GridStats, error)
}

type App struct {
	Svc AllocationService
	Log zerolog.Logger
}

func NewApp(svc AllocationService, log zerolog.Logger) *App {
	return &App{Svc: svc, Log: log}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, msg string) {
	a.json(w, code, map[string]any{
		"success": false,
		"error":   map[string]string{"code": kind, "message": msg},
	})
}

// fail maps engine sentinel errors onto the structured failure result.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArea):
		a.error(w, http.StatusBadRequest, "invalid_area", err.Error())
	case errors.Is(err, domain.ErrBatchNotFound):
		a.error(w, http.StatusNotFound, "batch_not_found", err.Error())
	case errors.Is(err, domain.ErrInsufficientSpace):
		a.error(w, http.StatusConflict, "insufficient_space", err.Error())
	case errors.Is(err, domain.ErrInvalidBatchTransition):
		a.error(w, http.StatusConflict, "invalid_batch_transition", err.Error())
	default:
		a.Log.Error().Err(err).Msg("engine failure")
		a.error(w, http.StatusInternalServerError, "internal", "persistence failure")
	}
}
