package handlers

import (
	"encoding/json"
	"net/http"

	"floorgrid/internal/domain"
	"floorgrid/internal/engine"
)

type packagePayload struct {
	ID           string `json:"id"`
	QuarterUnits int    `json:"quarter_units"`
	PricePence   int64  `json:"price_pence"`
}

func (p *packagePayload) toDomain() *domain.Package {
	if p == nil {
		return nil
	}
	return &domain.Package{ID: p.ID, QuarterUnits: p.QuarterUnits, PricePence: p.PricePence}
}

type allocateRequest struct {
	PledgeID    *string         `json:"pledge_id"`
	PaymentID   *string         `json:"payment_id"`
	AmountPence int64           `json:"amount_pence"`
	Package     *packagePayload `json:"package"`
	DonorName   string          `json:"donor_name"`
	Status      string          `json:"status"`
	BatchID     *string         `json:"batch_id"`
}

func (a *App) AllocationsCreate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.AmountPence <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "amount_pence must be positive")
		return
	}

	result, err := a.Svc.Allocate(r.Context(), engine.AllocateRequest{
		PledgeID:    req.PledgeID,
		PaymentID:   req.PaymentID,
		AmountPence: req.AmountPence,
		Package:     req.Package.toDomain(),
		DonorName:   req.DonorName,
		Status:      domain.CellStatus(req.Status),
		BatchID:     req.BatchID,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"success":            true,
		"allocated_cell_ids": result.AllocatedCellIDs,
		"area_allocated_m2":  result.AreaAllocatedM2,
		"pooled_pence":       result.PooledPence,
	})
}

type deallocateRequest struct {
	PledgeID  *string `json:"pledge_id"`
	PaymentID *string `json:"payment_id"`
}

func (a *App) DeallocationsCreate(w http.ResponseWriter, r *http.Request) {
	var req deallocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.Svc.Deallocate(r.Context(), req.PledgeID, req.PaymentID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":              true,
		"deallocated_cell_ids": result.DeallocatedCellIDs,
	})
}

type contributeRequest struct {
	AmountPence int64 `json:"amount_pence"`
}

func (a *App) ContributionsCreate(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	pool, err := a.Svc.Contribute(r.Context(), req.AmountPence)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":         true,
		"total_pence":     pool.TotalPence,
		"allocated_pence": pool.AllocatedPence,
		"remaining_pence": pool.RemainingPence,
	})
}
