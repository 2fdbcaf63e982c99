package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"floorgrid/internal/engine"
)

type createBatchRequest struct {
	BatchType         string  `json:"batch_type"`
	RequestType       string  `json:"request_type"`
	OriginalPledgeID  *string `json:"original_pledge_id"`
	OriginalPaymentID *string `json:"original_payment_id"`
	NewPledgeID       *string `json:"new_pledge_id"`
	NewPaymentID      *string `json:"new_payment_id"`
	DonorID           *string `json:"donor_id"`
	DonorName         string  `json:"donor_name"`
	DonorPhone        *string `json:"donor_phone"`
	OriginalAmount    int64   `json:"original_amount_pence"`
	AdditionalAmount  int64   `json:"additional_amount_pence"`
	TotalAmount       int64   `json:"total_amount_pence"`
	PackageID         *string `json:"package_id"`
}

func (a *App) BatchesCreate(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	id, err := a.Svc.CreateBatch(r.Context(), engine.CreateBatchRequest{
		BatchType:         req.BatchType,
		RequestType:       req.RequestType,
		OriginalPledgeID:  req.OriginalPledgeID,
		OriginalPaymentID: req.OriginalPaymentID,
		NewPledgeID:       req.NewPledgeID,
		NewPaymentID:      req.NewPaymentID,
		DonorID:           req.DonorID,
		DonorName:         req.DonorName,
		DonorPhone:        req.DonorPhone,
		OriginalAmount:    req.OriginalAmount,
		AdditionalAmount:  req.AdditionalAmount,
		TotalAmount:       req.TotalAmount,
		PackageID:         req.PackageID,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"success": true, "batch_id": id})
}

func (a *App) BatchesGet(w http.ResponseWriter, r *http.Request) {
	batch, err := a.Svc.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":                 true,
		"batch_id":                batch.ID,
		"batch_type":              batch.BatchType,
		"request_type":            batch.RequestType,
		"donor_name":              batch.DonorName,
		"total_amount_pence":      batch.TotalAmount,
		"approval_status":         batch.ApprovalStatus,
		"allocated_cell_ids":      batch.AllocatedCellIDs,
		"allocated_area_m2":       batch.AllocatedArea,
		"requested_at":            batch.RequestedAt,
		"approved_at":             batch.ApprovedAt,
		"rejected_at":             batch.RejectedAt,
	})
}

type approveBatchRequest struct {
	ApproverID string          `json:"approver_id"`
	Package    *packagePayload `json:"package"`
}

func (a *App) BatchesApprove(w http.ResponseWriter, r *http.Request) {
	var req approveBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.Svc.ApproveAndAllocate(r.Context(), chi.URLParam(r, "id"), req.ApproverID, req.Package.toDomain())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":            true,
		"allocated_cell_ids": result.AllocatedCellIDs,
		"area_allocated_m2":  result.AreaAllocatedM2,
		"pooled_pence":       result.PooledPence,
	})
}

func (a *App) BatchesReject(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.RejectBatch(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

func (a *App) BatchesDeallocate(w http.ResponseWriter, r *http.Request) {
	result, err := a.Svc.DeallocateBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":              true,
		"deallocated_cell_ids": result.DeallocatedCellIDs,
	})
}
