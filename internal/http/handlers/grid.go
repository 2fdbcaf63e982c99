package handlers

import (
	"net/http"

	"floorgrid/internal/domain"
)

func (a *App) GridStatus(w http.ResponseWriter, r *http.Request) {
	cells, err := a.Svc.GridStatus(r.Context(), r.URL.Query().Get("rectangle"))
	if err != nil {
		a.fail(w, err)
		return
	}

	items := make([]map[string]any, 0, len(cells))
	for _, cell := range cells {
		items = append(items, cellView(cell))
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "cells": items})
}

func cellView(cell domain.GridCell) map[string]any {
	item := map[string]any{
		"cell_id":      cell.ID,
		"rectangle_id": cell.RectangleID,
		"position":     cell.Position,
		"cell_type":    cell.Type,
		"area_m2":      cell.AreaM2,
		"status":       cell.Status,
	}
	if cell.Status.Occupied() {
		item["pledge_id"] = cell.PledgeID
		item["payment_id"] = cell.PaymentID
		item["donor_name"] = cell.DonorName
		item["amount_pence"] = cell.AmountPence
		item["batch_id"] = cell.BatchID
		item["assigned_at"] = cell.AssignedAt
	}
	return item
}

func (a *App) GridStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Svc.AllocationStats(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":             true,
		"total_cells":         stats.TotalCells,
		"pledged_cells":       stats.PledgedCells,
		"paid_cells":          stats.PaidCells,
		"available_cells":     stats.AvailableCells,
		"blocked_cells":       stats.BlockedCells,
		"total_area_m2":       stats.TotalAreaM2,
		"total_amount_pence":  stats.TotalAmountPence,
		"progress_percentage": stats.ProgressPercentage,
	})
}
