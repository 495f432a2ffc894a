package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/medinv/medinv/internal/ledger"
	"github.com/medinv/medinv/internal/model"
	"github.com/medinv/medinv/internal/query"
)

// TransfersHandler handles the inter-department transfer workflow.
type TransfersHandler struct {
	Engine *ledger.Engine
}

var transferCollection = query.Collection[model.Transfer]{
	ID: func(t model.Transfer) string { return fmt.Sprintf("%020d", t.ID) },
	Sort: map[string]func(a, b model.Transfer) int{
		"requested": func(a, b model.Transfer) int {
			return query.CompareInt64s(a.RequestedAt.UnixNano(), b.RequestedAt.UnixNano())
		},
		"status":      func(a, b model.Transfer) int { return query.CompareStrings(a.Status, b.Status) },
		"priority":    func(a, b model.Transfer) int { return query.CompareStrings(a.Priority, b.Priority) },
		"source":      func(a, b model.Transfer) int { return query.CompareStrings(a.SourceName, b.SourceName) },
		"destination": func(a, b model.Transfer) int { return query.CompareStrings(a.DestName, b.DestName) },
	},
	Search: []func(model.Transfer) string{
		func(t model.Transfer) string { return t.SourceName },
		func(t model.Transfer) string { return t.DestName },
		func(t model.Transfer) string { return t.Priority },
	},
	Filter: map[string]func(model.Transfer) string{
		"status":      func(t model.Transfer) string { return t.Status },
		"priority":    func(t model.Transfer) string { return t.Priority },
		"source":      func(t model.Transfer) string { return t.SourceName },
		"destination": func(t model.Transfer) string { return t.DestName },
	},
}

// Create requests a transfer, reserving the requested quantities at the
// source department.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID int64  `json:"source_id"`
		DestID   int64  `json:"destination_id"`
		Priority string `json:"priority"`
		Lines    []struct {
			ItemID   int64 `json:"item_id"`
			Quantity int   `json:"quantity"`
		} `json:"lines"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]model.TransferLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, model.TransferLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	var actor *int64
	if claims := GetClaims(r); claims != nil {
		actor = &claims.UserID
	}

	transfer, err := h.Engine.RequestTransfer(r.Context(), req.SourceID, req.DestID, lines, req.Priority, actor)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, transfer)
}

// Get returns a single transfer with its lines.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	transfer, err := h.Engine.GetTransfer(r.Context(), id)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, transfer)
}

// List returns transfers through the shared query contract.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.Engine.ListTransfers(r.Context())
	if err != nil {
		ledgerError(w, err)
		return
	}

	page, err := transferCollection.Run(transfers, parseListOptions(r, "status", "priority", "source", "destination"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

// Approve moves the reserved quantities from source to destination.
func (h *TransfersHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Engine.ApproveTransfer)
}

// Reject releases the reservations without moving stock.
func (h *TransfersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Engine.RejectTransfer)
}

func (h *TransfersHandler) resolve(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64, actor *int64) (*model.Transfer, error)) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	var actor *int64
	if claims := GetClaims(r); claims != nil {
		actor = &claims.UserID
	}

	transfer, err := op(r.Context(), id, actor)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, transfer)
}
