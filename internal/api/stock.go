package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/medinv/medinv/internal/ledger"
	"github.com/medinv/medinv/internal/model"
)

// StockHandler handles stock queries and ledger movements.
type StockHandler struct {
	Engine *ledger.Engine
}

func queryID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return id, err == nil && id > 0
}

// Get returns the stock record for one item in one department. Records that
// have never seen a movement read as zero.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID, ok := queryID(r, "item_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	departmentID, ok := queryID(r, "department_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "department_id is required")
		return
	}

	record, err := h.Engine.GetStock(r.Context(), itemID, departmentID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

type movementOp func(ctx context.Context, itemID, departmentID int64, quantity int, actor *int64, dedupKey string) (*model.Transaction, error)

// BookIn records a stock arrival. An Idempotency-Key header makes the call
// safe to retry.
func (h *StockHandler) BookIn(w http.ResponseWriter, r *http.Request) {
	h.book(w, r, h.Engine.BookIn)
}

// BookOut records consumption of stock.
func (h *StockHandler) BookOut(w http.ResponseWriter, r *http.Request) {
	h.book(w, r, h.Engine.BookOut)
}

func (h *StockHandler) book(w http.ResponseWriter, r *http.Request, op movementOp) {
	var req struct {
		ItemID       int64 `json:"item_id"`
		DepartmentID int64 `json:"department_id"`
		Quantity     int   `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var actor *int64
	if claims := GetClaims(r); claims != nil {
		actor = &claims.UserID
	}

	dedupKey := r.Header.Get("Idempotency-Key")
	tx, err := op(r.Context(), req.ItemID, req.DepartmentID, req.Quantity, actor, dedupKey)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, tx)
}

// SetThreshold updates the minimum stock threshold used for alerting.
func (h *StockHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID       int64 `json:"item_id"`
		DepartmentID int64 `json:"department_id"`
		MinThreshold int   `json:"min_threshold"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Engine.SetThreshold(r.Context(), req.ItemID, req.DepartmentID, req.MinThreshold); err != nil {
		ledgerError(w, err)
		return
	}

	record, err := h.Engine.GetStock(r.Context(), req.ItemID, req.DepartmentID)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, record)
}
