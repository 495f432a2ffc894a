package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/medinv/medinv/internal/alerts"
	"github.com/medinv/medinv/internal/ledger"
	"github.com/medinv/medinv/internal/model"
	"github.com/medinv/medinv/internal/query"
)

// ViewsHandler serves the derived read views backing the dashboard.
type ViewsHandler struct {
	Engine           *ledger.Engine
	CriticalFraction float64
	RecentWindow     time.Duration
}

// defaultPageSize caps list responses unless the caller asks for less.
const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// parseListOptions reads the shared list-view parameters: q, sort, dir,
// offset, limit, plus the named filter fields.
func parseListOptions(r *http.Request, filterFields ...string) query.Options {
	q := r.URL.Query()

	opts := query.Options{
		Search:  q.Get("q"),
		SortKey: q.Get("sort"),
		Desc:    q.Get("dir") == "desc",
		Limit:   defaultPageSize,
	}

	if raw := q.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			opts.Offset = offset
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			opts.Limit = min(limit, maxPageSize)
		}
	}

	opts.Filters = make(map[string]string, len(filterFields))
	for _, field := range filterFields {
		if value := q.Get(field); value != "" {
			opts.Filters[field] = value
		}
	}
	return opts
}

// inventoryRow is a stock record with its derived status, the row shape shown
// in the inventory list.
type inventoryRow struct {
	model.StockRecord
	Status string `json:"status"`
}

var inventoryCollection = query.Collection[inventoryRow]{
	ID: func(r inventoryRow) string { return fmt.Sprintf("%020d-%020d", r.ItemID, r.DepartmentID) },
	Sort: map[string]func(a, b inventoryRow) int{
		"name":       func(a, b inventoryRow) int { return query.CompareStrings(a.ItemName, b.ItemName) },
		"department": func(a, b inventoryRow) int { return query.CompareStrings(a.DepartmentName, b.DepartmentName) },
		"category":   func(a, b inventoryRow) int { return query.CompareStrings(a.ItemCategory, b.ItemCategory) },
		"quantity":   func(a, b inventoryRow) int { return query.CompareInts(a.Quantity, b.Quantity) },
		"available":  func(a, b inventoryRow) int { return query.CompareInts(a.Available(), b.Available()) },
		"threshold":  func(a, b inventoryRow) int { return query.CompareInts(a.MinThreshold, b.MinThreshold) },
		"updated": func(a, b inventoryRow) int {
			return query.CompareInt64s(a.UpdatedAt.UnixNano(), b.UpdatedAt.UnixNano())
		},
	},
	Search: []func(inventoryRow) string{
		func(r inventoryRow) string { return r.ItemName },
		func(r inventoryRow) string { return r.DepartmentName },
		func(r inventoryRow) string { return r.ItemCategory },
	},
	Filter: map[string]func(inventoryRow) string{
		"category":   func(r inventoryRow) string { return r.ItemCategory },
		"department": func(r inventoryRow) string { return r.DepartmentName },
		"status":     func(r inventoryRow) string { return r.Status },
	},
}

var transactionCollection = query.Collection[model.Transaction]{
	ID: func(t model.Transaction) string { return fmt.Sprintf("%020d", t.ID) },
	Sort: map[string]func(a, b model.Transaction) int{
		"created": func(a, b model.Transaction) int {
			return query.CompareInt64s(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
		},
		"quantity":   func(a, b model.Transaction) int { return query.CompareInts(a.Quantity, b.Quantity) },
		"item":       func(a, b model.Transaction) int { return query.CompareStrings(a.ItemName, b.ItemName) },
		"department": func(a, b model.Transaction) int { return query.CompareStrings(a.DepartmentName, b.DepartmentName) },
		"kind":       func(a, b model.Transaction) int { return query.CompareStrings(a.Kind, b.Kind) },
	},
	Search: []func(model.Transaction) string{
		func(t model.Transaction) string { return t.ItemName },
		func(t model.Transaction) string { return t.DepartmentName },
		func(t model.Transaction) string { return t.ActorName },
	},
	Filter: map[string]func(model.Transaction) string{
		"kind":       func(t model.Transaction) string { return t.Kind },
		"status":     func(t model.Transaction) string { return t.Status },
		"department": func(t model.Transaction) string { return t.DepartmentName },
	},
}

// Inventory returns stock records with derived status through the shared
// query contract.
func (h *ViewsHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	records, err := h.Engine.ListStock(r.Context())
	if err != nil {
		ledgerError(w, err)
		return
	}

	rows := make([]inventoryRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, inventoryRow{StockRecord: rec, Status: alerts.Status(rec, h.CriticalFraction)})
	}

	page, err := inventoryCollection.Run(rows, parseListOptions(r, "category", "department", "status"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

// Transactions returns the ledger history through the shared query contract.
func (h *ViewsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.Engine.ListTransactions(r.Context())
	if err != nil {
		ledgerError(w, err)
		return
	}

	opts := parseListOptions(r, "kind", "status", "department")
	if opts.SortKey == "" {
		// History reads newest first by default.
		opts.SortKey = "created"
		opts.Desc = true
	}

	page, err := transactionCollection.Run(transactions, opts)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

// Alerts returns stock records needing attention, most severe first.
func (h *ViewsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	records, err := h.Engine.ListStock(r.Context())
	if err != nil {
		ledgerError(w, err)
		return
	}

	filter := alerts.Filter{
		Department: r.URL.Query().Get("department"),
		Category:   r.URL.Query().Get("category"),
	}
	jsonResponse(w, http.StatusOK, alerts.List(records, h.CriticalFraction, filter))
}

// Dashboard returns the aggregate snapshot.
func (h *ViewsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Engine.Snapshot(r.Context(), h.RecentWindow, h.CriticalFraction)
	if err != nil {
		ledgerError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snapshot)
}
