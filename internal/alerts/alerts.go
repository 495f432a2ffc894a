// Package alerts derives stock status from quantities and thresholds.
// Everything here is a pure function of stock records; recomputing after any
// stock change always yields a state consistent with the ledger.
package alerts

import (
	"sort"
	"strings"

	"github.com/medinv/medinv/internal/model"
)

// DefaultCriticalFraction is the policy constant below which low stock is
// escalated to critical, as a share of the minimum threshold.
const DefaultCriticalFraction = 0.3

// Status classifies one stock record. criticalFraction values outside (0, 1]
// fall back to the default.
func Status(rec model.StockRecord, criticalFraction float64) string {
	if criticalFraction <= 0 || criticalFraction > 1 {
		criticalFraction = DefaultCriticalFraction
	}

	available := rec.Available()
	switch {
	case available == 0:
		return model.StockOutOfStock
	case float64(available) < criticalFraction*float64(rec.MinThreshold):
		return model.StockCritical
	case available < rec.MinThreshold:
		return model.StockLow
	default:
		return model.StockInStock
	}
}

// Alert pairs a stock record with its derived status.
type Alert struct {
	model.StockRecord
	Status string `json:"status"`
}

// Filter narrows the alert list; empty fields match everything.
type Filter struct {
	Department string
	Category   string
}

// List returns the records whose status is low, critical or out-of-stock,
// ordered with critical and out-of-stock conditions first, then by ascending
// available quantity, with item then department ID as the tiebreak.
func List(records []model.StockRecord, criticalFraction float64, filter Filter) []Alert {
	alerts := []Alert{}
	for _, rec := range records {
		if filter.Department != "" && !strings.EqualFold(rec.DepartmentName, filter.Department) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(rec.ItemCategory, filter.Category) {
			continue
		}
		status := Status(rec, criticalFraction)
		if status == model.StockInStock {
			continue
		}
		alerts = append(alerts, Alert{StockRecord: rec, Status: status})
	}

	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if ra, rb := severityRank(a.Status), severityRank(b.Status); ra != rb {
			return ra < rb
		}
		if aa, ba := a.Available(), b.Available(); aa != ba {
			return aa < ba
		}
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		return a.DepartmentID < b.DepartmentID
	})

	return alerts
}

// severityRank orders critical and out-of-stock ahead of low.
func severityRank(status string) int {
	switch status {
	case model.StockOutOfStock, model.StockCritical:
		return 0
	default:
		return 1
	}
}
