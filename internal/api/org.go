package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/medinv/medinv/internal/store"
)

// OrgHandler handles the hospital and department hierarchy.
type OrgHandler struct {
	DB *sql.DB
}

// Tree returns all hospitals with their nested departments.
func (h *OrgHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := store.HospitalTree(r.Context(), h.DB)
	if err != nil {
		slog.Error("building hospital tree", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, tree)
}

// CreateHospital adds a hospital.
func (h *OrgHandler) CreateHospital(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name is required")
		return
	}

	hospital, err := store.CreateHospital(r.Context(), h.DB, req.Name, req.Location)
	if err != nil {
		slog.Error("creating hospital", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusCreated, hospital)
}

// UpdateHospital renames or relocates a hospital.
func (h *OrgHandler) UpdateHospital(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid hospital id")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := store.UpdateHospital(r.Context(), h.DB, id, req.Name, req.Location); err != nil {
		slog.Error("updating hospital", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteHospital removes a hospital and cascades to its departments.
func (h *OrgHandler) DeleteHospital(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid hospital id")
		return
	}

	if err := store.DeleteHospital(r.Context(), h.DB, id); err != nil {
		slog.Error("deleting hospital", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListDepartments returns departments, optionally scoped to a hospital.
func (h *OrgHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	var hospitalID int64
	if raw := r.URL.Query().Get("hospital_id"); raw != "" {
		var err error
		hospitalID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid hospital_id")
			return
		}
	}

	departments, err := store.ListDepartments(r.Context(), h.DB, hospitalID)
	if err != nil {
		slog.Error("listing departments", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, departments)
}

// CreateDepartment adds a department or subdepartment.
func (h *OrgHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HospitalID int64  `json:"hospital_id"`
		ParentID   *int64 `json:"parent_id"`
		Name       string `json:"name"`
		StaffCount int    `json:"staff_count"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.HospitalID <= 0 {
		jsonError(w, http.StatusBadRequest, "name and hospital_id are required")
		return
	}

	department, err := store.CreateDepartment(r.Context(), h.DB, req.HospitalID, req.ParentID, req.Name, req.StaffCount)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, department)
}

// UpdateDepartment changes a department's name or staffing.
func (h *OrgHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	var req struct {
		Name       string `json:"name"`
		StaffCount int    `json:"staff_count"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := store.UpdateDepartment(r.Context(), h.DB, id, req.Name, req.StaffCount); err != nil {
		slog.Error("updating department", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteDepartment removes a department.
func (h *OrgHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	if err := store.DeleteDepartment(r.Context(), h.DB, id); err != nil {
		slog.Error("deleting department", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
