package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"chorewheel/internal/model"
	"chorewheel/internal/store"
)

type AbsenceHandler struct {
	absences *store.AbsenceStore
	members  *store.MemberStore
}

func NewAbsenceHandler(absences *store.AbsenceStore, members *store.MemberStore) *AbsenceHandler {
	return &AbsenceHandler{absences: absences, members: members}
}

func (h *AbsenceHandler) ListByHousehold(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	absences, err := h.absences.ListByHousehold(householdID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list absences"})
		return
	}
	if absences == nil {
		absences = []model.MemberAbsence{}
	}
	writeJSON(w, http.StatusOK, absences)
}

func (h *AbsenceHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	absences, err := h.absences.ListByMember(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list absences"})
		return
	}
	if absences == nil {
		absences = []model.MemberAbsence{}
	}
	writeJSON(w, http.StatusOK, absences)
}

func (h *AbsenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	member, err := h.members.GetByID(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if member == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must not precede start_date"})
		return
	}

	absence, err := h.absences.Create(memberID, start, end, req.Reason)
	if err != nil {
		log.Printf("failed to create absence: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create absence"})
		return
	}
	writeJSON(w, http.StatusCreated, absence)
}

func (h *AbsenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.absences.Delete(id); err != nil {
		writeStoreError(w, err, "failed to delete absence")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
