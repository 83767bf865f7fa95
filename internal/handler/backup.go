package handler

import (
	"log"
	"net/http"

	"chorewheel/internal/backup"
	"chorewheel/internal/store"
)

type BackupHandler struct {
	manager *backup.Manager
	backups *store.BackupStore
}

func NewBackupHandler(manager *backup.Manager, backups *store.BackupStore) *BackupHandler {
	return &BackupHandler{manager: manager, backups: backups}
}

// Run takes an encrypted snapshot for the household and uploads it.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if !h.manager.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backups are not configured"})
		return
	}

	record, err := h.manager.RunNow(r.Context(), householdID)
	if err != nil {
		log.Printf("failed to run backup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to run backup"})
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// List returns the snapshot history for a household.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	records, err := h.backups.ListByHousehold(householdID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	if records == nil {
		records = []store.BackupRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
