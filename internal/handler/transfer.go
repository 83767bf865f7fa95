package handler

import (
	"encoding/json"
	"net/http"

	"chorewheel/internal/clock"
	"chorewheel/internal/model"
	"chorewheel/internal/store"
	"chorewheel/internal/transfer"
	"chorewheel/internal/websocket"
)

type TransferHandler struct {
	service   *transfer.Service
	transfers *store.TransferStore
	clock     clock.Clock
	hub       *websocket.Hub
}

func NewTransferHandler(service *transfer.Service, transfers *store.TransferStore, clk clock.Clock, hub *websocket.Hub) *TransferHandler {
	return &TransferHandler{service: service, transfers: transfers, clock: clk, hub: hub}
}

func (h *TransferHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Request opens a transfer of an assignment to another member. The path id
// is the assignment.
func (h *TransferHandler) Request(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		FromMemberID int64  `json:"from_member_id"`
		ToMemberID   int64  `json:"to_member_id"`
		Reason       string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.FromMemberID == 0 || req.ToMemberID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from_member_id and to_member_id are required"})
		return
	}

	tr, err := h.service.Request(assignmentID, req.FromMemberID, req.ToMemberID, req.Reason)
	if err != nil {
		writeStoreError(w, err, "failed to create transfer request")
		return
	}

	h.broadcast(websocket.NewMessage("transfer", "requested", tr.ID, map[string]any{
		"assignment_id": tr.AssignmentID,
		"to_member_id":  tr.ToMemberID,
	}))
	writeJSON(w, http.StatusCreated, tr)
}

// Resolve accepts or rejects a pending transfer. Only the receiving member
// may act.
func (h *TransferHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Accept         *bool `json:"accept"`
		ActingMemberID int64 `json:"acting_member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Accept == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "accept is required"})
		return
	}
	if req.ActingMemberID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "acting_member_id is required"})
		return
	}

	tr, err := h.service.Resolve(id, *req.Accept, req.ActingMemberID, h.clock.Now())
	if err != nil {
		writeStoreError(w, err, "failed to resolve transfer")
		return
	}

	action := "rejected"
	if tr.Status == model.TransferAccepted {
		action = "accepted"
	}
	h.broadcast(websocket.NewMessage("transfer", action, tr.ID, map[string]any{
		"assignment_id": tr.AssignmentID,
	}))
	writeJSON(w, http.StatusOK, tr)
}

// ListByAssignment returns the transfer history of an assignment.
func (h *TransferHandler) ListByAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	transfers, err := h.transfers.ListByAssignment(assignmentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list transfers"})
		return
	}
	if transfers == nil {
		transfers = []model.TransferRequest{}
	}
	writeJSON(w, http.StatusOK, transfers)
}
