package handler

import (
	"net/http"

	"chorewheel/internal/assignment"
	"chorewheel/internal/clock"
	"chorewheel/internal/model"
	"chorewheel/internal/store"
	"chorewheel/internal/websocket"
)

type AssignmentHandler struct {
	service     *assignment.Service
	assignments *store.AssignmentStore
	penalties   *store.PenaltyStore
	clock       clock.Clock
	hub         *websocket.Hub
}

func NewAssignmentHandler(service *assignment.Service, assignments *store.AssignmentStore, penalties *store.PenaltyStore, clk clock.Clock, hub *websocket.Hub) *AssignmentHandler {
	return &AssignmentHandler{
		service:     service,
		assignments: assignments,
		penalties:   penalties,
		clock:       clk,
		hub:         hub,
	}
}

func (h *AssignmentHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *AssignmentHandler) ListByHousehold(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	assignments, err := h.assignments.ListByHousehold(householdID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list assignments"})
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	assignments, err := h.assignments.ListByMember(memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list assignments"})
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	a, err := h.assignments.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get assignment"})
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "assignment not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Start moves an assignment to IN_PROGRESS.
func (h *AssignmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "started", h.service.Start)
}

// Verify confirms a completed assignment.
func (h *AssignmentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "verified", h.service.Verify)
}

// Cancel abandons an assignment without awarding points.
func (h *AssignmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancelled", h.service.Cancel)
}

func (h *AssignmentHandler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(int64) (*model.Assignment, error)) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	a, err := fn(id)
	if err != nil {
		writeStoreError(w, err, "failed to update assignment")
		return
	}

	h.broadcast(websocket.NewMessage("assignment", action, a.ID, nil))
	writeJSON(w, http.StatusOK, a)
}

// Complete marks an assignment done and awards points. The completion
// timestamp is taken from the server clock, not the request.
func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	a, err := h.service.Complete(id, h.clock.Now())
	if err != nil {
		writeStoreError(w, err, "failed to complete assignment")
		return
	}

	h.broadcast(websocket.NewMessage("assignment", "completed", a.ID, map[string]any{
		"points_earned": a.PointsEarned,
	}))
	writeJSON(w, http.StatusOK, a)
}

// Penalties lists the deductions recorded against an assignment.
func (h *AssignmentHandler) Penalties(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	penalties, err := h.penalties.ListByAssignment(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list penalties"})
		return
	}
	if penalties == nil {
		penalties = []model.Penalty{}
	}
	writeJSON(w, http.StatusOK, penalties)
}
