package handler

import (
	"log"
	"net/http"

	"chorewheel/internal/clock"
	"chorewheel/internal/planner"
	"chorewheel/internal/websocket"
)

type PlanHandler struct {
	planner *planner.Orchestrator
	clock   clock.Clock
	hub     *websocket.Hub
}

func NewPlanHandler(p *planner.Orchestrator, clk clock.Clock, hub *websocket.Hub) *PlanHandler {
	return &PlanHandler{planner: p, clock: clk, hub: hub}
}

// Run assigns every unassigned due occurrence in the household. With
// ?assist=1 the AI proposer is consulted first; its suggestions are
// validated and the deterministic selector fills any gaps.
func (h *PlanHandler) Run(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	useProposer := r.URL.Query().Get("assist") == "1"
	plan, err := h.planner.Run(r.Context(), householdID, h.clock.Now(), useProposer)
	if err != nil {
		log.Printf("failed to run plan: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to run plan"})
		return
	}

	if h.hub != nil && plan.AssignmentsCreated > 0 {
		h.hub.Broadcast(websocket.NewMessage("plan", "applied", householdID, map[string]any{
			"assignments_created": plan.AssignmentsCreated,
		}))
	}
	writeJSON(w, http.StatusOK, plan)
}
