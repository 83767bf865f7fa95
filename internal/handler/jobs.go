package handler

import (
	"net/http"

	"chorewheel/internal/absence"
	"chorewheel/internal/clock"
	"chorewheel/internal/penalty"
	"chorewheel/internal/rotation"
)

// JobsHandler exposes the background passes as on-demand endpoints, so an
// operator can trigger them without waiting for the next scheduler tick.
type JobsHandler struct {
	rotation *rotation.Generator
	penalty  *penalty.Escalator
	absence  *absence.Redistributor
	clock    clock.Clock
}

func NewJobsHandler(rot *rotation.Generator, pen *penalty.Escalator, abs *absence.Redistributor, clk clock.Clock) *JobsHandler {
	return &JobsHandler{rotation: rot, penalty: pen, absence: abs, clock: clk}
}

// RunRotation materializes due occurrences.
func (h *JobsHandler) RunRotation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rotation.Run(h.clock.Now()))
}

// RunPenalties escalates overdue assignments.
func (h *JobsHandler) RunPenalties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.penalty.Run(h.clock.Now()))
}

// RunAbsences redistributes work away from absent members.
func (h *JobsHandler) RunAbsences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.absence.Run(h.clock.Now()))
}
