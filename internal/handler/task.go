package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"chorewheel/internal/model"
	"chorewheel/internal/store"
	"chorewheel/internal/websocket"
)

type TaskHandler struct {
	tasks *store.TaskStore
	hub   *websocket.Hub
}

func NewTaskHandler(tasks *store.TaskStore, hub *websocket.Hub) *TaskHandler {
	return &TaskHandler{tasks: tasks, hub: hub}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type taskRequest struct {
	Name              string                `json:"name"`
	Description       string                `json:"description"`
	Frequency         model.Frequency       `json:"frequency"`
	Weight            int                   `json:"weight"`
	MinClassification *model.Classification `json:"min_classification"`
	FirstDue          time.Time             `json:"first_due"`
}

func (r *taskRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name is required"
	}
	if !r.Frequency.Valid() {
		return "frequency must be DAILY, WEEKLY, BIWEEKLY, MONTHLY, or ONCE"
	}
	if r.Weight < 1 || r.Weight > 5 {
		return "weight must be between 1 and 5"
	}
	if r.MinClassification != nil && !r.MinClassification.Valid() {
		return "min_classification must be ADULT, TEEN, or CHILD"
	}
	return ""
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	tasks, err := h.tasks.ListByHousehold(householdID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	if req.FirstDue.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_due is required"})
		return
	}

	task, err := h.tasks.Create(householdID, req.Name, req.Description, req.Frequency, req.Weight, req.MinClassification, req.FirstDue)
	if err != nil {
		log.Printf("failed to create task: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	var req struct {
		taskRequest
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		req.Name = existing.Name
	}
	if req.Frequency == "" {
		req.Frequency = existing.Frequency
	}
	if req.Weight == 0 {
		req.Weight = existing.Weight
	}
	if req.MinClassification == nil {
		req.MinClassification = existing.MinClassification
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}

	task, err := h.tasks.Update(id, req.Name, req.Description, req.Frequency, req.Weight, req.MinClassification, active)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		writeStoreError(w, err, "failed to delete task")
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Rotation returns the recurrence schedule attached to a task.
func (h *TaskHandler) Rotation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	rotation, err := h.tasks.GetRotationByTask(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get rotation"})
		return
	}
	if rotation == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "rotation not found"})
		return
	}
	writeJSON(w, http.StatusOK, rotation)
}
