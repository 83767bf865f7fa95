package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"chorewheel/internal/absence"
	"chorewheel/internal/assignment"
	"chorewheel/internal/assist"
	"chorewheel/internal/backup"
	"chorewheel/internal/clock"
	"chorewheel/internal/fairness"
	"chorewheel/internal/handler"
	"chorewheel/internal/middleware"
	"chorewheel/internal/penalty"
	"chorewheel/internal/planner"
	"chorewheel/internal/rotation"
	"chorewheel/internal/scheduler"
	"chorewheel/internal/store"
	"chorewheel/internal/transfer"
	ws "chorewheel/internal/websocket"
)

// Config collects the pieces of application configuration the server needs.
type Config struct {
	Assist            assist.Config
	Backup            backup.Config
	SchedulerInterval time.Duration
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	householdH    *handler.HouseholdHandler
	memberH       *handler.MemberHandler
	taskH         *handler.TaskHandler
	assignmentH   *handler.AssignmentHandler
	absenceH      *handler.AbsenceHandler
	transferH     *handler.TransferHandler
	jobsH         *handler.JobsHandler
	planH         *handler.PlanHandler
	backupH       *handler.BackupHandler
	rateLimiter   *middleware.RateLimiter
	scheduler     *scheduler.Scheduler
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	clk := clock.System{}

	households := store.NewHouseholdStore(db)
	members := store.NewMemberStore(db)
	tasks := store.NewTaskStore(db)
	assignments := store.NewAssignmentStore(db)
	absences := store.NewAbsenceStore(db)
	penalties := store.NewPenaltyStore(db)
	transfers := store.NewTransferStore(db)
	backups := store.NewBackupStore(db)

	loader := &fairness.Loader{
		Members:  members,
		Absences: absences,
		Loads:    assignments,
		Prefs:    members,
	}

	assignmentSvc := assignment.NewService(assignments, tasks)
	transferSvc := transfer.NewService(transfers, assignments, members)

	rotationGen := rotation.NewGenerator(tasks, assignments, loader, logger.With("component", "rotation"))
	penaltyEsc := penalty.NewEscalator(assignments, penalties, logger.With("component", "penalty"))
	absenceRed := absence.NewRedistributor(absences, assignments, members, tasks, loader, logger.With("component", "absence"))

	var proposer planner.Proposer
	if assistClient := assist.NewClient(cfg.Assist); assistClient.Configured() {
		proposer = assistClient
	}
	plannerOrc := planner.NewOrchestrator(tasks, assignments, loader, proposer, logger.With("component", "planner"))

	backupMgr := backup.NewManager(cfg.Backup, db, backups, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		householdH:    handler.NewHouseholdHandler(households),
		memberH:       handler.NewMemberHandler(members, tasks),
		taskH:         handler.NewTaskHandler(tasks, hub),
		assignmentH:   handler.NewAssignmentHandler(assignmentSvc, assignments, penalties, clk, hub),
		absenceH:      handler.NewAbsenceHandler(absences, members),
		transferH:     handler.NewTransferHandler(transferSvc, transfers, clk, hub),
		jobsH:         handler.NewJobsHandler(rotationGen, penaltyEsc, absenceRed, clk),
		planH:         handler.NewPlanHandler(plannerOrc, clk, hub),
		backupH:       handler.NewBackupHandler(backupMgr, backups),
		rateLimiter:   middleware.NewRateLimiter(),
		scheduler:     scheduler.New(rotationGen, penaltyEsc, absenceRed, clk, logger.With("component", "scheduler"), cfg.SchedulerInterval),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// Scheduler returns the background scheduler so main can start and stop it.
func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Households
	mux.HandleFunc("GET /api/households", s.householdH.List)
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households/{id}", s.householdH.Get)

	// Members
	mux.HandleFunc("GET /api/households/{id}/members", s.memberH.List)
	mux.HandleFunc("POST /api/households/{id}/members", s.memberH.Create)
	mux.HandleFunc("GET /api/members/{id}", s.memberH.Get)
	mux.HandleFunc("PUT /api/members/{id}", s.memberH.Update)
	mux.HandleFunc("DELETE /api/members/{id}", s.memberH.Delete)
	mux.HandleFunc("GET /api/members/{id}/level", s.memberH.Level)

	// PINs
	mux.HandleFunc("POST /api/members/{id}/pin", s.memberH.SetPIN)
	mux.HandleFunc("DELETE /api/members/{id}/pin", s.memberH.ClearPIN)
	mux.HandleFunc("POST /api/members/{id}/pin/verify", s.rateLimitedHandler(s.memberH.VerifyPIN))

	// Preferences
	mux.HandleFunc("GET /api/members/{id}/preferences", s.memberH.ListPreferences)
	mux.HandleFunc("PUT /api/members/{id}/preferences/{taskID}", s.memberH.SetPreference)
	mux.HandleFunc("DELETE /api/members/{id}/preferences/{taskID}", s.memberH.ClearPreference)

	// Tasks and rotations
	mux.HandleFunc("GET /api/households/{id}/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/households/{id}/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("GET /api/tasks/{id}/rotation", s.taskH.Rotation)

	// Assignments
	mux.HandleFunc("GET /api/households/{id}/assignments", s.assignmentH.ListByHousehold)
	mux.HandleFunc("GET /api/members/{id}/assignments", s.assignmentH.ListByMember)
	mux.HandleFunc("GET /api/assignments/{id}", s.assignmentH.Get)
	mux.HandleFunc("POST /api/assignments/{id}/start", s.assignmentH.Start)
	mux.HandleFunc("POST /api/assignments/{id}/complete", s.assignmentH.Complete)
	mux.HandleFunc("POST /api/assignments/{id}/verify", s.assignmentH.Verify)
	mux.HandleFunc("POST /api/assignments/{id}/cancel", s.assignmentH.Cancel)
	mux.HandleFunc("GET /api/assignments/{id}/penalties", s.assignmentH.Penalties)

	// Transfers
	mux.HandleFunc("POST /api/assignments/{id}/transfers", s.transferH.Request)
	mux.HandleFunc("GET /api/assignments/{id}/transfers", s.transferH.ListByAssignment)
	mux.HandleFunc("POST /api/transfers/{id}/resolve", s.transferH.Resolve)

	// Absences
	mux.HandleFunc("GET /api/households/{id}/absences", s.absenceH.ListByHousehold)
	mux.HandleFunc("GET /api/members/{id}/absences", s.absenceH.ListByMember)
	mux.HandleFunc("POST /api/members/{id}/absences", s.absenceH.Create)
	mux.HandleFunc("DELETE /api/absences/{id}", s.absenceH.Delete)

	// Planning and background passes
	mux.HandleFunc("POST /api/households/{id}/plan", s.planH.Run)
	mux.HandleFunc("POST /api/jobs/rotation", s.jobsH.RunRotation)
	mux.HandleFunc("POST /api/jobs/penalties", s.jobsH.RunPenalties)
	mux.HandleFunc("POST /api/jobs/absences", s.jobsH.RunAbsences)

	// Backups
	mux.HandleFunc("POST /api/households/{id}/backups", s.backupH.Run)
	mux.HandleFunc("GET /api/households/{id}/backups", s.backupH.List)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
