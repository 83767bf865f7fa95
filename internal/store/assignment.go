package store

import (
	"database/sql"
	"fmt"
	"time"

	"chorewheel/internal/model"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

const assignmentCols = `id, task_id, member_id, due_date, status, completed_at, points_earned, created_at, updated_at`

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var completedAt sql.NullTime

	err := scanner.Scan(
		&a.ID, &a.TaskID, &a.MemberID, &a.DueDate, &a.Status,
		&completedAt, &a.PointsEarned, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return &a, nil
}

// CreateIfAbsent inserts a PENDING assignment for a task occurrence. The
// partial unique index on (task_id, due_date) makes the existence check part
// of the write itself, so two overlapping runs cannot double-create the same
// occurrence. Returns created=false when a live assignment already exists.
func (s *AssignmentStore) CreateIfAbsent(taskID, memberID int64, dueDate time.Time) (*model.Assignment, bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO assignments (task_id, member_id, due_date) VALUES (?, ?, ?)`,
		taskID, memberID, dueDate.UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, false, nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}
	a, err := s.GetByID(id)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func (s *AssignmentStore) GetByID(id int64) (*model.Assignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *AssignmentStore) ListByMember(memberID int64) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments WHERE member_id = ? ORDER BY due_date DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments by member: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (s *AssignmentStore) ListByHousehold(householdID int64) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.task_id, a.member_id, a.due_date, a.status, a.completed_at, a.points_earned, a.created_at, a.updated_at
		 FROM assignments a
		 JOIN tasks t ON t.id = a.task_id
		 WHERE t.household_id = ?
		 ORDER BY a.due_date DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments by household: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// ListOverdueOpen returns open assignments (pending, in progress, or already
// marked overdue) whose due date has passed. The penalty escalator scans
// these; including OVERDUE keeps later thresholds reachable after the status
// flip.
func (s *AssignmentStore) ListOverdueOpen(now time.Time) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments
		 WHERE status IN ('PENDING', 'IN_PROGRESS', 'OVERDUE') AND due_date < ?
		 ORDER BY due_date ASC, id ASC`,
		now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue assignments: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// ListOpenByMemberDueBetween returns a member's non-terminal assignments with
// due dates inside [start, end]. The absence redistributor moves these.
func (s *AssignmentStore) ListOpenByMemberDueBetween(memberID int64, start, end time.Time) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM assignments
		 WHERE member_id = ? AND status IN ('PENDING', 'IN_PROGRESS', 'OVERDUE')
		   AND due_date >= ? AND due_date <= ?
		 ORDER BY due_date ASC, id ASC`,
		memberID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list open assignments in window: %w", err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// Transition moves an assignment between statuses with a guard on the
// current value. Returns false when the assignment was not in any of the
// from statuses, which callers treat as a conflict.
func (s *AssignmentStore) Transition(id int64, from []model.AssignmentStatus, to model.AssignmentStatus) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("transition: empty from set")
	}
	query := `UPDATE assignments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status IN (`
	args := []any{to, id}
	for i, f := range from {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, f)
	}
	query += ")"

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("transition assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Complete marks an assignment completed and credits the member's XP in the
// same transaction. The status guard is re-checked inside the transaction so
// two concurrent completions award points once.
func (s *AssignmentStore) Complete(id int64, completedAt time.Time, points int) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var memberID int64
	var status model.AssignmentStatus
	err = tx.QueryRow(`SELECT member_id, status FROM assignments WHERE id = ?`, id).Scan(&memberID, &status)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("read assignment: %w", err)
	}

	switch status {
	case model.AssignmentPending, model.AssignmentInProgress, model.AssignmentOverdue:
	default:
		return false, nil
	}

	if _, err := tx.Exec(
		`UPDATE assignments SET status = 'COMPLETED', completed_at = ?, points_earned = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		completedAt.UTC(), points, id,
	); err != nil {
		return false, fmt.Errorf("complete assignment: %w", err)
	}

	if err := addXPTx(tx, memberID, points); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// Reassign hands an assignment to another member, preserving the due date.
// OVERDUE resets to PENDING so the new owner starts clean; other open
// statuses are preserved. Terminal assignments cannot move.
func (s *AssignmentStore) Reassign(id, toMemberID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := reassignTx(tx, id, toMemberID); err != nil {
		return err
	}
	return tx.Commit()
}

func reassignTx(tx *sql.Tx, id, toMemberID int64) error {
	var status model.AssignmentStatus
	err := tx.QueryRow(`SELECT status FROM assignments WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read assignment: %w", err)
	}
	if status.Terminal() {
		return ErrConflict
	}

	newStatus := status
	if status == model.AssignmentOverdue {
		newStatus = model.AssignmentPending
	}

	if _, err := tx.Exec(
		`UPDATE assignments SET member_id = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		toMemberID, newStatus, id,
	); err != nil {
		return fmt.Errorf("reassign assignment: %w", err)
	}
	return nil
}

// Postpone pushes an assignment's due date. Only open assignments move.
func (s *AssignmentStore) Postpone(id int64, newDue time.Time) error {
	result, err := s.db.Exec(
		`UPDATE assignments SET due_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status IN ('PENDING', 'IN_PROGRESS', 'OVERDUE')`,
		newDue.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("postpone assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// --- Load and history queries (selector snapshot inputs) ---

// OpenLoadByMember sums the task weights of pending and in-progress
// assignments due inside [since, until], keyed by member id.
func (s *AssignmentStore) OpenLoadByMember(householdID int64, since, until time.Time) (map[int64]float64, error) {
	rows, err := s.db.Query(
		`SELECT a.member_id, SUM(t.weight)
		 FROM assignments a
		 JOIN tasks t ON t.id = a.task_id
		 WHERE t.household_id = ? AND a.status IN ('PENDING', 'IN_PROGRESS')
		   AND a.due_date >= ? AND a.due_date <= ?
		 GROUP BY a.member_id`,
		householdID, since.UTC(), until.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("open load by member: %w", err)
	}
	defer rows.Close()

	loads := make(map[int64]float64)
	for rows.Next() {
		var memberID int64
		var load float64
		if err := rows.Scan(&memberID, &load); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		loads[memberID] = load
	}
	return loads, rows.Err()
}

// CompletedCountByMember counts completed and verified assignments per
// member, all time. The selector uses this for tie-breaking.
func (s *AssignmentStore) CompletedCountByMember(householdID int64) (map[int64]int, error) {
	rows, err := s.db.Query(
		`SELECT a.member_id, COUNT(*)
		 FROM assignments a
		 JOIN tasks t ON t.id = a.task_id
		 WHERE t.household_id = ? AND a.status IN ('COMPLETED', 'VERIFIED')
		 GROUP BY a.member_id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("completed count by member: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var memberID int64
		var count int
		if err := rows.Scan(&memberID, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[memberID] = count
	}
	return counts, rows.Err()
}

// CompletionDates returns the completion timestamps for a member since the
// given time, for streak calculation.
func (s *AssignmentStore) CompletionDates(memberID int64, since time.Time) ([]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT completed_at FROM assignments
		 WHERE member_id = ? AND completed_at IS NOT NULL AND completed_at >= ?
		 ORDER BY completed_at DESC`,
		memberID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("completion dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan completion date: %w", err)
		}
		dates = append(dates, t)
	}
	return dates, rows.Err()
}

func collectAssignments(rows *sql.Rows) ([]model.Assignment, error) {
	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}
