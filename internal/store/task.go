package store

import (
	"database/sql"
	"fmt"
	"time"

	"chorewheel/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, household_id, name, description, frequency, weight, min_classification, active, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var active int
	var minClass sql.NullString

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Name, &t.Description, &t.Frequency,
		&t.Weight, &minClass, &active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Active = active != 0
	if minClass.Valid {
		c := model.Classification(minClass.String)
		t.MinClassification = &c
	}
	return &t, nil
}

// Create inserts a task and its rotation in one transaction. Every task has
// exactly one rotation row; firstDue seeds its schedule.
func (s *TaskStore) Create(householdID int64, name, description string, freq model.Frequency, weight int, minClass *model.Classification, firstDue time.Time) (*model.Task, error) {
	var mc sql.NullString
	if minClass != nil {
		mc = sql.NullString{String: string(*minClass), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO tasks (household_id, name, description, frequency, weight, min_classification) VALUES (?, ?, ?, ?, ?, ?)`,
		householdID, name, description, freq, weight, mc,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO rotations (task_id, next_due) VALUES (?, ?)`,
		id, firstDue.UTC(),
	); err != nil {
		return nil, fmt.Errorf("insert rotation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByHousehold(householdID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? ORDER BY name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, name, description string, freq model.Frequency, weight int, minClass *model.Classification, active bool) (*model.Task, error) {
	var mc sql.NullString
	if minClass != nil {
		mc = sql.NullString{String: string(*minClass), Valid: true}
	}
	var a int
	if active {
		a = 1
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET name = ?, description = ?, frequency = ?, weight = ?, min_classification = ?, active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, description, freq, weight, mc, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// --- Rotation methods ---

const rotationCols = `id, task_id, next_due, active, created_at, updated_at`

func scanRotation(scanner interface{ Scan(...any) error }) (*model.Rotation, error) {
	var r model.Rotation
	var active int
	err := scanner.Scan(&r.ID, &r.TaskID, &r.NextDue, &active, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Active = active != 0
	return &r, nil
}

func (s *TaskStore) GetRotationByTask(taskID int64) (*model.Rotation, error) {
	row := s.db.QueryRow(`SELECT `+rotationCols+` FROM rotations WHERE task_id = ?`, taskID)
	r, err := scanRotation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rotation: %w", err)
	}
	return r, nil
}

// DueRotation pairs a rotation with the task fields the generator needs.
type DueRotation struct {
	Rotation model.Rotation
	Task     model.Task
}

// ListDue returns active rotations of active tasks whose next_due has
// elapsed, oldest first.
func (s *TaskStore) ListDue(now time.Time) ([]DueRotation, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.task_id, r.next_due, r.active, r.created_at, r.updated_at,
		        t.id, t.household_id, t.name, t.description, t.frequency, t.weight, t.min_classification, t.active, t.created_at, t.updated_at
		 FROM rotations r
		 JOIN tasks t ON t.id = r.task_id
		 WHERE r.active = 1 AND t.active = 1 AND r.next_due <= ?
		 ORDER BY r.next_due ASC, r.id ASC`,
		now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list due rotations: %w", err)
	}
	defer rows.Close()

	var due []DueRotation
	for rows.Next() {
		var d DueRotation
		var rActive, tActive int
		var minClass sql.NullString
		err := rows.Scan(
			&d.Rotation.ID, &d.Rotation.TaskID, &d.Rotation.NextDue, &rActive, &d.Rotation.CreatedAt, &d.Rotation.UpdatedAt,
			&d.Task.ID, &d.Task.HouseholdID, &d.Task.Name, &d.Task.Description, &d.Task.Frequency, &d.Task.Weight, &minClass, &tActive, &d.Task.CreatedAt, &d.Task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan due rotation: %w", err)
		}
		d.Rotation.Active = rActive != 0
		d.Task.Active = tActive != 0
		if minClass.Valid {
			c := model.Classification(minClass.String)
			d.Task.MinClassification = &c
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// AdvanceRotation moves next_due forward. The guard on the previous value
// keeps next_due monotonic when two runs overlap: the second run's update
// matches zero rows instead of rewinding the schedule.
func (s *TaskStore) AdvanceRotation(rotationID int64, from, to time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE rotations SET next_due = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND next_due = ?`,
		to.UTC(), rotationID, from.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("advance rotation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeactivateRotation retires a rotation. ONCE tasks land here after firing.
func (s *TaskStore) DeactivateRotation(rotationID int64) error {
	_, err := s.db.Exec(
		`UPDATE rotations SET active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		rotationID,
	)
	if err != nil {
		return fmt.Errorf("deactivate rotation: %w", err)
	}
	return nil
}

// UnassignedOccurrence is a due task occurrence with no live assignment.
type UnassignedOccurrence struct {
	Task    model.Task
	DueDate time.Time
}

// ListUnassignedDue returns, for one household, every due occurrence (active
// rotation, next_due elapsed) that has no non-cancelled assignment. The plan
// orchestrator feeds these through the selector in one batch.
func (s *TaskStore) ListUnassignedDue(householdID int64, now time.Time) ([]UnassignedOccurrence, error) {
	rows, err := s.db.Query(
		`SELECT t.id, t.household_id, t.name, t.description, t.frequency, t.weight, t.min_classification, t.active, t.created_at, t.updated_at,
		        r.next_due
		 FROM rotations r
		 JOIN tasks t ON t.id = r.task_id
		 WHERE t.household_id = ? AND r.active = 1 AND t.active = 1 AND r.next_due <= ?
		   AND NOT EXISTS (
		       SELECT 1 FROM assignments a
		       WHERE a.task_id = t.id AND a.due_date = r.next_due AND a.status != 'CANCELLED'
		   )
		 ORDER BY r.next_due ASC, t.id ASC`,
		householdID, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list unassigned due: %w", err)
	}
	defer rows.Close()

	var occurrences []UnassignedOccurrence
	for rows.Next() {
		var o UnassignedOccurrence
		var active int
		var minClass sql.NullString
		err := rows.Scan(
			&o.Task.ID, &o.Task.HouseholdID, &o.Task.Name, &o.Task.Description, &o.Task.Frequency,
			&o.Task.Weight, &minClass, &active, &o.Task.CreatedAt, &o.Task.UpdatedAt,
			&o.DueDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan unassigned occurrence: %w", err)
		}
		o.Task.Active = active != 0
		if minClass.Valid {
			c := model.Classification(minClass.String)
			o.Task.MinClassification = &c
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}
