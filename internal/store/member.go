package store

import (
	"database/sql"
	"fmt"

	"chorewheel/internal/model"
	"chorewheel/internal/scoring"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, household_id, name, classification, active, pin IS NOT NULL, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	var active int
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.Name, &m.Classification, &active, &m.HasPIN, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Active = active != 0
	return &m, nil
}

func (s *MemberStore) Create(householdID int64, name string, class model.Classification) (*model.Member, error) {
	result, err := s.db.Exec(
		`INSERT INTO members (household_id, name, classification) VALUES (?, ?, ?)`,
		householdID, name, class,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id int64) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) ListByHousehold(householdID int64) ([]model.Member, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM members WHERE household_id = ? ORDER BY id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) Update(id int64, name string, class model.Classification, active bool) (*model.Member, error) {
	var a int
	if active {
		a = 1
	}
	_, err := s.db.Exec(
		`UPDATE members SET name = ?, classification = ?, active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, class, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// --- PIN methods ---

func (s *MemberStore) SetPIN(id int64, hashedPIN string) error {
	_, err := s.db.Exec(`UPDATE members SET pin = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hashedPIN, id)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *MemberStore) ClearPIN(id int64) error {
	_, err := s.db.Exec(`UPDATE members SET pin = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

func (s *MemberStore) GetPINHash(id int64) (string, error) {
	var pin sql.NullString
	err := s.db.QueryRow(`SELECT pin FROM members WHERE id = ?`, id).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query pin: %w", err)
	}
	if !pin.Valid {
		return "", nil
	}
	return pin.String, nil
}

// --- Level methods ---

// GetLevel returns the member's level row, defaulting to level 1 with zero XP
// when no award or penalty has touched the member yet.
func (s *MemberStore) GetLevel(memberID int64) (*model.MemberLevel, error) {
	var lvl model.MemberLevel
	err := s.db.QueryRow(
		`SELECT member_id, xp, level, updated_at FROM member_levels WHERE member_id = ?`,
		memberID,
	).Scan(&lvl.MemberID, &lvl.XP, &lvl.Level, &lvl.UpdatedAt)
	if err == sql.ErrNoRows {
		return &model.MemberLevel{MemberID: memberID, XP: 0, Level: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get level: %w", err)
	}
	return &lvl, nil
}

// AddXP adjusts a member's experience by delta (which may be negative),
// floors the result at zero, and rederives the level. The whole adjustment is
// one transaction.
func (s *MemberStore) AddXP(memberID int64, delta int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := addXPTx(tx, memberID, delta); err != nil {
		return err
	}
	return tx.Commit()
}

// addXPTx applies an XP delta inside an existing transaction so callers can
// combine it with their own writes (completion, penalty creation).
func addXPTx(tx *sql.Tx, memberID int64, delta int) error {
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO member_levels (member_id, xp, level) VALUES (?, 0, 1)`,
		memberID,
	); err != nil {
		return fmt.Errorf("ensure level row: %w", err)
	}

	var xp int
	if err := tx.QueryRow(`SELECT xp FROM member_levels WHERE member_id = ?`, memberID).Scan(&xp); err != nil {
		return fmt.Errorf("read xp: %w", err)
	}

	xp += delta
	if xp < 0 {
		xp = 0
	}

	if _, err := tx.Exec(
		`UPDATE member_levels SET xp = ?, level = ?, updated_at = CURRENT_TIMESTAMP WHERE member_id = ?`,
		xp, scoring.LevelForXP(xp), memberID,
	); err != nil {
		return fmt.Errorf("update xp: %w", err)
	}
	return nil
}

// --- Preference methods ---

// SetPreference upserts a member's bias for a task.
func (s *MemberStore) SetPreference(memberID, taskID int64, bias model.PreferenceBias) error {
	_, err := s.db.Exec(
		`INSERT INTO member_preferences (member_id, task_id, bias) VALUES (?, ?, ?)
		 ON CONFLICT (member_id, task_id) DO UPDATE SET bias = excluded.bias`,
		memberID, taskID, bias,
	)
	if err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

func (s *MemberStore) ClearPreference(memberID, taskID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM member_preferences WHERE member_id = ? AND task_id = ?`,
		memberID, taskID,
	)
	if err != nil {
		return fmt.Errorf("clear preference: %w", err)
	}
	return nil
}

// BiasByMemberForTask returns each member's bias for the given task.
func (s *MemberStore) BiasByMemberForTask(taskID int64) (map[int64]model.PreferenceBias, error) {
	rows, err := s.db.Query(
		`SELECT member_id, bias FROM member_preferences WHERE task_id = ?`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[int64]model.PreferenceBias)
	for rows.Next() {
		var memberID int64
		var bias model.PreferenceBias
		if err := rows.Scan(&memberID, &bias); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[memberID] = bias
	}
	return prefs, rows.Err()
}

func (s *MemberStore) ListPreferences(memberID int64) ([]model.MemberPreference, error) {
	rows, err := s.db.Query(
		`SELECT id, member_id, task_id, bias, created_at FROM member_preferences WHERE member_id = ? ORDER BY task_id ASC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []model.MemberPreference
	for rows.Next() {
		var p model.MemberPreference
		if err := rows.Scan(&p.ID, &p.MemberID, &p.TaskID, &p.Bias, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
