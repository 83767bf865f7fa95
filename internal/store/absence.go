package store

import (
	"database/sql"
	"fmt"
	"time"

	"chorewheel/internal/model"
)

type AbsenceStore struct {
	db *sql.DB
}

func NewAbsenceStore(db *sql.DB) *AbsenceStore {
	return &AbsenceStore{db: db}
}

const absenceCols = `id, member_id, start_date, end_date, reason, created_at`

func scanAbsence(scanner interface{ Scan(...any) error }) (*model.MemberAbsence, error) {
	var a model.MemberAbsence
	err := scanner.Scan(&a.ID, &a.MemberID, &a.StartDate, &a.EndDate, &a.Reason, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AbsenceStore) Create(memberID int64, start, end time.Time, reason string) (*model.MemberAbsence, error) {
	result, err := s.db.Exec(
		`INSERT INTO member_absences (member_id, start_date, end_date, reason) VALUES (?, ?, ?, ?)`,
		memberID, start.UTC(), end.UTC(), reason,
	)
	if err != nil {
		return nil, fmt.Errorf("insert absence: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AbsenceStore) GetByID(id int64) (*model.MemberAbsence, error) {
	row := s.db.QueryRow(`SELECT `+absenceCols+` FROM member_absences WHERE id = ?`, id)
	a, err := scanAbsence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get absence: %w", err)
	}
	return a, nil
}

func (s *AbsenceStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM member_absences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	return nil
}

// ListByHousehold returns all absences belonging to a household's members.
func (s *AbsenceStore) ListByHousehold(householdID int64) ([]model.MemberAbsence, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.member_id, a.start_date, a.end_date, a.reason, a.created_at
		 FROM member_absences a
		 JOIN members m ON m.id = a.member_id
		 WHERE m.household_id = ?
		 ORDER BY a.start_date ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list absences by household: %w", err)
	}
	defer rows.Close()
	return collectAbsences(rows)
}

// ListActive returns absences whose window covers the day containing now,
// across all households. The redistribution pass iterates these. Windows are
// inclusive at day granularity, so the comparison uses day bounds rather than
// the raw instant.
func (s *AbsenceStore) ListActive(now time.Time) ([]model.MemberAbsence, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	rows, err := s.db.Query(
		`SELECT `+absenceCols+` FROM member_absences WHERE start_date < ? AND end_date >= ? ORDER BY id ASC`,
		dayEnd, dayStart,
	)
	if err != nil {
		return nil, fmt.Errorf("list active absences: %w", err)
	}
	defer rows.Close()
	return collectAbsences(rows)
}

// ListByMember returns a member's absences, newest window first.
func (s *AbsenceStore) ListByMember(memberID int64) ([]model.MemberAbsence, error) {
	rows, err := s.db.Query(
		`SELECT `+absenceCols+` FROM member_absences WHERE member_id = ? ORDER BY start_date DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list absences by member: %w", err)
	}
	defer rows.Close()
	return collectAbsences(rows)
}

func collectAbsences(rows *sql.Rows) ([]model.MemberAbsence, error) {
	var absences []model.MemberAbsence
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan absence: %w", err)
		}
		absences = append(absences, *a)
	}
	return absences, rows.Err()
}
