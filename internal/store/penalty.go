package store

import (
	"database/sql"
	"fmt"

	"chorewheel/internal/model"
)

type PenaltyStore struct {
	db *sql.DB
}

func NewPenaltyStore(db *sql.DB) *PenaltyStore {
	return &PenaltyStore{db: db}
}

const penaltyCols = `id, assignment_id, member_id, reason, points, description, created_at`

func scanPenalty(scanner interface{ Scan(...any) error }) (*model.Penalty, error) {
	var p model.Penalty
	err := scanner.Scan(&p.ID, &p.AssignmentID, &p.MemberID, &p.Reason, &p.Points, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIfAbsent records a penalty and deducts its points from the member's
// XP in one transaction. The unique index on (assignment_id, reason) is the
// existence check, evaluated inside the write itself, so overlapping
// escalation runs deduct at most once per threshold. Returns created=false
// when the penalty already exists.
func (s *PenaltyStore) CreateIfAbsent(assignmentID, memberID int64, reason model.PenaltyReason, points int, description string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT OR IGNORE INTO penalties (assignment_id, member_id, reason, points, description) VALUES (?, ?, ?, ?, ?)`,
		assignmentID, memberID, reason, points, description,
	)
	if err != nil {
		return false, fmt.Errorf("insert penalty: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := addXPTx(tx, memberID, -points); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (s *PenaltyStore) ListByAssignment(assignmentID int64) ([]model.Penalty, error) {
	rows, err := s.db.Query(
		`SELECT `+penaltyCols+` FROM penalties WHERE assignment_id = ? ORDER BY id ASC`,
		assignmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list penalties by assignment: %w", err)
	}
	defer rows.Close()
	return collectPenalties(rows)
}

func (s *PenaltyStore) ListByMember(memberID int64) ([]model.Penalty, error) {
	rows, err := s.db.Query(
		`SELECT `+penaltyCols+` FROM penalties WHERE member_id = ? ORDER BY id DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list penalties by member: %w", err)
	}
	defer rows.Close()
	return collectPenalties(rows)
}

func collectPenalties(rows *sql.Rows) ([]model.Penalty, error) {
	var penalties []model.Penalty
	for rows.Next() {
		p, err := scanPenalty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan penalty: %w", err)
		}
		penalties = append(penalties, *p)
	}
	return penalties, rows.Err()
}
