package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"chorewheel/internal/model"
)

type TransferStore struct {
	db *sql.DB
}

func NewTransferStore(db *sql.DB) *TransferStore {
	return &TransferStore{db: db}
}

const transferCols = `id, assignment_id, from_member_id, to_member_id, reason, status, resolved_at, created_at`

func scanTransfer(scanner interface{ Scan(...any) error }) (*model.TransferRequest, error) {
	var t model.TransferRequest
	var resolvedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.AssignmentID, &t.FromMemberID, &t.ToMemberID,
		&t.Reason, &t.Status, &resolvedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resolvedAt.Valid {
		t.ResolvedAt = &resolvedAt.Time
	}
	return &t, nil
}

// Create records a pending transfer request. The partial unique index on
// pending requests rejects a second concurrent request for the same
// assignment with ErrConflict rather than overwriting the first.
func (s *TransferStore) Create(assignmentID, fromMemberID, toMemberID int64, reason string) (*model.TransferRequest, error) {
	result, err := s.db.Exec(
		`INSERT INTO transfer_requests (assignment_id, from_member_id, to_member_id, reason) VALUES (?, ?, ?, ?)`,
		assignmentID, fromMemberID, toMemberID, reason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert transfer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TransferStore) GetByID(id int64) (*model.TransferRequest, error) {
	row := s.db.QueryRow(`SELECT `+transferCols+` FROM transfer_requests WHERE id = ?`, id)
	t, err := scanTransfer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func (s *TransferStore) ListByAssignment(assignmentID int64) ([]model.TransferRequest, error) {
	rows, err := s.db.Query(
		`SELECT `+transferCols+` FROM transfer_requests WHERE assignment_id = ? ORDER BY id DESC`,
		assignmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []model.TransferRequest
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

// Resolve accepts or rejects a pending transfer. The status read and both
// writes share one transaction, so a double-accept race loses cleanly: the
// second resolver sees a non-pending status and gets ErrConflict. Only the
// receiving member may resolve; anyone else gets ErrForbidden.
func (s *TransferStore) Resolve(id int64, accept bool, actingMemberID int64, now time.Time) (*model.TransferRequest, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+transferCols+` FROM transfer_requests WHERE id = ?`, id)
	t, err := scanTransfer(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read transfer: %w", err)
	}

	if t.Status != model.TransferPending {
		return nil, ErrConflict
	}
	if t.ToMemberID != actingMemberID {
		return nil, ErrForbidden
	}

	status := model.TransferRejected
	if accept {
		status = model.TransferAccepted
		if err := reassignTx(tx, t.AssignmentID, t.ToMemberID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(
		`UPDATE transfer_requests SET status = ?, resolved_at = ? WHERE id = ?`,
		status, now.UTC(), id,
	); err != nil {
		return nil, fmt.Errorf("resolve transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	resolved := now.UTC()
	t.Status = status
	t.ResolvedAt = &resolved
	return t, nil
}

// isUniqueViolation reports whether err is a sqlite unique constraint
// failure. The modernc driver exposes it only through the message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
