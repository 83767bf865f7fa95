package store

import (
	"database/sql"
	"fmt"
	"time"
)

// BackupRecord tracks one uploaded database snapshot.
type BackupRecord struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	ObjectKey   string    `json:"object_key"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func (s *BackupStore) Record(householdID int64, objectKey string, sizeBytes int64) (*BackupRecord, error) {
	result, err := s.db.Exec(
		`INSERT INTO backups (household_id, object_key, size_bytes) VALUES (?, ?, ?)`,
		householdID, objectKey, sizeBytes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var r BackupRecord
	err = s.db.QueryRow(
		`SELECT id, household_id, object_key, size_bytes, created_at FROM backups WHERE id = ?`, id,
	).Scan(&r.ID, &r.HouseholdID, &r.ObjectKey, &r.SizeBytes, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return &r, nil
}

func (s *BackupStore) ListByHousehold(householdID int64) ([]BackupRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, household_id, object_key, size_bytes, created_at FROM backups WHERE household_id = ? ORDER BY id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var records []BackupRecord
	for rows.Next() {
		var r BackupRecord
		if err := rows.Scan(&r.ID, &r.HouseholdID, &r.ObjectKey, &r.SizeBytes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
