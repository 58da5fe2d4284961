package store

import (
	"database/sql"
	"time"
)

// ActionEntry is one committed action of a controlling session.
type ActionEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Label     string    `json:"label"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// ActionLogRepository appends and queries the action log.
type ActionLogRepository struct {
	db *sql.DB
}

// ActionLog returns the action log repository for this store.
func (s *Store) ActionLog() *ActionLogRepository {
	return &ActionLogRepository{db: s.db}
}

// Append inserts e and sets its ID. A zero CreatedAt is set to now.
func (r *ActionLogRepository) Append(e *ActionEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	result, err := r.db.Exec(
		`INSERT INTO action_log (session_id, kind, label, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.Kind, e.Label, e.Detail, e.CreatedAt,
	)
	if err != nil {
		return err
	}
	e.ID, err = result.LastInsertId()
	return err
}

// Recent returns up to limit entries, newest first.
func (r *ActionLogRepository) Recent(limit int) ([]*ActionEntry, error) {
	return r.query(
		`SELECT id, session_id, kind, label, detail, created_at FROM action_log
		 ORDER BY id DESC LIMIT ?`, limit)
}

// BySession returns up to limit entries of one session, newest first.
func (r *ActionLogRepository) BySession(sessionID string, limit int) ([]*ActionEntry, error) {
	return r.query(
		`SELECT id, session_id, kind, label, detail, created_at FROM action_log
		 WHERE session_id = ? ORDER BY id DESC LIMIT ?`, sessionID, limit)
}

// Prune deletes entries older than before and returns how many were removed.
func (r *ActionLogRepository) Prune(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM action_log WHERE created_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ActionLogRepository) query(q string, args ...any) ([]*ActionEntry, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ActionEntry
	for rows.Next() {
		e := &ActionEntry{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.Label, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
