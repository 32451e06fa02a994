package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"preop-callbot/pkg"
)

// ErrSessionNotFound is returned when a session id has no row.
var ErrSessionNotFound = errors.New("session not found")

// Repository wraps database operations for call sessions. A single Postgres
// database holds sessions with their history and report as JSONB columns.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB. The caller
// is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// CreateSession inserts a fresh in-progress session and returns it.
func (r *Repository) CreateSession(ctx context.Context, patientID string, callType pkg.CallType, daysPostSurgery int) (*pkg.CallSession, error) {
	sess := &pkg.CallSession{
		ID:              uuid.New().String(),
		PatientID:       patientID,
		CallType:        callType,
		Status:          pkg.StatusInProgress,
		DaysPostSurgery: daysPostSurgery,
		History:         []pkg.ConversationTurn{},
		StartedAt:       time.Now().UTC(),
	}
	history, report, err := marshalState(sess)
	if err != nil {
		return nil, err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO call_sessions (id, patient_id, call_type, status, days_post_surgery, history, report, started_at, duration_seconds)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sess.ID, sess.PatientID, sess.CallType, sess.Status, sess.DaysPostSurgery,
		history, report, sess.StartedAt, sess.DurationSeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Load retrieves a session with its full history and report.
func (r *Repository) Load(ctx context.Context, id string) (*pkg.CallSession, error) {
	var (
		sess    pkg.CallSession
		history []byte
		report  []byte
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, patient_id, call_type, status, days_post_surgery, history, report, started_at, duration_seconds
         FROM call_sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.PatientID, &sess.CallType, &sess.Status, &sess.DaysPostSurgery,
		&history, &report, &sess.StartedAt, &sess.DurationSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	if err := json.Unmarshal(history, &sess.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if err := json.Unmarshal(report, &sess.Report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &sess, nil
}

// Save durably records the session's updated history, report, status, and
// duration. The caller must not report a turn successful if this fails.
func (r *Repository) Save(ctx context.Context, sess *pkg.CallSession) error {
	history, report, err := marshalState(sess)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE call_sessions
         SET status = $1, history = $2, report = $3, duration_seconds = $4
         WHERE id = $5`,
		sess.Status, history, report, sess.DurationSeconds, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListByPatient returns a patient's sessions, newest first.
func (r *Repository) ListByPatient(ctx context.Context, patientID string) ([]pkg.CallSession, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, patient_id, call_type, status, days_post_surgery, history, report, started_at, duration_seconds
         FROM call_sessions WHERE patient_id = $1 ORDER BY started_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []pkg.CallSession
	for rows.Next() {
		var (
			sess    pkg.CallSession
			history []byte
			report  []byte
		)
		if err := rows.Scan(&sess.ID, &sess.PatientID, &sess.CallType, &sess.Status, &sess.DaysPostSurgery,
			&history, &report, &sess.StartedAt, &sess.DurationSeconds); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(history, &sess.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		if err := json.Unmarshal(report, &sess.Report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func marshalState(sess *pkg.CallSession) (history, report []byte, err error) {
	history, err = json.Marshal(sess.History)
	if err != nil {
		return nil, nil, fmt.Errorf("encode history: %w", err)
	}
	report, err = json.Marshal(sess.Report)
	if err != nil {
		return nil, nil, fmt.Errorf("encode report: %w", err)
	}
	return history, report, nil
}
