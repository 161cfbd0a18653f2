// Package sqlite implements session.Store on an embedded SQLite database
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cory-johannsen/walkscape/internal/session"
	"github.com/cory-johannsen/walkscape/internal/storage/migrations"
)

// timeLayout is fixed-width UTC so stored timestamps sort lexically and the
// first ten bytes are the calendar date.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite-backed session.Store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ session.Store = (*Store)(nil)

// Open migrates the database at path to the latest schema and opens it.
//
// Precondition: path is a file path; parent directories are created.
// Postcondition: returns an open Store or a non-nil error.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: Open: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating directory for %s: %w", path, err)
	}
	if err := migrations.Up(migrations.SQLite, migrations.SQLiteURL(path)); err != nil {
		return nil, err
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}
	logger.Debug("sqlite session store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// constraintViolation reports whether err is a SQLite constraint failure
// with the given extended code. Drivers built without extended result codes
// report only SQLITE_CONSTRAINT, so the message is checked as well.
func constraintViolation(err error, code int, text string) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code() == code {
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), text)
}

func isUniqueViolation(err error) bool {
	return constraintViolation(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE")
}

func isForeignKeyViolation(err error) bool {
	return constraintViolation(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY")
}

// CreateSession inserts s.
func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	ui := sess.UIConfig
	if len(ui) == 0 {
		ui = json.RawMessage(`{}`)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, character_export, ui_config, updated_at) VALUES (?, ?, ?, ?)`,
		sess.ID.String(), nullableJSON(sess.Character), string(ui), formatTime(sess.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession returns the session with id or session.ErrSessionNotFound.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var (
		character sql.NullString
		ui        string
		updated   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT character_export, ui_config, updated_at FROM sessions WHERE id = ?`, id.String(),
	).Scan(&character, &ui, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	at, err := parseTime(updated)
	if err != nil {
		return nil, fmt.Errorf("parsing session timestamp: %w", err)
	}
	out := &session.Session{ID: id, UIConfig: json.RawMessage(ui), UpdatedAt: at}
	if character.Valid {
		out.Character = json.RawMessage(character.String)
	}
	return out, nil
}

func (s *Store) updateSessionColumn(ctx context.Context, column string, id uuid.UUID, value any, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, formatTime(at), id.String(),
	)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// UpdateCharacter replaces the session's character export.
func (s *Store) UpdateCharacter(ctx context.Context, id uuid.UUID, character json.RawMessage, at time.Time) error {
	return s.updateSessionColumn(ctx, "character_export", id, nullableJSON(character), at)
}

// UpdateUIConfig replaces the session's UI config.
func (s *Store) UpdateUIConfig(ctx context.Context, id uuid.UUID, cfg json.RawMessage, at time.Time) error {
	return s.updateSessionColumn(ctx, "ui_config", id, string(cfg), at)
}

// CreateGearSet inserts g.
//
// Postcondition: session.ErrDuplicateGearSet if the name is taken,
// session.ErrSessionNotFound if the session does not exist.
func (s *Store) CreateGearSet(ctx context.Context, g *session.GearSet) error {
	slots, err := json.Marshal(g.Slots)
	if err != nil {
		return fmt.Errorf("encoding gear set slots: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO gear_sets (id, session_id, name, slots, export, optimized, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID.String(), g.SessionID.String(), g.Name, string(slots), g.Export, g.Optimized,
		formatTime(g.CreatedAt), formatTime(g.UpdatedAt),
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return session.ErrDuplicateGearSet
	case isForeignKeyViolation(err):
		return session.ErrSessionNotFound
	default:
		return fmt.Errorf("inserting gear set: %w", err)
	}
}

// UpdateGearSet rewrites every mutable column of g.
func (s *Store) UpdateGearSet(ctx context.Context, g *session.GearSet) error {
	slots, err := json.Marshal(g.Slots)
	if err != nil {
		return fmt.Errorf("encoding gear set slots: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE gear_sets SET name = ?, slots = ?, export = ?, optimized = ?, updated_at = ?
		WHERE id = ? AND session_id = ?`,
		g.Name, string(slots), g.Export, g.Optimized, formatTime(g.UpdatedAt),
		g.ID.String(), g.SessionID.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return session.ErrDuplicateGearSet
		}
		return fmt.Errorf("updating gear set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.ErrGearSetNotFound
	}
	return nil
}

const gearSetColumns = `id, session_id, name, slots, export, optimized, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanGearSet(row scanner) (*session.GearSet, error) {
	var (
		id, sid, slots, created, updated string
		g                                session.GearSet
	)
	if err := row.Scan(&id, &sid, &g.Name, &slots, &g.Export, &g.Optimized, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if g.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing gear set id: %w", err)
	}
	if g.SessionID, err = uuid.Parse(sid); err != nil {
		return nil, fmt.Errorf("parsing gear set session id: %w", err)
	}
	if err := json.Unmarshal([]byte(slots), &g.Slots); err != nil {
		return nil, fmt.Errorf("decoding gear set slots: %w", err)
	}
	if g.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) queryGearSet(ctx context.Context, where string, args ...any) (*session.GearSet, error) {
	g, err := scanGearSet(s.db.QueryRowContext(ctx, `SELECT `+gearSetColumns+` FROM gear_sets WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrGearSetNotFound
		}
		return nil, fmt.Errorf("querying gear set: %w", err)
	}
	return g, nil
}

// GetGearSet returns a gear set by id.
func (s *Store) GetGearSet(ctx context.Context, sessionID, id uuid.UUID) (*session.GearSet, error) {
	return s.queryGearSet(ctx, `id = ? AND session_id = ?`, id.String(), sessionID.String())
}

// GetGearSetByName returns a gear set by name.
func (s *Store) GetGearSetByName(ctx context.Context, sessionID uuid.UUID, name string) (*session.GearSet, error) {
	return s.queryGearSet(ctx, `session_id = ? AND name = ?`, sessionID.String(), name)
}

// ListGearSets returns the session's gear sets ordered by name.
func (s *Store) ListGearSets(ctx context.Context, sessionID uuid.UUID) ([]*session.GearSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gearSetColumns+` FROM gear_sets WHERE session_id = ? ORDER BY name`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("listing gear sets: %w", err)
	}
	defer rows.Close()

	out := make([]*session.GearSet, 0)
	for rows.Next() {
		g, err := scanGearSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gear set row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteGearSet removes a gear set.
func (s *Store) DeleteGearSet(ctx context.Context, sessionID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM gear_sets WHERE id = ? AND session_id = ?`, id.String(), sessionID.String())
	if err != nil {
		return fmt.Errorf("deleting gear set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.ErrGearSetNotFound
	}
	return nil
}

// CreateBugReport inserts r.
func (s *Store) CreateBugReport(ctx context.Context, r *session.BugReport) error {
	var shots any
	if len(r.Screenshots) > 0 {
		b, err := json.Marshal(r.Screenshots)
		if err != nil {
			return fmt.Errorf("encoding screenshots: %w", err)
		}
		shots = string(b)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bug_reports
			(id, original_session, snapshot_session, description, app_version, client_info, screenshots, filed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.OriginalSession.String(), r.SnapshotSession.String(),
		r.Description, r.AppVersion, r.ClientInfo, shots, formatTime(r.FiledAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return session.ErrSessionNotFound
		}
		return fmt.Errorf("inserting bug report: %w", err)
	}
	return nil
}

const bugReportColumns = `id, original_session, snapshot_session, description, app_version, client_info,
	screenshots, filed_at, reviewed, reviewed_at, reviewed_by, notes`

func scanBugReport(row scanner) (*session.BugReport, error) {
	var (
		id, orig, snap, filed string
		shots, reviewedAt     sql.NullString
		r                     session.BugReport
	)
	if err := row.Scan(&id, &orig, &snap, &r.Description, &r.AppVersion, &r.ClientInfo,
		&shots, &filed, &r.Reviewed, &reviewedAt, &r.ReviewedBy, &r.Notes); err != nil {
		return nil, err
	}
	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if r.OriginalSession, err = uuid.Parse(orig); err != nil {
		return nil, err
	}
	if r.SnapshotSession, err = uuid.Parse(snap); err != nil {
		return nil, err
	}
	if r.FiledAt, err = parseTime(filed); err != nil {
		return nil, err
	}
	if shots.Valid {
		if err := json.Unmarshal([]byte(shots.String), &r.Screenshots); err != nil {
			return nil, fmt.Errorf("decoding screenshots: %w", err)
		}
	}
	if reviewedAt.Valid {
		at, err := parseTime(reviewedAt.String)
		if err != nil {
			return nil, err
		}
		r.ReviewedAt = &at
	}
	return &r, nil
}

// GetBugReport returns a report by id.
func (s *Store) GetBugReport(ctx context.Context, id uuid.UUID) (*session.BugReport, error) {
	r, err := scanBugReport(s.db.QueryRowContext(ctx,
		`SELECT `+bugReportColumns+` FROM bug_reports WHERE id = ?`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrBugReportNotFound
		}
		return nil, fmt.Errorf("querying bug report: %w", err)
	}
	return r, nil
}

// ListBugReports returns reports newest first, optionally filtered.
func (s *Store) ListBugReports(ctx context.Context, reviewed *bool) ([]*session.BugReport, error) {
	query := `SELECT ` + bugReportColumns + ` FROM bug_reports`
	var args []any
	if reviewed != nil {
		query += ` WHERE reviewed = ?`
		args = append(args, *reviewed)
	}
	query += ` ORDER BY filed_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bug reports: %w", err)
	}
	defer rows.Close()

	out := make([]*session.BugReport, 0)
	for rows.Next() {
		r, err := scanBugReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bug report row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkReviewed records a review.
func (s *Store) MarkReviewed(ctx context.Context, id uuid.UUID, by, notes string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bug_reports SET reviewed = 1, reviewed_at = ?, reviewed_by = ?, notes = ? WHERE id = ?`,
		formatTime(at), by, notes, id.String(),
	)
	if err != nil {
		return fmt.Errorf("reviewing bug report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return session.ErrBugReportNotFound
	}
	return nil
}

// RecordAccess inserts a and sets a.ID.
func (s *Store) RecordAccess(ctx context.Context, a *session.AccessLog) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO api_access_audit (session_id, endpoint, method, user_agent, ip_address, at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.SessionID.String(), a.Endpoint, a.Method, a.UserAgent, a.IPAddress, formatTime(a.At),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return session.ErrSessionNotFound
		}
		return fmt.Errorf("recording access: %w", err)
	}
	a.ID, _ = res.LastInsertId()
	return nil
}

// AccessStats summarises access at or after since.
func (s *Store) AccessStats(ctx context.Context, since time.Time) (*session.AccessStats, error) {
	cutoff := formatTime(since)
	st := &session.AccessStats{ByEndpoint: make(map[string]int), ByDay: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT session_id) FROM api_access_audit WHERE at >= ?`, cutoff,
	).Scan(&st.TotalRequests, &st.UniqueSessions); err != nil {
		return nil, fmt.Errorf("counting access: %w", err)
	}
	if err := s.countInto(ctx, st.ByEndpoint,
		`SELECT endpoint, COUNT(*) FROM api_access_audit WHERE at >= ? GROUP BY endpoint`, cutoff); err != nil {
		return nil, err
	}
	if err := s.countInto(ctx, st.ByDay,
		`SELECT substr(at, 1, 10), COUNT(*) FROM api_access_audit WHERE at >= ? GROUP BY substr(at, 1, 10)`, cutoff); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*) AS n FROM api_access_audit WHERE at >= ?
		GROUP BY session_id ORDER BY n DESC, session_id LIMIT ?`, cutoff, session.TopSessionsLimit)
	if err != nil {
		return nil, fmt.Errorf("ranking sessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id string
			sc session.SessionCount
		)
		if err := rows.Scan(&id, &sc.Requests); err != nil {
			return nil, fmt.Errorf("scanning session count: %w", err)
		}
		if sc.SessionID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		st.TopSessions = append(st.TopSessions, sc)
	}
	return st, rows.Err()
}

func (s *Store) countInto(ctx context.Context, dst map[string]int, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("grouping access: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scanning access group: %w", err)
		}
		dst[key] = n
	}
	return rows.Err()
}

// SessionAccess returns a session's most recent access entries.
func (s *Store) SessionAccess(ctx context.Context, sessionID uuid.UUID, limit int) ([]*session.AccessLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, endpoint, method, user_agent, ip_address, at FROM api_access_audit
		WHERE session_id = ? ORDER BY at DESC, id DESC LIMIT ?`, sessionID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("listing session access: %w", err)
	}
	defer rows.Close()

	out := make([]*session.AccessLog, 0)
	for rows.Next() {
		a := &session.AccessLog{SessionID: sessionID}
		var at string
		if err := rows.Scan(&a.ID, &a.Endpoint, &a.Method, &a.UserAgent, &a.IPAddress, &at); err != nil {
			return nil, fmt.Errorf("scanning access row: %w", err)
		}
		if a.At, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
