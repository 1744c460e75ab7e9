package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/dayline-app/dayline/internal/model"
)

// sqliteTimeLayout pads fractional seconds to a fixed width so that
// lexicographic order on the stored TEXT matches chronological order.
// RFC3339Nano drops trailing zeros, which breaks the range predicates
// on start_time.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateFocusSession(ctx context.Context, timeBlockID string) (FocusSession, error) {
	if timeBlockID == "" {
		return FocusSession{}, errors.New("storage: empty time_block_id")
	}
	session := FocusSession{
		ID:          uuid.NewString(),
		TimeBlockID: timeBlockID,
		StartTime:   time.Now().UTC(),
		Status:      FocusRunning,
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO focus_sessions (id, time_block_id, start_time, end_time, duration_minutes, status)
		VALUES (?, ?, ?, NULL, NULL, ?)`,
		session.ID, session.TimeBlockID, mustTime(session.StartTime), session.Status,
	)
	if err != nil {
		return FocusSession{}, err
	}
	return session, nil
}

func (r *SQLiteRepository) CompleteFocusSession(ctx context.Context, id string) error {
	return r.finishFocusSession(ctx, id, FocusCompleted)
}

func (r *SQLiteRepository) InterruptFocusSession(ctx context.Context, id string) error {
	return r.finishFocusSession(ctx, id, FocusInterrupted)
}

// finishFocusSession moves a RUNNING session to a terminal status. Re-finishing
// a session that already reached a terminal status is a no-op.
func (r *SQLiteRepository) finishFocusSession(ctx context.Context, id string, status FocusStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT start_time, status FROM focus_sessions WHERE id = ?`, id)
	var startRaw string
	var current FocusStatus
	if err := row.Scan(&startRaw, &current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if current != FocusRunning {
		return nil
	}
	start, err := parseRequiredTime(startRaw)
	if err != nil {
		return err
	}
	end := time.Now().UTC()
	duration := int(end.Sub(start).Minutes())
	if duration < 0 {
		duration = 0
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE focus_sessions SET end_time = ?, duration_minutes = ?, status = ? WHERE id = ?`,
		mustTime(end), duration, status, id,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetFocusSession(ctx context.Context, id string) (FocusSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, time_block_id, start_time, end_time, duration_minutes, status
		FROM focus_sessions WHERE id = ?`, id)
	session, err := scanFocusSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FocusSession{}, ErrNotFound
		}
		return FocusSession{}, err
	}
	return session, nil
}

func (r *SQLiteRepository) ListCompletedFocusSessions(ctx context.Context, timeBlockID string, date model.Date) ([]FocusSession, error) {
	from, to, err := dayBounds(date)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, time_block_id, start_time, end_time, duration_minutes, status
		FROM focus_sessions
		WHERE time_block_id = ? AND status = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time ASC`,
		timeBlockID, FocusCompleted, mustTime(from), mustTime(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFocusSessions(rows)
}

func (r *SQLiteRepository) ListFocusSessionsByDate(ctx context.Context, date model.Date) ([]FocusSession, error) {
	from, to, err := dayBounds(date)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, time_block_id, start_time, end_time, duration_minutes, status
		FROM focus_sessions
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC`,
		mustTime(from), mustTime(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFocusSessions(rows)
}

// SaveActivitySession persists one sampled foreground interval. Sessions of
// ignored processes are dropped silently; the category comes from the rule
// table and falls back to UNKNOWN.
func (r *SQLiteRepository) SaveActivitySession(ctx context.Context, process, title string, start, end time.Time, durationSec int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	category := model.CategoryUnknown
	row := tx.QueryRowContext(ctx, `SELECT category, is_ignored FROM app_categories WHERE process_name = ?`, process)
	var cat string
	var ignored int
	switch err := row.Scan(&cat, &ignored); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case ignored == 1:
		return nil
	default:
		if c := model.AppCategory(cat); c.IsValid() {
			category = c
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO activity_sessions (id, process_name, window_title, start_time, end_time, duration_seconds, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), process, title, mustTime(start), mustTime(end), durationSec, category,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListActivityBetween(ctx context.Context, from, to time.Time) ([]ActivitySession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, process_name, window_title, start_time, end_time, duration_seconds, category
		FROM activity_sessions
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC`,
		mustTime(from), mustTime(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ActivitySession, 0)
	for rows.Next() {
		item, scanErr := scanActivitySession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetAppCategory(ctx context.Context, process string) (AppCategoryRule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT process_name, category, is_ignored FROM app_categories WHERE process_name = ?`, process)
	var out AppCategoryRule
	var ignored int
	if err := row.Scan(&out.ProcessName, &out.Category, &ignored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AppCategoryRule{}, ErrNotFound
		}
		return AppCategoryRule{}, err
	}
	out.IsIgnored = ignored == 1
	return out, nil
}

func (r *SQLiteRepository) SetAppCategory(ctx context.Context, rule AppCategoryRule) error {
	if rule.ProcessName == "" {
		return errors.New("storage: empty process name")
	}
	if !rule.Category.IsValid() {
		return fmt.Errorf("storage: invalid category %q", rule.Category)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_categories (process_name, category, is_ignored)
		VALUES (?, ?, ?)
		ON CONFLICT (process_name) DO UPDATE SET category = excluded.category, is_ignored = excluded.is_ignored`,
		rule.ProcessName, rule.Category, boolInt(rule.IsIgnored),
	)
	return err
}

func (r *SQLiteRepository) ListAppCategories(ctx context.Context) ([]AppCategoryRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT process_name, category, is_ignored FROM app_categories ORDER BY process_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AppCategoryRule, 0)
	for rows.Next() {
		var item AppCategoryRule
		var ignored int
		if err := rows.Scan(&item.ProcessName, &item.Category, &ignored); err != nil {
			return nil, err
		}
		item.IsIgnored = ignored == 1
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateTaskCompletion(ctx context.Context, in TaskCompletion) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_completions (
			id, date, time_block_id, task_name, task_type,
			planned_start, planned_end, planned_duration_minutes,
			actual_start, actual_end, actual_duration_minutes,
			completion_pct, confidence, inference_data,
			user_confirmed, user_corrected, user_correction_type, user_note,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, string(in.Date), in.TimeBlockID, in.TaskName, in.TaskType,
		in.PlannedStart.Minutes(), in.PlannedEnd.Minutes(), in.PlannedDurationMin,
		nullTime(in.ActualStart), nullTime(in.ActualEnd), nullInt(in.ActualDurationMin),
		in.CompletionPct, string(in.Confidence), in.InferenceData,
		boolInt(in.UserConfirmed), boolInt(in.UserCorrected), nullCorrection(in.CorrectionType), in.UserNote,
		mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDuplicateBlock
		}
		return err
	}
	return nil
}

const taskCompletionColumns = `
	id, date, time_block_id, task_name, task_type,
	planned_start, planned_end, planned_duration_minutes,
	actual_start, actual_end, actual_duration_minutes,
	completion_pct, confidence, inference_data,
	user_confirmed, user_corrected, user_correction_type, user_note,
	created_at, updated_at`

func (r *SQLiteRepository) GetTaskCompletionByBlock(ctx context.Context, date model.Date, timeBlockID string) (TaskCompletion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+taskCompletionColumns+`
		FROM task_completions WHERE date = ? AND time_block_id = ?`,
		string(date), timeBlockID,
	)
	item, err := scanTaskCompletion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TaskCompletion{}, ErrNotFound
		}
		return TaskCompletion{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) ListTaskCompletionsByDate(ctx context.Context, date model.Date) ([]TaskCompletion, error) {
	return r.listTaskCompletions(ctx, `WHERE date = ?`, string(date))
}

func (r *SQLiteRepository) ListUnconfirmedTaskCompletions(ctx context.Context, date model.Date) ([]TaskCompletion, error) {
	return r.listTaskCompletions(ctx, `WHERE user_confirmed = 0 AND date = ?`, string(date))
}

func (r *SQLiteRepository) listTaskCompletions(ctx context.Context, where string, args ...any) ([]TaskCompletion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskCompletionColumns+`
		FROM task_completions `+where+` ORDER BY planned_start ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TaskCompletion, 0)
	for rows.Next() {
		item, scanErr := scanTaskCompletion(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ConfirmTaskCompletion applies the user's review. The correction type is
// derived against the inferred value stored before any confirmation, so a
// record is confirmed at most once: re-confirming an already confirmed
// record is a no-op returning applied=false.
func (r *SQLiteRepository) ConfirmTaskCompletion(ctx context.Context, id string, newCompletion int, note string) (TaskCompletion, bool, error) {
	if newCompletion < 0 || newCompletion > 100 {
		return TaskCompletion{}, false, fmt.Errorf("storage: completion %d out of range", newCompletion)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return TaskCompletion{}, false, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+taskCompletionColumns+`
		FROM task_completions WHERE id = ?`, id)
	current, err := scanTaskCompletion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TaskCompletion{}, false, ErrNotFound
		}
		return TaskCompletion{}, false, err
	}
	if current.UserConfirmed {
		return current, false, nil
	}

	correction := model.DeriveCorrection(current.CompletionPct, newCompletion)
	corrected := newCompletion != current.CompletionPct
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE task_completions
		SET completion_pct = ?, user_confirmed = 1, user_corrected = ?, user_correction_type = ?, user_note = ?, updated_at = ?
		WHERE id = ?`,
		newCompletion, boolInt(corrected), string(correction), note, mustTime(now), id,
	); err != nil {
		return TaskCompletion{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return TaskCompletion{}, false, err
	}

	current.CompletionPct = newCompletion
	current.UserConfirmed = true
	current.UserCorrected = corrected
	current.CorrectionType = &correction
	current.UserNote = note
	current.UpdatedAt = now
	return current, true, nil
}

// MarkAutoConfirmed confirms a record without user input. Records already
// confirmed are left untouched.
func (r *SQLiteRepository) MarkAutoConfirmed(ctx context.Context, id, note string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE task_completions
		SET user_confirmed = 1, user_corrected = 0, user_note = ?, updated_at = ?
		WHERE id = ? AND user_confirmed = 0`,
		note, mustTime(time.Now().UTC()), id,
	)
	return err
}

func (r *SQLiteRepository) SummarizeDay(ctx context.Context, date model.Date) (DaySummary, error) {
	completions, err := r.ListTaskCompletionsByDate(ctx, date)
	if err != nil {
		return DaySummary{}, err
	}
	summary := DaySummary{Date: date, TotalTasks: len(completions)}
	total := 0
	for _, c := range completions {
		total += c.EffectiveCompletion()
		if c.IsDone() {
			summary.CompletedTasks++
		}
	}
	if len(completions) > 0 {
		summary.AvgCompletion = float64(total) / float64(len(completions))
	}

	sessions, err := r.ListFocusSessionsByDate(ctx, date)
	if err != nil {
		return DaySummary{}, err
	}
	for _, s := range sessions {
		if s.Status == FocusCompleted && s.DurationMin != nil {
			summary.FocusMinutes += *s.DurationMin
		}
	}
	return summary, nil
}

func (r *SQLiteRepository) SummarizeLifetime(ctx context.Context) (LifetimeTotals, error) {
	var totals LifetimeTotals
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM task_completions WHERE completion_pct >= ?`,
		completedThresholdPct).Scan(&totals.CompletedTasks)
	if err != nil {
		return LifetimeTotals{}, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0) FROM focus_sessions WHERE status = ?`,
		FocusCompleted).Scan(&totals.FocusMinutes)
	if err != nil {
		return LifetimeTotals{}, err
	}
	return totals, nil
}

func (r *SQLiteRepository) CleanupOldSessions(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, errors.New("storage: cleanup horizon must be positive")
	}
	cutoff := mustTime(time.Now().UTC().AddDate(0, 0, -days))
	var removed int64
	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_sessions WHERE start_time < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += n
	}
	res, err = r.db.ExecContext(ctx, `DELETE FROM focus_sessions WHERE start_time < ? AND status != ?`, cutoff, FocusRunning)
	if err != nil {
		return removed, err
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += n
	}
	return removed, nil
}

func (r *SQLiteRepository) CleanupOldTaskCompletions(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, errors.New("storage: cleanup horizon must be positive")
	}
	cutoff := model.NewDate(time.Now().AddDate(0, 0, -days))
	res, err := r.db.ExecContext(ctx, `DELETE FROM task_completions WHERE date < ?`, string(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func dayBounds(date model.Date) (time.Time, time.Time, error) {
	midnight, err := date.Midnight()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return midnight.UTC(), midnight.AddDate(0, 0, 1).UTC(), nil
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullCorrection(v *model.CorrectionType) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := parseRequiredTime(v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

// parseRequiredTime accepts RFC3339 with any fractional-second width, so
// rows written before the layout was fixed still scan.
func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFocusSession(s scanner) (FocusSession, error) {
	var out FocusSession
	var start string
	var end sql.NullString
	var duration sql.NullInt64
	if err := s.Scan(&out.ID, &out.TimeBlockID, &start, &end, &duration, &out.Status); err != nil {
		return FocusSession{}, err
	}
	startAt, err := parseRequiredTime(start)
	if err != nil {
		return FocusSession{}, err
	}
	endAt, err := parseNullableTime(end)
	if err != nil {
		return FocusSession{}, err
	}
	out.StartTime = startAt
	out.EndTime = endAt
	if duration.Valid {
		d := int(duration.Int64)
		out.DurationMin = &d
	}
	return out, nil
}

func collectFocusSessions(rows *sql.Rows) ([]FocusSession, error) {
	out := make([]FocusSession, 0)
	for rows.Next() {
		item, err := scanFocusSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanActivitySession(s scanner) (ActivitySession, error) {
	var out ActivitySession
	var start, end string
	if err := s.Scan(&out.ID, &out.ProcessName, &out.WindowTitle, &start, &end, &out.DurationSec, &out.Category); err != nil {
		return ActivitySession{}, err
	}
	startAt, err := parseRequiredTime(start)
	if err != nil {
		return ActivitySession{}, err
	}
	endAt, err := parseRequiredTime(end)
	if err != nil {
		return ActivitySession{}, err
	}
	out.StartTime = startAt
	out.EndTime = endAt
	return out, nil
}

func scanTaskCompletion(s scanner) (TaskCompletion, error) {
	var out TaskCompletion
	var date string
	var plannedStart, plannedEnd int
	var actualStart, actualEnd sql.NullString
	var actualDuration sql.NullInt64
	var confirmed, corrected int
	var correction sql.NullString
	var created, updated string
	if err := s.Scan(
		&out.ID, &date, &out.TimeBlockID, &out.TaskName, &out.TaskType,
		&plannedStart, &plannedEnd, &out.PlannedDurationMin,
		&actualStart, &actualEnd, &actualDuration,
		&out.CompletionPct, &out.Confidence, &out.InferenceData,
		&confirmed, &corrected, &correction, &out.UserNote,
		&created, &updated,
	); err != nil {
		return TaskCompletion{}, err
	}
	out.Date = model.Date(date)
	out.PlannedStart = model.ClockTime(plannedStart)
	out.PlannedEnd = model.ClockTime(plannedEnd)

	var err error
	if out.ActualStart, err = parseNullableTime(actualStart); err != nil {
		return TaskCompletion{}, err
	}
	if out.ActualEnd, err = parseNullableTime(actualEnd); err != nil {
		return TaskCompletion{}, err
	}
	if actualDuration.Valid {
		d := int(actualDuration.Int64)
		out.ActualDurationMin = &d
	}
	out.UserConfirmed = confirmed == 1
	out.UserCorrected = corrected == 1
	if correction.Valid && correction.String != "" {
		ct := model.CorrectionType(correction.String)
		out.CorrectionType = &ct
	}
	if out.CreatedAt, err = parseRequiredTime(created); err != nil {
		return TaskCompletion{}, err
	}
	if out.UpdatedAt, err = parseRequiredTime(updated); err != nil {
		return TaskCompletion{}, err
	}
	return out, nil
}
