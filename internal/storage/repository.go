package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dayline-app/dayline/internal/model"
)

var (
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicateBlock is returned when a completion record already exists
	// for the (date, time_block_id) pair.
	ErrDuplicateBlock = errors.New("storage: completion record already exists for block")
)

type Repository interface {
	CreateFocusSession(ctx context.Context, timeBlockID string) (FocusSession, error)
	CompleteFocusSession(ctx context.Context, id string) error
	InterruptFocusSession(ctx context.Context, id string) error
	GetFocusSession(ctx context.Context, id string) (FocusSession, error)
	ListCompletedFocusSessions(ctx context.Context, timeBlockID string, date model.Date) ([]FocusSession, error)
	ListFocusSessionsByDate(ctx context.Context, date model.Date) ([]FocusSession, error)

	SaveActivitySession(ctx context.Context, process, title string, start, end time.Time, durationSec int) error
	ListActivityBetween(ctx context.Context, from, to time.Time) ([]ActivitySession, error)

	GetAppCategory(ctx context.Context, process string) (AppCategoryRule, error)
	SetAppCategory(ctx context.Context, rule AppCategoryRule) error
	ListAppCategories(ctx context.Context) ([]AppCategoryRule, error)

	CreateTaskCompletion(ctx context.Context, in TaskCompletion) error
	GetTaskCompletionByBlock(ctx context.Context, date model.Date, timeBlockID string) (TaskCompletion, error)
	ListTaskCompletionsByDate(ctx context.Context, date model.Date) ([]TaskCompletion, error)
	ListUnconfirmedTaskCompletions(ctx context.Context, date model.Date) ([]TaskCompletion, error)
	ConfirmTaskCompletion(ctx context.Context, id string, newCompletion int, note string) (TaskCompletion, bool, error)
	MarkAutoConfirmed(ctx context.Context, id, note string) error

	SummarizeDay(ctx context.Context, date model.Date) (DaySummary, error)
	SummarizeLifetime(ctx context.Context) (LifetimeTotals, error)

	CleanupOldSessions(ctx context.Context, days int) (int64, error)
	CleanupOldTaskCompletions(ctx context.Context, days int) (int64, error)
}
