package repos

import (
	"context"
	"strings"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type LessonRecordRepo interface {
	GetByUserID(ctx context.Context, userID string) []types.LessonRecord
	GetByDate(ctx context.Context, userID, date string) (*types.LessonRecord, bool)
	GetByID(ctx context.Context, id string) (*types.LessonRecord, bool)
	CreateLessonRecord(ctx context.Context, rec types.LessonRecord) (types.LessonRecord, error)
	UpdateLessonRecord(ctx context.Context, id string, patch map[string]any) (*types.LessonRecord, error)
	DeleteLessonRecord(ctx context.Context, id string) (bool, error)
	MonthlyReport(ctx context.Context, userID, month string) types.LessonReport
}

type lessonRecordRepo struct {
	engine *Engine[types.LessonRecord]
	log    *logger.Logger
}

func NewLessonRecordRepo(deps Deps) LessonRecordRepo {
	repoLog := deps.Log.With("repo", "LessonRecordRepo")
	return &lessonRecordRepo{
		engine: NewEngine(EngineConfig{Table: "lesson_record", LocalKey: localKeyLessonRecords}, deps, lessonRecordMapper),
		log:    repoLog,
	}
}

func (r *lessonRecordRepo) GetByUserID(ctx context.Context, userID string) []types.LessonRecord {
	return r.engine.FindAll(ctx, userID)
}

// GetByDate assumes at most one record per day but that is not enforced
// anywhere; when duplicates exist the earliest-created one wins.
func (r *lessonRecordRepo) GetByDate(ctx context.Context, userID, date string) (*types.LessonRecord, bool) {
	records := r.engine.FindWhere(ctx, userID, map[string]any{"date": date}, "createdAt", true)
	if len(records) == 0 {
		return nil, false
	}
	return &records[0], true
}

func (r *lessonRecordRepo) GetByID(ctx context.Context, id string) (*types.LessonRecord, bool) {
	rec, ok := r.engine.FindByID(ctx, id)
	if !ok {
		return nil, false
	}
	return &rec, true
}

func (r *lessonRecordRepo) CreateLessonRecord(ctx context.Context, rec types.LessonRecord) (types.LessonRecord, error) {
	return r.engine.Create(ctx, patchOf(rec))
}

func (r *lessonRecordRepo) UpdateLessonRecord(ctx context.Context, id string, patch map[string]any) (*types.LessonRecord, error) {
	return r.engine.Update(ctx, id, patch)
}

// DeleteLessonRecord deletes on both paths; the engine already drops the
// local mirror even after a remote success, which guards against transient
// local staleness.
func (r *lessonRecordRepo) DeleteLessonRecord(ctx context.Context, id string) (bool, error) {
	return r.engine.Delete(ctx, id)
}

// MonthlyReport rolls lesson records up for payroll. month is "2006-01".
func (r *lessonRecordRepo) MonthlyReport(ctx context.Context, userID, month string) types.LessonReport {
	report := types.LessonReport{Month: month}
	for _, rec := range r.GetByUserID(ctx, userID) {
		if !strings.HasPrefix(rec.Date, month) {
			continue
		}
		report.LessonCount++
		report.TotalMinutes += rec.Duration
	}
	return report
}
