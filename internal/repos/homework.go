package repos

import (
	"context"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type HomeworkRepo interface {
	GetByUserID(ctx context.Context, userID string) []types.Homework
	GetByStatus(ctx context.Context, userID, status string) []types.Homework
	GetByID(ctx context.Context, id string) (*types.Homework, bool)
	CreateHomework(ctx context.Context, hw types.Homework) (types.Homework, error)
	UpdateHomework(ctx context.Context, id string, patch map[string]any) (*types.Homework, error)
	ToggleStatus(ctx context.Context, id string) (*types.Homework, error)
	DeleteHomework(ctx context.Context, id string) (bool, error)
}

type homeworkRepo struct {
	engine *Engine[types.Homework]
	log    *logger.Logger
}

func NewHomeworkRepo(deps Deps) HomeworkRepo {
	repoLog := deps.Log.With("repo", "HomeworkRepo")
	return &homeworkRepo{
		engine: NewEngine(EngineConfig{Table: "homework", LocalKey: localKeyHomework}, deps, homeworkMapper),
		log:    repoLog,
	}
}

func (r *homeworkRepo) GetByUserID(ctx context.Context, userID string) []types.Homework {
	return r.engine.FindAll(ctx, userID)
}

func (r *homeworkRepo) GetByStatus(ctx context.Context, userID, status string) []types.Homework {
	return r.engine.FindWhere(ctx, userID, map[string]any{"status": status}, "createdAt", true)
}

func (r *homeworkRepo) GetByID(ctx context.Context, id string) (*types.Homework, bool) {
	hw, ok := r.engine.FindByID(ctx, id)
	if !ok {
		return nil, false
	}
	return &hw, true
}

func (r *homeworkRepo) CreateHomework(ctx context.Context, hw types.Homework) (types.Homework, error) {
	if hw.Status == "" {
		hw.Status = types.HomeworkStatusTodo
	}
	return r.engine.Create(ctx, patchOf(hw))
}

func (r *homeworkRepo) UpdateHomework(ctx context.Context, id string, patch map[string]any) (*types.Homework, error) {
	return r.engine.Update(ctx, id, patch)
}

// ToggleStatus is a read-modify-write with no optimistic-concurrency guard;
// two interleaved toggles can lose one update. Known limitation.
func (r *homeworkRepo) ToggleStatus(ctx context.Context, id string) (*types.Homework, error) {
	hw, ok := r.engine.FindByID(ctx, id)
	if !ok {
		return nil, nil
	}
	next := types.HomeworkStatusDone
	if hw.Status == types.HomeworkStatusDone {
		next = types.HomeworkStatusTodo
	}
	return r.engine.Update(ctx, id, map[string]any{"status": next})
}

func (r *homeworkRepo) DeleteHomework(ctx context.Context, id string) (bool, error) {
	return r.engine.Delete(ctx, id)
}
