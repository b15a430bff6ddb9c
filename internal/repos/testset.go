package repos

import (
	"context"

	"github.com/tutordesk/tutordesk-backend/internal/ident"
	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/remote"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

// TestSetRepo writes a test set and its per-subject scores as one logical
// unit. Scores are always replaced as a whole set (delete-all then
// insert-all remotely, full overwrite locally); there is no partial score
// update.
type TestSetRepo interface {
	GetByUserID(ctx context.Context, userID string) []types.TestSet
	GetByID(ctx context.Context, id string) (*types.TestSet, bool)
	CreateTestSet(ctx context.Context, set types.TestSet, scores []types.TestScore) (types.TestSet, error)
	UpdateTestSet(ctx context.Context, id string, patch map[string]any, scores []types.TestScore) (*types.TestSet, error)
	DeleteTestSet(ctx context.Context, id string) (bool, error)
}

type testSetRepo struct {
	sets   *Engine[types.TestSet]
	scores *Engine[types.TestScore]
	deps   Deps
	log    *logger.Logger
}

func NewTestSetRepo(deps Deps) TestSetRepo {
	repoLog := deps.Log.With("repo", "TestSetRepo")
	return &testSetRepo{
		sets:   NewEngine(EngineConfig{Table: "test_set", LocalKey: localKeyTestSets}, deps, testSetMapper),
		scores: NewEngine(EngineConfig{Table: "test_score", LocalKey: localKeyTestScores}, deps, testScoreMapper),
		deps:   deps,
		log:    repoLog,
	}
}

func (r *testSetRepo) GetByUserID(ctx context.Context, userID string) []types.TestSet {
	sets := r.sets.FindAll(ctx, userID)
	for i := range sets {
		sets[i].Scores = r.scoresOf(ctx, sets[i].ID)
	}
	return sets
}

func (r *testSetRepo) GetByID(ctx context.Context, id string) (*types.TestSet, bool) {
	set, ok := r.sets.FindByID(ctx, id)
	if !ok {
		return nil, false
	}
	set.Scores = r.scoresOf(ctx, set.ID)
	return &set, true
}

func (r *testSetRepo) scoresOf(ctx context.Context, setID string) []types.TestScore {
	return r.scores.FindWhere(ctx, "", map[string]any{"testSetId": setID}, "createdAt", true)
}

func (r *testSetRepo) CreateTestSet(ctx context.Context, set types.TestSet, scores []types.TestScore) (types.TestSet, error) {
	if r.sets.remoteCapable(ctx) {
		if created, err := r.createRemote(ctx, set, scores); err == nil {
			return created, nil
		} else {
			r.log.Warn("Remote test set create failed, creating locally", "error", err)
		}
	}
	return r.createLocal(set, scores), nil
}

// createRemote mirrors into the local store only after every step succeeds,
// so a mid-sequence failure leaves the local cache untouched for the
// fallback path.
func (r *testSetRepo) createRemote(ctx context.Context, set types.TestSet, scores []types.TestScore) (types.TestSet, error) {
	var zero types.TestSet
	setRow := testSetMapper.ToRow(r.sets.prepareCreate(patchOf(set)))
	delete(setRow, "id")
	canonical, err := r.deps.Remote.Insert(ctx, "test_set", setRow)
	if err != nil {
		return zero, err
	}
	parent := testSetMapper.FromRow(canonical)

	created := make([]types.TestScore, 0, len(scores))
	for _, s := range scores {
		patch := r.scores.prepareCreate(patchOf(s))
		patch["testSetId"] = parent.ID
		scoreRow := testScoreMapper.ToRow(patch)
		delete(scoreRow, "id")
		stored, err := r.deps.Remote.Insert(ctx, "test_score", scoreRow)
		if err != nil {
			return zero, err
		}
		created = append(created, testScoreMapper.FromRow(stored))
	}

	r.sets.Mirror(parent)
	r.replaceLocalScores(parent.ID, created)
	parent.Scores = created
	return parent, nil
}

func (r *testSetRepo) createLocal(set types.TestSet, scores []types.TestScore) types.TestSet {
	parent := r.sets.CreateLocal(patchOf(set))
	parent.Scores = r.replaceLocalScores(parent.ID, scores)
	return parent
}

func (r *testSetRepo) UpdateTestSet(ctx context.Context, id string, patch map[string]any, scores []types.TestScore) (*types.TestSet, error) {
	patch = clonePatch(patch)
	delete(patch, "id")
	patch["updatedAt"] = r.sets.stamp()

	if r.sets.remoteCapable(ctx, id) {
		if updated, err := r.updateRemote(ctx, id, patch, scores); err == nil {
			return updated, nil
		} else {
			r.log.Warn("Remote test set update failed, updating locally", "id", id, "error", err)
		}
	}

	updated := r.sets.UpdateLocal(id, patch)
	if updated == nil {
		return nil, nil
	}
	updated.Scores = r.replaceLocalScores(id, scores)
	return updated, nil
}

// updateRemote performs the delete-then-insert score replacement; there is
// no row-level diffing.
func (r *testSetRepo) updateRemote(ctx context.Context, id string, patch map[string]any, scores []types.TestScore) (*types.TestSet, error) {
	canonical, err := r.deps.Remote.Update(ctx, "test_set", id, testSetMapper.ToRow(patch))
	if err != nil {
		return nil, err
	}
	parent := testSetMapper.FromRow(canonical)

	if _, err := r.deps.Remote.Delete(ctx, "test_score", []remote.Cond{remote.Eq("test_set_id", id)}); err != nil {
		return nil, err
	}
	created := make([]types.TestScore, 0, len(scores))
	for _, s := range scores {
		scorePatch := r.scores.prepareCreate(patchOf(s))
		scorePatch["testSetId"] = id
		scoreRow := testScoreMapper.ToRow(scorePatch)
		delete(scoreRow, "id")
		stored, err := r.deps.Remote.Insert(ctx, "test_score", scoreRow)
		if err != nil {
			return nil, err
		}
		created = append(created, testScoreMapper.FromRow(stored))
	}

	r.sets.Mirror(parent)
	r.replaceLocalScores(id, created)
	parent.Scores = created
	return &parent, nil
}

// DeleteTestSet relies on the remote cascade for child scores but must
// delete the local score rows by hand; the local store has no referential
// integrity.
func (r *testSetRepo) DeleteTestSet(ctx context.Context, id string) (bool, error) {
	existed, err := r.sets.Delete(ctx, id)
	r.replaceLocalScores(id, nil)
	return existed, err
}

// replaceLocalScores overwrites the local score rows of one set in a single
// read-modify-write, assigning ids and timestamps to rows that lack them.
func (r *testSetRepo) replaceLocalScores(setID string, scores []types.TestScore) []types.TestScore {
	items := r.scores.LocalAll()
	kept := items[:0]
	for _, s := range items {
		if s.TestSetID != setID {
			kept = append(kept, s)
		}
	}
	out := make([]types.TestScore, 0, len(scores))
	for _, s := range scores {
		if s.ID == "" {
			s.ID = ident.NewID()
		}
		if s.CreatedAt == "" {
			s.CreatedAt = r.scores.stamp()
		}
		s.TestSetID = setID
		kept = append(kept, s)
		out = append(out, s)
	}
	r.scores.WriteLocalAll(kept)
	return out
}
