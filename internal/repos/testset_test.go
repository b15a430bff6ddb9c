package repos

import (
	"context"
	"testing"

	"github.com/tutordesk/tutordesk-backend/internal/types"
)

func sampleScores() []types.TestScore {
	return []types.TestScore{
		{Subject: "数学", Score: 82, MaxScore: 100},
		{Subject: "英語", Score: 74, MaxScore: 100},
	}
}

func TestTestSetRepo_CreateLocalStoresSetAndScores(t *testing.T) {
	repo := NewTestSetRepo(newLocalDeps())
	set, err := repo.CreateTestSet(context.Background(), types.TestSet{
		UserID: "u", Date: "2025-04-20", Name: "第1回模試",
	}, sampleScores())
	if err != nil {
		t.Fatalf("CreateTestSet failed: %v", err)
	}
	if set.ID == "" || len(set.Scores) != 2 {
		t.Fatalf("expected set with two scores, got %+v", set)
	}
	for _, s := range set.Scores {
		if s.TestSetID != set.ID || s.ID == "" {
			t.Fatalf("expected scores linked to parent, got %+v", s)
		}
	}

	got, ok := repo.GetByID(context.Background(), set.ID)
	if !ok || len(got.Scores) != 2 {
		t.Fatalf("expected readable set with scores, got ok=%v %+v", ok, got)
	}
}

func TestTestSetRepo_CreateRemoteWritesParentThenChildren(t *testing.T) {
	deps, rows, _ := newRemoteDeps(testOwner)
	repo := NewTestSetRepo(deps)
	set, err := repo.CreateTestSet(context.Background(), types.TestSet{
		UserID: testOwner, Date: "2025-04-20", Name: "模試",
	}, sampleScores())
	if err != nil {
		t.Fatalf("CreateTestSet failed: %v", err)
	}
	if len(rows.rowsIn("test_set")) != 1 || len(rows.rowsIn("test_score")) != 2 {
		t.Fatalf("expected remote parent and children")
	}
	for _, row := range rows.rowsIn("test_score") {
		if rowString(row, "test_set_id") != set.ID {
			t.Fatalf("expected child rows keyed to parent, got %v", row)
		}
	}
}

// A failure partway through the remote multi-row write abandons the remote
// attempt and performs the whole create locally; the local store never holds
// a half-written remote set.
func TestTestSetRepo_RemoteChildFailureFallsBackWholeOperation(t *testing.T) {
	deps, rows, _ := newRemoteDeps(testOwner)
	rows.failTables["test_score"] = true
	repo := NewTestSetRepo(deps)

	set, err := repo.CreateTestSet(context.Background(), types.TestSet{
		UserID: testOwner, Date: "2025-04-20", Name: "模試",
	}, sampleScores())
	if err != nil {
		t.Fatalf("expected fallback create, got %v", err)
	}
	if len(set.Scores) != 2 {
		t.Fatalf("expected local scores, got %+v", set.Scores)
	}

	sets := repo.GetByUserID(context.Background(), testOwner)
	for _, s := range sets {
		if s.ID != set.ID && len(s.Scores) > 0 {
			t.Fatalf("unexpected extra set %+v", s)
		}
	}
	got, ok := repo.GetByID(context.Background(), set.ID)
	if !ok || len(got.Scores) != 2 {
		t.Fatalf("expected complete local set, got ok=%v %+v", ok, got)
	}
}

func TestTestSetRepo_UpdateReplacesScoresWholesaleLocally(t *testing.T) {
	repo := NewTestSetRepo(newLocalDeps())
	set, err := repo.CreateTestSet(context.Background(), types.TestSet{
		UserID: "u", Date: "2025-04-20", Name: "模試",
	}, sampleScores())
	if err != nil {
		t.Fatalf("CreateTestSet failed: %v", err)
	}

	updated, err := repo.UpdateTestSet(context.Background(), set.ID, map[string]any{"memo": "再集計"},
		[]types.TestScore{{Subject: "国語", Score: 90, MaxScore: 100}})
	if err != nil {
		t.Fatalf("UpdateTestSet failed: %v", err)
	}
	if updated == nil || updated.Memo != "再集計" {
		t.Fatalf("expected patched set, got %+v", updated)
	}
	if len(updated.Scores) != 1 || updated.Scores[0].Subject != "国語" {
		t.Fatalf("expected wholesale score replacement, got %+v", updated.Scores)
	}

	got, _ := repo.GetByID(context.Background(), set.ID)
	if len(got.Scores) != 1 {
		t.Fatalf("expected old scores gone, got %+v", got.Scores)
	}
}

func TestTestSetRepo_UpdateRemoteDeletesThenInserts(t *testing.T) {
	deps, rows, _ := newRemoteDeps(testOwner)
	repo := NewTestSetRepo(deps)
	set, err := repo.CreateTestSet(context.Background(), types.TestSet{
		UserID: testOwner, Date: "2025-04-20", Name: "模試",
	}, sampleScores())
	if err != nil {
		t.Fatalf("CreateTestSet failed: %v", err)
	}

	if _, err := repo.UpdateTestSet(context.Background(), set.ID, map[string]any{"grade": "中3"},
		[]types.TestScore{{Subject: "理科", Score: 66, MaxScore: 100}}); err != nil {
		t.Fatalf("UpdateTestSet failed: %v", err)
	}

	scores := rows.rowsIn("test_score")
	if len(scores) != 1 || rowString(scores[0], "subject") != "理科" {
		t.Fatalf("expected remote delete-then-insert, got %v", scores)
	}
}

func TestTestSetRepo_UpdateMissingSetReturnsNil(t *testing.T) {
	repo := NewTestSetRepo(newLocalDeps())
	updated, err := repo.UpdateTestSet(context.Background(), "missing", map[string]any{"memo": "x"}, nil)
	if err != nil {
		t.Fatalf("UpdateTestSet failed: %v", err)
	}
	if updated != nil {
		t.Fatalf("expected nil for missing set, got %+v", updated)
	}
}

func TestTestSetRepo_DeleteRemovesLocalScores(t *testing.T) {
	repo := NewTestSetRepo(newLocalDeps())
	keep, err := repo.CreateTestSet(context.Background(), types.TestSet{UserID: "u", Date: "2025-04-01", Name: "a"}, sampleScores())
	if err != nil {
		t.Fatalf("CreateTestSet failed: %v", err)
	}
	doomed, err := repo.CreateTestSet(context.Background(), types.TestSet{UserID: "u", Date: "2025-04-02", Name: "b"}, sampleScores())
	if err != nil {
		t.Fatalf("CreateTestSet failed: %v", err)
	}

	existed, err := repo.DeleteTestSet(context.Background(), doomed.ID)
	if err != nil || !existed {
		t.Fatalf("expected delete to succeed, got %v %v", existed, err)
	}
	if _, ok := repo.GetByID(context.Background(), doomed.ID); ok {
		t.Fatalf("expected set gone")
	}
	got, ok := repo.GetByID(context.Background(), keep.ID)
	if !ok || len(got.Scores) != 2 {
		t.Fatalf("expected sibling set's scores untouched, got %+v", got)
	}
}
