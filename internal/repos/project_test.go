package repos

import (
	"context"
	"testing"
)

func TestProjectRepo_InitializeDefaultProjectsSeedsAllSubjects(t *testing.T) {
	repo := NewProjectRepo(newLocalDeps())
	if err := repo.InitializeDefaultProjects(context.Background(), "u1"); err != nil {
		t.Fatalf("InitializeDefaultProjects failed: %v", err)
	}
	projects := repo.GetByUserID(context.Background(), "u1")
	if len(projects) != len(DefaultSubjects) {
		t.Fatalf("expected %d projects, got %d", len(DefaultSubjects), len(projects))
	}
	names := map[string]bool{}
	for _, p := range projects {
		names[p.Name] = true
	}
	for _, want := range DefaultSubjects {
		if !names[want] {
			t.Fatalf("missing default subject %q", want)
		}
	}
}

func TestProjectRepo_InitializeDefaultProjectsIsIdempotent(t *testing.T) {
	repo := NewProjectRepo(newLocalDeps())
	for i := 0; i < 3; i++ {
		if err := repo.InitializeDefaultProjects(context.Background(), "u1"); err != nil {
			t.Fatalf("InitializeDefaultProjects failed: %v", err)
		}
	}
	projects := repo.GetByUserID(context.Background(), "u1")
	if len(projects) != len(DefaultSubjects) {
		t.Fatalf("expected repeated seeding to stay at %d projects, got %d", len(DefaultSubjects), len(projects))
	}
}

func TestProjectRepo_GetByUserIDPrunesDuplicatesKeepingEarliest(t *testing.T) {
	deps := newLocalDeps()
	repo := NewProjectRepo(deps)
	first, err := repo.CreateProject(context.Background(), "u1", "数学")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if _, err := repo.CreateProject(context.Background(), "u1", "数学"); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if _, err := repo.CreateProject(context.Background(), "u1", "英語"); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	projects := repo.GetByUserID(context.Background(), "u1")
	if len(projects) != 2 {
		t.Fatalf("expected duplicates pruned to 2 projects, got %+v", projects)
	}
	for _, p := range projects {
		if p.Name == "数学" && p.ID != first.ID {
			t.Fatalf("expected earliest-created duplicate to survive, got %+v", p)
		}
	}

	// The prune is persisted, not just filtered from the response.
	again := repo.GetByUserID(context.Background(), "u1")
	if len(again) != 2 {
		t.Fatalf("expected persisted prune, got %+v", again)
	}
}

func TestProjectRepo_DuplicatesOfOtherUsersUntouched(t *testing.T) {
	repo := NewProjectRepo(newLocalDeps())
	if _, err := repo.CreateProject(context.Background(), "u1", "数学"); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if _, err := repo.CreateProject(context.Background(), "u2", "数学"); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if got := repo.GetByUserID(context.Background(), "u1"); len(got) != 1 {
		t.Fatalf("expected cross-user same-name projects untouched, got %+v", got)
	}
	if got := repo.GetByUserID(context.Background(), "u2"); len(got) != 1 {
		t.Fatalf("expected u2 project to survive, got %+v", got)
	}
}
