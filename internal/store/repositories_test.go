package store

import (
	"errors"
	"testing"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

func TestCreateRepository_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	repo, err := s.CreateRepository("acme", "delivery tracker", []string{"ana"}, map[string]any{"lang": "go"})
	if err != nil {
		t.Fatalf("CreateRepository failed: %v", err)
	}

	got, err := s.GetRepository(repo.RepoID)
	if err != nil {
		t.Fatalf("GetRepository failed: %v", err)
	}
	if got.Name != "acme" || got.Description != "delivery tracker" {
		t.Errorf("unexpected repository: %+v", got)
	}
	if len(got.Team) != 1 || got.Team[0] != "ana" {
		t.Errorf("team not preserved: %v", got.Team)
	}
	if got.Metadata["lang"] != "go" {
		t.Errorf("metadata not preserved: %v", got.Metadata)
	}
	if got.OverallProgress != 0 {
		t.Errorf("expected zero progress, got %d", got.OverallProgress)
	}
}

func TestGetRepositoryByName(t *testing.T) {
	s := newTestStore(t)
	seedRepo(t, s)

	got, err := s.GetRepositoryByName("acme")
	if err != nil {
		t.Fatalf("GetRepositoryByName failed: %v", err)
	}
	if got.Name != "acme" {
		t.Errorf("expected acme, got %q", got.Name)
	}

	if _, err := s.GetRepositoryByName("nope"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestFirstRepository_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.FirstRepository(); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected NotFound on empty store, got %v", err)
	}
}

func TestUpdateRepository(t *testing.T) {
	s := newTestStore(t)
	repo := seedRepo(t, s)

	err := s.UpdateRepository(repo.RepoID, "new description", []string{"ana", "bo", "cy"}, nil)
	if err != nil {
		t.Fatalf("UpdateRepository failed: %v", err)
	}

	got, err := s.GetRepository(repo.RepoID)
	if err != nil {
		t.Fatalf("GetRepository failed: %v", err)
	}
	if got.Description != "new description" {
		t.Errorf("description not updated: %q", got.Description)
	}
	if len(got.Team) != 3 {
		t.Errorf("team not updated: %v", got.Team)
	}
}

func TestCreateRepository_LogsActivity(t *testing.T) {
	s := newTestStore(t)
	repo := seedRepo(t, s)

	entries, err := s.ListActivity(repo.RepoID, 10)
	if err != nil {
		t.Fatalf("ListActivity failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one activity entry")
	}
	if entries[0].EntityType != "repository" || entries[0].Action != "created" {
		t.Errorf("unexpected activity entry: %+v", entries[0])
	}
}
