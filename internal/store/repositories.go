package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

const repoCols = `repo_id, name, description, team, metadata, overall_progress, created_at, updated_at`

// CreateRepository inserts a new repository row. The name must be
// unique; initialization idempotency is handled one level up by
// checking for an existing row first.
func (s *Store) CreateRepository(name, description string, team []string, metadata map[string]any) (*types.Repository, error) {
	now := time.Now().UTC()
	repo := &types.Repository{
		RepoID:      newID(),
		Name:        name,
		Description: description,
		Team:        team,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if repo.Team == nil {
		repo.Team = []string{}
	}
	if repo.Metadata == nil {
		repo.Metadata = map[string]any{}
	}

	err := s.RunInTx(func(tx *Tx) error {
		_, err := tx.tx.Exec(
			`INSERT INTO repositories (repo_id, name, description, team, metadata, overall_progress, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
			repo.RepoID, repo.Name, repo.Description,
			marshalList(repo.Team), marshalObject(repo.Metadata),
			fmtTime(now), fmtTime(now),
		)
		if err != nil {
			return types.Storagef("insert repository: %v", err)
		}
		return tx.LogActivity(repo.RepoID, "repository", repo.RepoID, "created", repo.Name)
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// GetRepository returns the repository with the given id.
func (s *Store) GetRepository(repoID string) (*types.Repository, error) {
	return getRepository(s.db, repoID)
}

// GetRepository returns the repository with the given id, inside the
// transaction.
func (t *Tx) GetRepository(repoID string) (*types.Repository, error) {
	return getRepository(t.tx, repoID)
}

func getRepository(q dbtx, repoID string) (*types.Repository, error) {
	row := q.QueryRow(`SELECT `+repoCols+` FROM repositories WHERE repo_id = ?`, repoID)
	repo, err := hydrateRepository(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("repository %s", repoID)
		}
		return nil, err
	}
	return repo, nil
}

// GetRepositoryByName returns the repository with the given name, or
// ErrNotFound.
func (s *Store) GetRepositoryByName(name string) (*types.Repository, error) {
	row := s.db.QueryRow(`SELECT `+repoCols+` FROM repositories WHERE name = ?`, name)
	repo, err := hydrateRepository(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("repository named %q", name)
		}
		return nil, err
	}
	return repo, nil
}

// FirstRepository returns the oldest repository row, or ErrNotFound
// when the store is empty. CLI flows that track a single codebase use
// this as the implicit repository.
func (s *Store) FirstRepository() (*types.Repository, error) {
	row := s.db.QueryRow(`SELECT ` + repoCols + ` FROM repositories ORDER BY created_at ASC LIMIT 1`)
	repo, err := hydrateRepository(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("no repository initialized")
		}
		return nil, err
	}
	return repo, nil
}

// ListRepositories returns all repositories ordered by creation time.
func (s *Store) ListRepositories() ([]types.Repository, error) {
	rows, err := s.db.Query(`SELECT ` + repoCols + ` FROM repositories ORDER BY created_at ASC`)
	if err != nil {
		return nil, types.Storagef("query repositories: %v", err)
	}
	defer rows.Close()

	var repos []types.Repository
	for rows.Next() {
		repo, err := hydrateRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, *repo)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate repositories: %v", err)
	}
	return repos, nil
}

// UpdateRepository replaces description, team, and metadata.
func (s *Store) UpdateRepository(repoID, description string, team []string, metadata map[string]any) error {
	return s.RunInTx(func(tx *Tx) error {
		res, err := tx.tx.Exec(
			`UPDATE repositories SET description = ?, team = ?, metadata = ?, updated_at = ? WHERE repo_id = ?`,
			description, marshalList(team), marshalObject(metadata), fmtTime(time.Now()), repoID,
		)
		if err != nil {
			return types.Storagef("update repository: %v", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return types.NotFoundf("repository %s", repoID)
		}
		return tx.LogActivity(repoID, "repository", repoID, "updated", "")
	})
}

// SetRepositoryProgress writes the rolled-up overall progress, inside
// the transaction that recomputed it.
func (t *Tx) SetRepositoryProgress(repoID string, progress int) error {
	res, err := t.tx.Exec(
		`UPDATE repositories SET overall_progress = ?, updated_at = ? WHERE repo_id = ?`,
		progress, fmtTime(time.Now()), repoID,
	)
	if err != nil {
		return types.Storagef("update repository progress: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NotFoundf("repository %s", repoID)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hydrateRepository(row scanner) (*types.Repository, error) {
	var r types.Repository
	var team, metadata, createdAt, updatedAt string
	if err := row.Scan(&r.RepoID, &r.Name, &r.Description, &team, &metadata, &r.OverallProgress, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.Storagef("scan repository: %v", err)
	}
	var err error
	if r.Team, err = unmarshalList(team); err != nil {
		return nil, err
	}
	if r.Metadata, err = unmarshalObject(metadata); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, types.Storagef("parse repository created_at: %v", err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, types.Storagef("parse repository updated_at: %v", err)
	}
	return &r, nil
}
