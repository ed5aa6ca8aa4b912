package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/cadence/pkg/types"
)

const docCols = `doc_id, repo_id, title, doc_type, content, created_at, updated_at`

// AddDocumentation attaches a document to a repository.
func (s *Store) AddDocumentation(repoID, title, docType, content string) (*types.Documentation, error) {
	if title == "" {
		return nil, types.Validationf("documentation title must not be empty")
	}
	if docType == "" {
		docType = "note"
	}

	var doc *types.Documentation
	err := s.RunInTx(func(tx *Tx) error {
		if _, err := tx.GetRepository(repoID); err != nil {
			return err
		}
		now := time.Now().UTC()
		doc = &types.Documentation{
			DocID:     newID(),
			RepoID:    repoID,
			Title:     title,
			DocType:   docType,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := tx.tx.Exec(
			`INSERT INTO documentation (doc_id, repo_id, title, doc_type, content, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			doc.DocID, doc.RepoID, doc.Title, doc.DocType, doc.Content, fmtTime(now), fmtTime(now),
		)
		if err != nil {
			return types.Storagef("insert documentation: %v", err)
		}
		return tx.LogActivity(repoID, "documentation", doc.DocID, "created", doc.Title)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocumentation returns one document by id.
func (s *Store) GetDocumentation(docID string) (*types.Documentation, error) {
	row := s.db.QueryRow(`SELECT `+docCols+` FROM documentation WHERE doc_id = ?`, docID)
	doc, err := hydrateDoc(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NotFoundf("documentation %s", docID)
		}
		return nil, err
	}
	return doc, nil
}

// ListDocumentation returns a repository's documents, newest first.
func (s *Store) ListDocumentation(repoID string) ([]types.Documentation, error) {
	rows, err := s.db.Query(
		`SELECT `+docCols+` FROM documentation WHERE repo_id = ? ORDER BY created_at DESC`,
		repoID,
	)
	if err != nil {
		return nil, types.Storagef("query documentation: %v", err)
	}
	defer rows.Close()

	var docs []types.Documentation
	for rows.Next() {
		doc, err := hydrateDoc(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storagef("iterate documentation: %v", err)
	}
	return docs, nil
}

func hydrateDoc(row scanner) (*types.Documentation, error) {
	var d types.Documentation
	var createdAt, updatedAt string
	if err := row.Scan(&d.DocID, &d.RepoID, &d.Title, &d.DocType, &d.Content, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.Storagef("scan documentation: %v", err)
	}
	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, types.Storagef("parse documentation created_at: %v", err)
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, types.Storagef("parse documentation updated_at: %v", err)
	}
	return &d, nil
}
