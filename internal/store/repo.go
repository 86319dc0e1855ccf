package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/starford/taxon/internal/apperr"
	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/models"
)

var _ catalog.Store = (*DB)(nil)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func familyExists(ctx context.Context, q execer, familyID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM families WHERE id = ?`, familyID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: lookup family: %w", err)
	}
	return nil
}

// CreateFamily inserts a family with the given official tags.
func (db *DB) CreateFamily(ctx context.Context, familyID string, official []string) error {
	tx := catalog.NewTaxonomy(familyID, official)
	tagsJSON, _ := json.Marshal(tx.OfficialTags)

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO families (id, official_tags, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, familyID, string(tagsJSON), tx.Checksum(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: create family: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: create family: %w", err)
	}
	if n == 0 {
		return apperr.ErrAlreadyExists
	}
	return nil
}

// GetTaxonomy returns the official tag set of a family.
func (db *DB) GetTaxonomy(ctx context.Context, familyID string) (*catalog.Taxonomy, error) {
	var (
		tagsJSON  string
		updatedAt time.Time
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT official_tags, updated_at FROM families WHERE id = ?`, familyID,
	).Scan(&tagsJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get taxonomy: %w", err)
	}

	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("store: decode official tags: %w", err)
	}
	tx := catalog.NewTaxonomy(familyID, tags)
	tx.UpdatedAt = updatedAt
	return &tx, nil
}

// SetOfficialTags replaces the official tag set of a family.
func (db *DB) SetOfficialTags(ctx context.Context, familyID string, tags []string) error {
	tx := catalog.NewTaxonomy(familyID, tags)
	tagsJSON, _ := json.Marshal(tx.OfficialTags)

	res, err := db.conn.ExecContext(ctx, `
		UPDATE families SET official_tags = ?, checksum = ?, updated_at = ?
		WHERE id = ?
	`, string(tagsJSON), tx.Checksum(), time.Now().UTC(), familyID)
	if err != nil {
		return fmt.Errorf("store: set official tags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: set official tags: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// GetSuggestedCandidates returns positive-score tags that are not official,
// highest score first, ties in first-observed order.
func (db *DB) GetSuggestedCandidates(ctx context.Context, familyID string, limit int) ([]models.SuggestedTagCandidate, error) {
	tax, err := db.GetTaxonomy(ctx, familyID)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT tag, score FROM tag_scores
		WHERE family_id = ? AND score > 0
		ORDER BY score DESC, seq ASC
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("store: suggested candidates: %w", err)
	}
	defer rows.Close()

	out := []models.SuggestedTagCandidate{}
	for rows.Next() {
		var c models.SuggestedTagCandidate
		if err := rows.Scan(&c.Tag, &c.Count); err != nil {
			return nil, err
		}
		if tax.Has(c.Tag) {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, rows.Err()
}

// GetScores returns the score board of a family in first-observed order.
func (db *DB) GetScores(ctx context.Context, familyID string) ([]models.ScoreEntry, error) {
	if err := familyExists(ctx, db.conn, familyID); err != nil {
		return nil, err
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT tag, score, first_seen FROM tag_scores
		WHERE family_id = ?
		ORDER BY seq ASC
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("store: get scores: %w", err)
	}
	defer rows.Close()

	out := []models.ScoreEntry{}
	for rows.Next() {
		var e models.ScoreEntry
		if err := rows.Scan(&e.Tag, &e.Score, &e.FirstSeen); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateScores reads the board, applies fn and upserts its result inside
// one transaction. Transactions begin IMMEDIATE (see Open), so concurrent
// updates queue on the write lock instead of overwriting each other.
// Negative values are stored as zero.
func (db *DB) UpdateScores(ctx context.Context, familyID string, fn catalog.ScoreUpdate) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := familyExists(ctx, tx, familyID); err != nil {
		return err
	}

	current, err := readScores(ctx, tx, familyID)
	if err != nil {
		return err
	}
	scores := fn(current)
	if len(scores) == 0 {
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tag_scores (family_id, tag, score, first_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(family_id, tag) DO UPDATE SET score = excluded.score
	`)
	if err != nil {
		return fmt.Errorf("store: prepare score upsert: %w", err)
	}
	defer stmt.Close()

	// Sorted so that tags first seen in the same call get a stable order.
	tags := make([]string, 0, len(scores))
	for t := range scores {
		tags = append(tags, t)
	}
	slices.Sort(tags)

	now := time.Now().UTC()
	for _, t := range tags {
		if _, err := stmt.ExecContext(ctx, familyID, t, max(0, scores[t]), now); err != nil {
			return fmt.Errorf("store: upsert score: %w", err)
		}
	}
	return tx.Commit()
}

func readScores(ctx context.Context, tx *sql.Tx, familyID string) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT tag, score FROM tag_scores WHERE family_id = ?`, familyID)
	if err != nil {
		return nil, fmt.Errorf("store: read scores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			tag   string
			score int
		)
		if err := rows.Scan(&tag, &score); err != nil {
			return nil, fmt.Errorf("store: read scores: %w", err)
		}
		out[tag] = score
	}
	return out, rows.Err()
}

// ResetScores deletes the whole score board of a family.
func (db *DB) ResetScores(ctx context.Context, familyID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := familyExists(ctx, tx, familyID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tag_scores WHERE family_id = ?`, familyID); err != nil {
		return fmt.Errorf("store: reset scores: %w", err)
	}
	return tx.Commit()
}
