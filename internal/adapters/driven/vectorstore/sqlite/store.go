// Package sqlite provides a local vector store backed by SQLite with
// brute-force cosine similarity. Suitable for single-machine corpora where
// a hosted index is overkill.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultDimensions matches the standard embedding size.
const DefaultDimensions = 1536

const schema = `
CREATE TABLE IF NOT EXISTS vectors (
	id            TEXT PRIMARY KEY,
	file_id       TEXT NOT NULL,
	filename      TEXT NOT NULL,
	text          TEXT NOT NULL,
	chunk_index   INTEGER NOT NULL,
	char_count    INTEGER NOT NULL,
	page          INTEGER NOT NULL DEFAULT 0,
	section_title TEXT NOT NULL DEFAULT '',
	clause_tags   TEXT NOT NULL DEFAULT '[]',
	embedding     BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vectors_file_id ON vectors(file_id);
`

// Store is a SQLite-backed vector store. Embeddings are stored as
// little-endian float32 blobs.
type Store struct {
	db         *sql.DB
	path       string
	dimensions int
}

// NewStore creates a SQLite vector store at the given path. An empty path
// defaults to ~/.lexirag/data/vectors.db. Zero dimensions selects the
// default.
func NewStore(path string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".lexirag", "data", "vectors.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path, dimensions: dimensions}, nil
}

// Upsert inserts or updates vectors.
func (s *Store) Upsert(ctx context.Context, vectors []driven.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	for _, v := range vectors {
		if len(v.Values) != s.dimensions {
			return fmt.Errorf("%w: vector %s has %d values, store expects %d",
				domain.ErrDimensionMismatch, v.ID, len(v.Values), s.dimensions)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (id, file_id, filename, text, chunk_index, char_count, page, section_title, clause_tags, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_id = excluded.file_id,
			filename = excluded.filename,
			text = excluded.text,
			chunk_index = excluded.chunk_index,
			char_count = excluded.char_count,
			page = excluded.page,
			section_title = excluded.section_title,
			clause_tags = excluded.clause_tags,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, v := range vectors {
		tags, err := json.Marshal(v.Metadata.ClauseTags)
		if err != nil {
			return fmt.Errorf("marshal clause tags: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			v.ID,
			v.Metadata.FileID,
			v.Metadata.Filename,
			v.Metadata.Text,
			v.Metadata.ChunkIndex,
			v.Metadata.CharCount,
			v.Metadata.Page,
			v.Metadata.SectionTitle,
			string(tags),
			float32SliceToBytes(v.Values),
		); err != nil {
			return fmt.Errorf("upsert vector %s: %w", v.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Query scans the candidate rows and ranks them by cosine similarity.
func (s *Store) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	filter *driven.VectorFilter,
) ([]driven.VectorMatch, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: query vector has %d values, store expects %d",
			domain.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	query := `SELECT id, file_id, filename, text, chunk_index, char_count, page, section_title, clause_tags, embedding FROM vectors`
	var args []any
	if filter != nil && len(filter.FileIDs) > 0 {
		placeholders := strings.Repeat("?,", len(filter.FileIDs))
		query += fmt.Sprintf(" WHERE file_id IN (%s)", placeholders[:len(placeholders)-1])
		for _, id := range filter.FileIDs {
			args = append(args, id)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	defer rows.Close()

	var matches []driven.VectorMatch
	for rows.Next() {
		var (
			id, tagsJSON string
			meta         driven.VectorMetadata
			blob         []byte
		)
		if err := rows.Scan(&id, &meta.FileID, &meta.Filename, &meta.Text,
			&meta.ChunkIndex, &meta.CharCount, &meta.Page, &meta.SectionTitle,
			&tagsJSON, &blob); err != nil {
			return nil, fmt.Errorf("scan vector: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &meta.ClauseTags); err != nil {
			return nil, fmt.Errorf("unmarshal clause tags for %s: %w", id, err)
		}
		matches = append(matches, driven.VectorMatch{
			ID:       id,
			Score:    cosineSimilarity(vector, bytesToFloat32Slice(blob)),
			Metadata: meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vectors: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes vectors by ID. Unknown IDs are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM vectors WHERE id = ?")
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("delete vector %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// Stats returns index statistics. File IDs stand in for namespaces.
func (s *Store) Stats(ctx context.Context) (*domain.IndexStats, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT file_id, COUNT(*) FROM vectors GROUP BY file_id")
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.IndexStats{Namespaces: make(map[string]int)}
	for rows.Next() {
		var fileID string
		var count int
		if err := rows.Scan(&fileID, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.Namespaces[fileID] = count
		stats.TotalVectors += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

// Dimensions returns the configured vector dimension.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
