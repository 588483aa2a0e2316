// Package pinecone provides a vector store adapter using the Pinecone
// serverless REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
	"github.com/custodia-labs/lexirag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultDimensions = 1536
	DefaultTimeout    = 30 * time.Second

	// upsertBatchSize is the maximum number of vectors per upsert call.
	upsertBatchSize = 100
)

// Config holds configuration for the Pinecone vector store.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// IndexHost is the index endpoint host, e.g.
	// "https://my-index-abc123.svc.us-east-1-aws.pinecone.io" (required).
	IndexHost string

	// Namespace scopes all operations. Empty selects the default namespace.
	Namespace string

	// Dimensions is the index vector dimension (default: 1536).
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store is a Pinecone-backed vector store.
type Store struct {
	client     *http.Client
	host       string
	apiKey     string
	namespace  string
	dimensions int
}

type wireVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []wireVector `json:"vectors"`
	Namespace string       `json:"namespace,omitempty"`
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Filter          map[string]any `json:"filter,omitempty"`
	Namespace       string         `json:"namespace,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace,omitempty"`
}

type statsResponse struct {
	TotalVectorCount int `json:"totalVectorCount"`
	Namespaces       map[string]struct {
		VectorCount int `json:"vectorCount"`
	} `json:"namespaces"`
}

// NewStore creates a Pinecone vector store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: API key is required")
	}
	if cfg.IndexHost == "" {
		return nil, fmt.Errorf("pinecone: index host is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		host:       cfg.IndexHost,
		apiKey:     cfg.APIKey,
		namespace:  cfg.Namespace,
		dimensions: cfg.Dimensions,
	}, nil
}

// Upsert inserts or updates vectors in batches of 100.
func (s *Store) Upsert(ctx context.Context, vectors []driven.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	for _, v := range vectors {
		if len(v.Values) != s.dimensions {
			return fmt.Errorf("%w: vector %s has %d values, index expects %d",
				domain.ErrDimensionMismatch, v.ID, len(v.Values), s.dimensions)
		}
	}

	for start := 0; start < len(vectors); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(vectors) {
			end = len(vectors)
		}

		wire := make([]wireVector, 0, end-start)
		for _, v := range vectors[start:end] {
			wire = append(wire, wireVector{
				ID:       v.ID,
				Values:   v.Values,
				Metadata: metadataToMap(v.Metadata),
			})
		}
		if err := s.post(ctx, "/vectors/upsert", upsertRequest{
			Vectors:   wire,
			Namespace: s.namespace,
		}, nil); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
		logger.Debug("Upserted vectors %d-%d", start, end)
	}
	return nil
}

// Query returns the topK nearest vectors. A single-ID filter maps to an
// equality match, multiple IDs to an $in match.
func (s *Store) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	filter *driven.VectorFilter,
) ([]driven.VectorMatch, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: query vector has %d values, index expects %d",
			domain.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       s.namespace,
		IncludeMetadata: true,
	}
	if filter != nil && len(filter.FileIDs) > 0 {
		if len(filter.FileIDs) == 1 {
			req.Filter = map[string]any{"file_id": map[string]any{"$eq": filter.FileIDs[0]}}
		} else {
			req.Filter = map[string]any{"file_id": map[string]any{"$in": filter.FileIDs}}
		}
	}

	var resp queryResponse
	if err := s.post(ctx, "/query", req, &resp); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	matches := make([]driven.VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, driven.VectorMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: metadataFromMap(m.Metadata),
		})
	}
	return matches, nil
}

// Delete removes vectors by ID. Unknown IDs are ignored by the API.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.post(ctx, "/vectors/delete", deleteRequest{
		IDs:       ids,
		Namespace: s.namespace,
	}, nil); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Stats returns index statistics.
func (s *Store) Stats(ctx context.Context) (*domain.IndexStats, error) {
	var resp statsResponse
	if err := s.post(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	namespaces := make(map[string]int, len(resp.Namespaces))
	for name, ns := range resp.Namespaces {
		namespaces[name] = ns.VectorCount
	}
	return &domain.IndexStats{
		TotalVectors: resp.TotalVectorCount,
		Namespaces:   namespaces,
	}, nil
}

// Dimensions returns the configured vector dimension.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) post(ctx context.Context, path string, payload any, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.host+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone error (status %d): %s", resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// metadataToMap flattens typed metadata into the Pinecone wire format.
// Clause tags are stored as a string list, Pinecone's only list type.
func metadataToMap(m driven.VectorMetadata) map[string]any {
	out := map[string]any{
		"file_id":     m.FileID,
		"filename":    m.Filename,
		"text":        m.Text,
		"chunk_index": m.ChunkIndex,
		"char_count":  m.CharCount,
	}
	if m.Page > 0 {
		out["page"] = m.Page
	}
	if m.SectionTitle != "" {
		out["section_title"] = m.SectionTitle
	}
	if len(m.ClauseTags) > 0 {
		out["clause_tags"] = m.ClauseTags
	}
	return out
}

func metadataFromMap(m map[string]any) driven.VectorMetadata {
	out := driven.VectorMetadata{
		FileID:       asString(m["file_id"]),
		Filename:     asString(m["filename"]),
		Text:         asString(m["text"]),
		ChunkIndex:   asInt(m["chunk_index"]),
		CharCount:    asInt(m["char_count"]),
		Page:         asInt(m["page"]),
		SectionTitle: asString(m["section_title"]),
	}
	if tags, ok := m["clause_tags"].([]any); ok {
		for _, t := range tags {
			if tag, ok := t.(string); ok {
				out.ClauseTags = append(out.ClauseTags, tag)
			}
		}
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt handles JSON numbers, which decode as float64.
func asInt(v any) int {
	f, _ := v.(float64)
	return int(f)
}
