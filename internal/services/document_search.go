package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/mentorloop-backend/internal/logger"
)

// SourceDoc is one retrievable source document with its provenance tier.
type SourceDoc struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	SourceType string  `json:"source_type"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// DocumentSearch retrieves source documents for investigation prompts,
// ranked primary sources first.
type DocumentSearch interface {
	Search(ctx context.Context, query string, topK int) ([]SourceDoc, error)
}

// Provenance tiers, best first. Unknown tiers sort last.
var sourceTypeRank = map[string]int{
	"primary":    0,
	"curated":    1,
	"secondary":  2,
	"mainstream": 3,
}

type pineconeDocumentSearch struct {
	log        *logger.Logger
	ai         AIClient
	apiKey     string
	apiVersion string
	indexHost  string
	namespace  string
	httpClient *http.Client
}

func NewPineconeDocumentSearch(baseLog *logger.Logger, ai AIClient) (DocumentSearch, error) {
	apiKey := strings.TrimSpace(os.Getenv("PINECONE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing PINECONE_API_KEY")
	}
	host := strings.TrimSpace(os.Getenv("PINECONE_INDEX_HOST"))
	if host == "" {
		return nil, fmt.Errorf("missing PINECONE_INDEX_HOST")
	}
	version := strings.TrimSpace(os.Getenv("PINECONE_API_VERSION"))
	if version == "" {
		version = "2025-10"
	}
	namespace := strings.TrimSpace(os.Getenv("PINECONE_NAMESPACE"))
	if namespace == "" {
		namespace = "sources"
	}

	return &pineconeDocumentSearch{
		log:        baseLog.With("service", "DocumentSearch"),
		ai:         ai,
		apiKey:     apiKey,
		apiVersion: version,
		indexHost:  host,
		namespace:  namespace,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type pineconeQueryRequest struct {
	Namespace       string         `json:"namespace,omitempty"`
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type pineconeQueryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata,omitempty"`
	} `json:"matches"`
}

func (s *pineconeDocumentSearch) query(ctx context.Context, req pineconeQueryRequest) (*pineconeQueryResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", "https://"+s.indexHost+"/query", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Api-Key", s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Pinecone-Api-Version", s.apiVersion)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pinecone http %d: %s", resp.StatusCode, string(raw))
	}

	var out pineconeQueryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pinecone decode error: %w; raw=%s", err, string(raw))
	}
	return &out, nil
}

func metaString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func (s *pineconeDocumentSearch) Search(ctx context.Context, query string, topK int) ([]SourceDoc, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query required")
	}
	if topK <= 0 {
		topK = 5
	}

	vecs, err := s.ai.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch so the provenance re-rank has material to promote.
	resp, err := s.query(ctx, pineconeQueryRequest{
		Namespace:       s.namespace,
		Vector:          vecs[0],
		TopK:            topK * 4,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]SourceDoc, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		docs = append(docs, SourceDoc{
			ID:         m.ID,
			Title:      metaString(m.Metadata, "title"),
			URL:        metaString(m.Metadata, "url"),
			SourceType: strings.ToLower(metaString(m.Metadata, "source_type")),
			Snippet:    metaString(m.Metadata, "snippet"),
			Score:      m.Score,
		})
	}

	RankSources(docs)
	if len(docs) > topK {
		docs = docs[:topK]
	}
	return docs, nil
}

// RankSources orders documents by provenance tier first, similarity second.
// The sort is stable so equally-ranked documents keep retrieval order.
func RankSources(docs []SourceDoc) {
	sort.SliceStable(docs, func(i, j int) bool {
		ri, iOK := sourceTypeRank[docs[i].SourceType]
		rj, jOK := sourceTypeRank[docs[j].SourceType]
		if !iOK {
			ri = len(sourceTypeRank)
		}
		if !jOK {
			rj = len(sourceTypeRank)
		}
		if ri != rj {
			return ri < rj
		}
		return docs[i].Score > docs[j].Score
	})
}
