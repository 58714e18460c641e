package services

import "testing"

func TestRankSourcesProvenanceBeforeScore(t *testing.T) {
	docs := []SourceDoc{
		{ID: "news", SourceType: "mainstream", Score: 0.99},
		{ID: "blog", SourceType: "unknown", Score: 0.98},
		{ID: "filing", SourceType: "primary", Score: 0.80},
		{ID: "archive", SourceType: "curated", Score: 0.90},
		{ID: "memo", SourceType: "primary", Score: 0.95},
	}

	RankSources(docs)

	wantOrder := []string{"memo", "filing", "archive", "news", "blog"}
	for i, want := range wantOrder {
		if docs[i].ID != want {
			t.Fatalf("position %d = %s, want %s (full: %+v)", i, docs[i].ID, want, docs)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	if got := cosineSimilarity(a, []float32{1, 0, 0}); got < 0.999999 {
		t.Fatalf("identical vectors: %v", got)
	}
	if got := cosineSimilarity(a, []float32{0, 1, 0}); got != 0 {
		t.Fatalf("orthogonal vectors: %v", got)
	}
	if got := cosineSimilarity(a, []float32{1, 0}); got != 0 {
		t.Fatalf("length mismatch must be 0: %v", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Fatalf("empty vectors must be 0: %v", got)
	}
}
