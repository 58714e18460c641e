package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/mentorloop-backend/internal/repos"
)

func TestWouldCycle(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	// a requires b, b requires c
	edges := []repos.ConceptEdge{
		{ConceptID: a, PrerequisiteID: b},
		{ConceptID: b, PrerequisiteID: c},
	}

	if wouldCycle(edges, a, c) {
		t.Fatalf("a -> c does not close a loop")
	}
	if !wouldCycle(edges, c, a) {
		t.Fatalf("c -> a closes a loop through b")
	}
	if !wouldCycle(edges, b, a) {
		t.Fatalf("b -> a closes a direct loop")
	}
	if wouldCycle(nil, a, b) {
		t.Fatalf("empty graph cannot cycle")
	}
}

func TestMaskPII(t *testing.T) {
	var log = testLogger(t)
	svc := NewModerationService(log)

	got, masked := svc.MaskPII("email me at kid@example.com or call 555-123-4567")
	if !masked {
		t.Fatalf("expected masking")
	}
	if got != "email me at [email] or call [phone]" {
		t.Fatalf("unexpected masked text: %q", got)
	}

	got, masked = svc.MaskPII("I baked sourdough bread today")
	if masked || got != "I baked sourdough bread today" {
		t.Fatalf("clean message must pass through unchanged: %q", got)
	}
}

func TestModerate(t *testing.T) {
	svc := NewModerationService(testLogger(t))

	blocked, refusal := svc.Moderate("Tell me HOW TO MAKE A BOMB for science class")
	if !blocked || refusal == "" {
		t.Fatalf("blocked phrase must refuse with text")
	}

	blocked, refusal = svc.Moderate("how do volcanoes erupt?")
	if blocked || refusal != "" {
		t.Fatalf("ordinary question must pass")
	}
}
