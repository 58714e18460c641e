package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/repos"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

// ConceptService manages the concept graph. Prerequisite edges are validated
// so the graph stays acyclic; everything downstream (readiness, gap nudges)
// assumes it is.
type ConceptService interface {
	CreateConcept(ctx context.Context, name, subject, description string) (*types.Concept, error)
	GetConcept(ctx context.Context, id uuid.UUID) (*types.Concept, error)
	ListConcepts(ctx context.Context, subject string) ([]*types.Concept, error)
	AddPrerequisite(ctx context.Context, conceptID, prerequisiteID uuid.UUID) error
}

type conceptService struct {
	db          *gorm.DB
	log         *logger.Logger
	conceptRepo repos.ConceptRepo
}

func NewConceptService(db *gorm.DB, baseLog *logger.Logger, conceptRepo repos.ConceptRepo) ConceptService {
	return &conceptService{
		db:          db,
		log:         baseLog.With("service", "ConceptService"),
		conceptRepo: conceptRepo,
	}
}

func (s *conceptService) CreateConcept(ctx context.Context, name, subject, description string) (*types.Concept, error) {
	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)
	if name == "" || subject == "" {
		return nil, fmt.Errorf("name and subject required")
	}
	created, err := s.conceptRepo.Create(ctx, nil, []*types.Concept{{
		Name:        name,
		Subject:     subject,
		Description: strings.TrimSpace(description),
	}})
	if err != nil {
		return nil, fmt.Errorf("create concept: %w", err)
	}
	return created[0], nil
}

func (s *conceptService) GetConcept(ctx context.Context, id uuid.UUID) (*types.Concept, error) {
	return s.conceptRepo.GetByID(ctx, nil, id)
}

func (s *conceptService) ListConcepts(ctx context.Context, subject string) ([]*types.Concept, error) {
	return s.conceptRepo.ListAll(ctx, nil, strings.TrimSpace(subject))
}

func (s *conceptService) AddPrerequisite(ctx context.Context, conceptID, prerequisiteID uuid.UUID) error {
	if conceptID == uuid.Nil || prerequisiteID == uuid.Nil {
		return fmt.Errorf("conceptID and prerequisiteID required")
	}
	if conceptID == prerequisiteID {
		return fmt.Errorf("a concept cannot be its own prerequisite")
	}

	if c, err := s.conceptRepo.GetByID(ctx, nil, conceptID); err != nil || c == nil {
		return fmt.Errorf("concept %s not found", conceptID)
	}
	if p, err := s.conceptRepo.GetByID(ctx, nil, prerequisiteID); err != nil || p == nil {
		return fmt.Errorf("prerequisite %s not found", prerequisiteID)
	}

	edges, err := s.conceptRepo.ListEdges(ctx, nil)
	if err != nil {
		return fmt.Errorf("load edges: %w", err)
	}
	if wouldCycle(edges, conceptID, prerequisiteID) {
		return fmt.Errorf("prerequisite edge would create a cycle")
	}

	return s.conceptRepo.AddPrerequisite(ctx, nil, conceptID, prerequisiteID)
}

// wouldCycle reports whether adding concept -> prerequisite closes a loop,
// i.e. whether concept is already reachable from prerequisite via existing
// prerequisite edges.
func wouldCycle(edges []repos.ConceptEdge, conceptID, prerequisiteID uuid.UUID) bool {
	prereqsOf := map[uuid.UUID][]uuid.UUID{}
	for _, e := range edges {
		prereqsOf[e.ConceptID] = append(prereqsOf[e.ConceptID], e.PrerequisiteID)
	}

	seen := map[uuid.UUID]bool{}
	stack := []uuid.UUID{prerequisiteID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == conceptID {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, prereqsOf[cur]...)
	}
	return false
}
