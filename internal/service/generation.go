package service

import (
	"context"
	"fmt"
	"log"

	"screen_ai_server/internal/domain"
	"screen_ai_server/internal/types"
)

// Store is the persistence surface the services need. *repository.Store
// satisfies it; tests substitute fakes.
type Store interface {
	CreateProject(ctx context.Context, userID, name string) (*domain.Project, error)
	ListProjects(ctx context.Context, userID string) ([]domain.Project, error)
	FindProjectByID(ctx context.Context, id string) (*domain.Project, error)
	DeleteProject(ctx context.Context, userID, projectID string) (bool, error)
	ListScreens(ctx context.Context, projectID string) ([]domain.Screen, error)
	CreateScreen(ctx context.Context, projectID, name, htmlContent, cssContent string, x, y, width, height float64) (*domain.Screen, error)
	UpdateScreenContent(ctx context.Context, screenID, projectID, name, htmlContent, cssContent string) (*domain.Screen, error)
	UpdateScreenPosition(ctx context.Context, userID, screenID string, x, y, width, height float64) (*domain.Screen, error)
	DeleteScreen(ctx context.Context, userID, screenID string) (bool, error)
	CreatePromptHistory(ctx context.Context, projectID, content, role string) error
	ListPromptHistory(ctx context.Context, projectID string, limit int) ([]domain.PromptHistory, error)
}

// ScreenGenerator produces screen content from a prompt. It is total:
// implementations must always return a usable record.
type ScreenGenerator interface {
	Generate(ctx context.Context, projectName, userPrompt string) types.ScreenData
}

// New screens land at the origin with phone dimensions; the canvas moves
// them afterwards.
const (
	initialScreenWidth  = 375
	initialScreenHeight = 812
)

// GenerationService handles one prompt-to-screen request end to end:
// ownership check, generation, idempotent screen upsert, history append.
type GenerationService struct {
	store Store
	gen   ScreenGenerator
}

func NewGenerationService(store Store, gen ScreenGenerator) *GenerationService {
	return &GenerationService{store: store, gen: gen}
}

// Generate runs one generation request for the authenticated caller.
// When screenID is set the existing screen is updated in place; otherwise a
// new screen is created under the project. The returned bool reports whether
// the content came from the fallback path.
func (s *GenerationService) Generate(ctx context.Context, callerUID, projectID, prompt string, screenID *string) (*domain.Screen, bool, error) {
	project, err := s.store.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, false, fmt.Errorf("load project: %w", err)
	}
	if project.UserID != callerUID {
		return nil, false, domain.ErrForbidden
	}

	data := s.gen.Generate(ctx, project.Name, prompt)

	var screen *domain.Screen
	if screenID != nil && *screenID != "" {
		screen, err = s.store.UpdateScreenContent(ctx, *screenID, project.ID, data.Name, data.HTMLContent, data.CSSContent)
	} else {
		screen, err = s.store.CreateScreen(ctx, project.ID, data.Name, data.HTMLContent, data.CSSContent,
			0, 0, initialScreenWidth, initialScreenHeight)
	}
	if err != nil {
		return nil, false, fmt.Errorf("persist screen: %w", err)
	}

	// History is best-effort: the screen write stands even if this fails.
	if err := s.store.CreatePromptHistory(ctx, project.ID, prompt, domain.RoleUser); err != nil {
		log.Printf("WARN: failed to record prompt history for project %s: %v", project.ID, err)
	}

	return screen, data.IsFallback, nil
}
