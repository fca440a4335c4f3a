package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"screen_ai_server/internal/domain"
)

const maxProjectNameLen = 120

// ErrInvalidName is returned for empty or oversized project names.
var ErrInvalidName = errors.New("invalid project name")

// ProjectService covers the plain CRUD around projects and screens.
type ProjectService struct {
	store Store
}

func NewProjectService(store Store) *ProjectService {
	return &ProjectService{store: store}
}

func (s *ProjectService) CreateProject(ctx context.Context, callerUID, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxProjectNameLen {
		return nil, ErrInvalidName
	}
	return s.store.CreateProject(ctx, callerUID, name)
}

func (s *ProjectService) ListProjects(ctx context.Context, callerUID string) ([]domain.Project, error) {
	return s.store.ListProjects(ctx, callerUID)
}

// GetProject loads a project the caller owns together with its screens.
func (s *ProjectService) GetProject(ctx context.Context, callerUID, projectID string) (*domain.Project, []domain.Screen, error) {
	project, err := s.ownedProject(ctx, callerUID, projectID)
	if err != nil {
		return nil, nil, err
	}
	screens, err := s.store.ListScreens(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("list screens: %w", err)
	}
	return project, screens, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, callerUID, projectID string) error {
	deleted, err := s.store.DeleteProject(ctx, callerUID, projectID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

// MoveScreen updates canvas position and size. Content is untouched.
func (s *ProjectService) MoveScreen(ctx context.Context, callerUID, screenID string, x, y, width, height float64) (*domain.Screen, error) {
	return s.store.UpdateScreenPosition(ctx, callerUID, screenID, x, y, width, height)
}

func (s *ProjectService) DeleteScreen(ctx context.Context, callerUID, screenID string) error {
	deleted, err := s.store.DeleteScreen(ctx, callerUID, screenID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

// History returns the most recent prompts for a project the caller owns.
func (s *ProjectService) History(ctx context.Context, callerUID, projectID string, limit int) ([]domain.PromptHistory, error) {
	if _, err := s.ownedProject(ctx, callerUID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListPromptHistory(ctx, projectID, limit)
}

func (s *ProjectService) ownedProject(ctx context.Context, callerUID, projectID string) (*domain.Project, error) {
	project, err := s.store.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project.UserID != callerUID {
		return nil, domain.ErrForbidden
	}
	return project, nil
}
