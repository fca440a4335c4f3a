package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"screen_ai_server/internal/domain"
)

// Store provides Postgres persistence for projects, screens and prompt
// history.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const screenColumns = `id, project_id, name, html_content, css_content, x, y, width, height, created_at, updated_at`

func scanScreen(row *sql.Row) (*domain.Screen, error) {
	var s domain.Screen
	err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.HTMLContent, &s.CSSContent,
		&s.X, &s.Y, &s.Width, &s.Height, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// isForeignKeyViolation reports a 23503 from Postgres, which here means the
// owning project disappeared between the ownership check and the write.
func isForeignKeyViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// CreateProject inserts a new project for the given user.
func (s *Store) CreateProject(ctx context.Context, userID, name string) (*domain.Project, error) {
	const q = `
INSERT INTO projects (id, user_id, name)
VALUES ($1, $2, $3)
RETURNING id, user_id, name, created_at, updated_at;
`
	var p domain.Project
	err := s.db.QueryRowContext(ctx, q, uuid.NewString(), userID, name).
		Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all projects for the given user, newest first.
func (s *Store) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	const q = `
SELECT id, user_id, name, created_at, updated_at
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC;
`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindProjectByID loads a project regardless of owner; ownership is the
// service layer's call.
func (s *Store) FindProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	const q = `
SELECT id, user_id, name, created_at, updated_at
FROM projects
WHERE id = $1;
`
	var p domain.Project
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes a project the user owns. Screens and prompt history
// go with it via ON DELETE CASCADE.
func (s *Store) DeleteProject(ctx context.Context, userID, projectID string) (bool, error) {
	const q = `
DELETE FROM projects
WHERE id = $1 AND user_id = $2;
`
	result, err := s.db.ExecContext(ctx, q, projectID, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListScreens returns all screens of a project, oldest first.
func (s *Store) ListScreens(ctx context.Context, projectID string) ([]domain.Screen, error) {
	const q = `
SELECT ` + screenColumns + `
FROM screens
WHERE project_id = $1
ORDER BY created_at ASC;
`
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Screen, 0, 8)
	for rows.Next() {
		var sc domain.Screen
		if err := rows.Scan(&sc.ID, &sc.ProjectID, &sc.Name, &sc.HTMLContent, &sc.CSSContent,
			&sc.X, &sc.Y, &sc.Width, &sc.Height, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateScreen inserts a new screen under the project.
func (s *Store) CreateScreen(ctx context.Context, projectID, name, htmlContent, cssContent string, x, y, width, height float64) (*domain.Screen, error) {
	const q = `
INSERT INTO screens (id, project_id, name, html_content, css_content, x, y, width, height)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + screenColumns + `;
`
	row := s.db.QueryRowContext(ctx, q, uuid.NewString(), projectID, name, htmlContent, cssContent, x, y, width, height)
	screen, err := scanScreen(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return screen, nil
}

// UpdateScreenContent rewrites a screen's generated fields in place.
// Position and size are untouched.
func (s *Store) UpdateScreenContent(ctx context.Context, screenID, projectID, name, htmlContent, cssContent string) (*domain.Screen, error) {
	const q = `
UPDATE screens
SET name = $3, html_content = $4, css_content = $5, updated_at = now()
WHERE id = $1 AND project_id = $2
RETURNING ` + screenColumns + `;
`
	row := s.db.QueryRowContext(ctx, q, screenID, projectID, name, htmlContent, cssContent)
	return scanScreen(row)
}

// UpdateScreenPosition moves or resizes a screen on the canvas. The join to
// projects keeps users out of each other's screens.
func (s *Store) UpdateScreenPosition(ctx context.Context, userID, screenID string, x, y, width, height float64) (*domain.Screen, error) {
	const q = `
UPDATE screens s
SET x = $3, y = $4, width = $5, height = $6, updated_at = now()
FROM projects p
WHERE s.id = $2 AND s.project_id = p.id AND p.user_id = $1
RETURNING s.id, s.project_id, s.name, s.html_content, s.css_content, s.x, s.y, s.width, s.height, s.created_at, s.updated_at;
`
	row := s.db.QueryRowContext(ctx, q, userID, screenID, x, y, width, height)
	return scanScreen(row)
}

// DeleteScreen removes a screen the user owns.
func (s *Store) DeleteScreen(ctx context.Context, userID, screenID string) (bool, error) {
	const q = `
DELETE FROM screens s
USING projects p
WHERE s.id = $2 AND s.project_id = p.id AND p.user_id = $1;
`
	result, err := s.db.ExecContext(ctx, q, userID, screenID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreatePromptHistory appends one history row for a project.
func (s *Store) CreatePromptHistory(ctx context.Context, projectID, content, role string) error {
	const q = `
INSERT INTO prompt_history (id, project_id, content, role)
VALUES ($1, $2, $3, $4);
`
	_, err := s.db.ExecContext(ctx, q, uuid.NewString(), projectID, content, role)
	if err != nil && isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

// ListPromptHistory returns the most recent prompts for a project.
func (s *Store) ListPromptHistory(ctx context.Context, projectID string, limit int) ([]domain.PromptHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, project_id, content, role, created_at
FROM prompt_history
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := s.db.QueryContext(ctx, q, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PromptHistory, 0, limit)
	for rows.Next() {
		var h domain.PromptHistory
		if err := rows.Scan(&h.ID, &h.ProjectID, &h.Content, &h.Role, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
