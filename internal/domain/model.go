package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an entity does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is authenticated but does
	// not own the entity.
	ErrForbidden = errors.New("forbidden")
)

// RoleUser tags prompt history rows written by the generation flow.
const RoleUser = "user"

// Project is the aggregate root. It owns screens and prompt history;
// both are removed with it (ON DELETE CASCADE in the schema).
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Screen is one mobile mockup on the canvas. Position and size belong to
// the canvas UI; the generation flow only ever touches name and content.
type Screen struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Name        string    `json:"name"`
	HTMLContent string    `json:"htmlContent"`
	CSSContent  string    `json:"cssContent"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PromptHistory is an append-only log of the prompts sent for a project.
type PromptHistory struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
