package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"screen_ai_server/internal/auth"
	"screen_ai_server/internal/domain"
	"screen_ai_server/internal/service"
)

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	generation *service.GenerationService
	projects   *service.ProjectService
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(generation *service.GenerationService, projects *service.ProjectService) *APIHandler {
	return &APIHandler{
		generation: generation,
		projects:   projects,
	}
}

// --- Structs for API Requests/Responses ---

type GenerateScreenRequest struct {
	Prompt   string  `json:"prompt" binding:"required,min=1,max=4000"`
	ScreenID *string `json:"screenId" binding:"omitempty,uuid"`
}

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}

type MoveScreenRequest struct {
	X      *float64 `json:"x" binding:"required"`
	Y      *float64 `json:"y" binding:"required"`
	Width  *float64 `json:"width" binding:"required,gt=0"`
	Height *float64 `json:"height" binding:"required,gt=0"`
}

// --- API Handlers ---

// POST /projects/:id/generate
func (h *APIHandler) GenerateScreen(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
		return
	}
	projectID := c.Param("id")

	var req GenerateScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	screen, fallback, err := h.generation.Generate(c.Request.Context(), uid, projectID, req.Prompt, req.ScreenID)
	if err != nil {
		h.writeServiceError(c, err, "Project not found", "Failed to generate screen")
		return
	}

	resp := gin.H{"screen": screen}
	if fallback {
		// Lets the UI warn that the model output could not be used.
		resp["fallback"] = true
	}
	c.JSON(http.StatusOK, resp)
}

// POST /projects
func (h *APIHandler) CreateProject(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), uid, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrInvalidName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project name"})
			return
		}
		log.Printf("Error creating project for user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// GET /projects
func (h *APIHandler) ListProjects(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
		return
	}

	projects, err := h.projects.ListProjects(c.Request.Context(), uid)
	if err != nil {
		log.Printf("Error listing projects for user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GET /projects/:id
func (h *APIHandler) GetProject(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
		return
	}

	project, screens, err := h.projects.GetProject(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err, "Project not found", "Failed to load project")
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project, "screens": screens})
}

// DELETE /projects/:id
func (h *APIHandler) DeleteProject(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
		return
	}

	if err := h.projects.DeleteProject(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.writeServiceError(c, err, "Project not found", "Failed to delete project")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /projects/:id/history
func (h *APIHandler) ListPromptHistory(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history, err := h.projects.History(c.Request.Context(), uid, c.Param("id"), limit)
	if err != nil {
		h.writeServiceError(c, err, "Project not found", "Failed to load prompt history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// PATCH /screens/:id
func (h *APIHandler) MoveScreen(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
		return
	}

	var req MoveScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	screen, err := h.projects.MoveScreen(c.Request.Context(), uid, c.Param("id"), *req.X, *req.Y, *req.Width, *req.Height)
	if err != nil {
		h.writeServiceError(c, err, "Screen not found", "Failed to update screen")
		return
	}

	c.JSON(http.StatusOK, gin.H{"screen": screen})
}

// DELETE /screens/:id
func (h *APIHandler) DeleteScreen(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
		return
	}

	if err := h.projects.DeleteScreen(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.writeServiceError(c, err, "Screen not found", "Failed to delete screen")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// writeServiceError maps domain errors onto status codes. Anything
// unexpected becomes a generic 500 so internal detail never leaks.
func (h *APIHandler) writeServiceError(c *gin.Context, err error, notFound, generic string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": generic})
	}
}
