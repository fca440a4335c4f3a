package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen_ai_server/internal/auth"
	"screen_ai_server/internal/domain"
	"screen_ai_server/internal/ratelimit"
	"screen_ai_server/internal/service"
	"screen_ai_server/internal/types"
)

// memStore is a minimal in-memory service.Store for handler tests.
type memStore struct {
	projects map[string]*domain.Project
	screens  map[string]*domain.Screen
	history  []domain.PromptHistory
}

func newMemStore() *memStore {
	return &memStore{projects: map[string]*domain.Project{}, screens: map[string]*domain.Screen{}}
}

func (m *memStore) CreateProject(_ context.Context, userID, name string) (*domain.Project, error) {
	p := &domain.Project{ID: "p-new", UserID: userID, Name: name, CreatedAt: time.Now()}
	m.projects[p.ID] = p
	return p, nil
}

func (m *memStore) ListProjects(_ context.Context, userID string) ([]domain.Project, error) {
	out := []domain.Project{}
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) FindProjectByID(_ context.Context, id string) (*domain.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) DeleteProject(_ context.Context, userID, projectID string) (bool, error) {
	if p, ok := m.projects[projectID]; ok && p.UserID == userID {
		delete(m.projects, projectID)
		return true, nil
	}
	return false, nil
}

func (m *memStore) ListScreens(_ context.Context, projectID string) ([]domain.Screen, error) {
	out := []domain.Screen{}
	for _, s := range m.screens {
		if s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) CreateScreen(_ context.Context, projectID, name, htmlContent, cssContent string, x, y, width, height float64) (*domain.Screen, error) {
	s := &domain.Screen{ID: "s-new", ProjectID: projectID, Name: name, HTMLContent: htmlContent, CSSContent: cssContent, X: x, Y: y, Width: width, Height: height}
	m.screens[s.ID] = s
	return s, nil
}

func (m *memStore) UpdateScreenContent(_ context.Context, screenID, projectID, name, htmlContent, cssContent string) (*domain.Screen, error) {
	s, ok := m.screens[screenID]
	if !ok || s.ProjectID != projectID {
		return nil, domain.ErrNotFound
	}
	s.Name, s.HTMLContent, s.CSSContent = name, htmlContent, cssContent
	return s, nil
}

func (m *memStore) UpdateScreenPosition(_ context.Context, userID, screenID string, x, y, width, height float64) (*domain.Screen, error) {
	s, ok := m.screens[screenID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p, ok := m.projects[s.ProjectID]; !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	s.X, s.Y, s.Width, s.Height = x, y, width, height
	return s, nil
}

func (m *memStore) DeleteScreen(_ context.Context, userID, screenID string) (bool, error) {
	s, ok := m.screens[screenID]
	if !ok {
		return false, nil
	}
	if p, ok := m.projects[s.ProjectID]; !ok || p.UserID != userID {
		return false, nil
	}
	delete(m.screens, screenID)
	return true, nil
}

func (m *memStore) CreatePromptHistory(_ context.Context, projectID, content, role string) error {
	m.history = append(m.history, domain.PromptHistory{ProjectID: projectID, Content: content, Role: role})
	return nil
}

func (m *memStore) ListPromptHistory(_ context.Context, projectID string, _ int) ([]domain.PromptHistory, error) {
	out := []domain.PromptHistory{}
	for _, h := range m.history {
		if h.ProjectID == projectID {
			out = append(out, h)
		}
	}
	return out, nil
}

type stubGenerator struct{ data types.ScreenData }

func (g stubGenerator) Generate(context.Context, string, string) types.ScreenData { return g.data }

// newTestRouter wires real services over fakes, with the middleware replaced
// by one that injects the given UID.
func newTestRouter(store service.Store, gen service.ScreenGenerator, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAPIHandler(service.NewGenerationService(store, gen), service.NewProjectService(store))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid != "" {
			c.Set(auth.CtxUserID, uid)
		}
		c.Next()
	})
	r.POST("/projects", h.CreateProject)
	r.GET("/projects", h.ListProjects)
	r.GET("/projects/:id", h.GetProject)
	r.DELETE("/projects/:id", h.DeleteProject)
	r.GET("/projects/:id/history", h.ListPromptHistory)
	r.POST("/projects/:id/generate", h.GenerateScreen)
	r.PATCH("/screens/:id", h.MoveScreen)
	r.DELETE("/screens/:id", h.DeleteScreen)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func modelGen() stubGenerator {
	return stubGenerator{data: types.ScreenData{Name: "Login", HTMLContent: "<div>Login</div>"}}
}

func TestGenerateScreen_Unauthenticated(t *testing.T) {
	r := newTestRouter(newMemStore(), modelGen(), "")

	w := doJSON(t, r, http.MethodPost, "/projects/p1/generate", gin.H{"prompt": "a login screen"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateScreen_InvalidBody(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = &domain.Project{ID: "p1", UserID: "u1", Name: "App"}
	r := newTestRouter(store, modelGen(), "u1")

	w := doJSON(t, r, http.MethodPost, "/projects/p1/generate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "details")
}

func TestGenerateScreen_ProjectNotFound(t *testing.T) {
	r := newTestRouter(newMemStore(), modelGen(), "u1")

	w := doJSON(t, r, http.MethodPost, "/projects/nope/generate", gin.H{"prompt": "a login screen"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateScreen_ForeignProject(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = &domain.Project{ID: "p1", UserID: "owner", Name: "App"}
	r := newTestRouter(store, modelGen(), "intruder")

	w := doJSON(t, r, http.MethodPost, "/projects/p1/generate", gin.H{"prompt": "a login screen"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestGenerateScreen_Success(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = &domain.Project{ID: "p1", UserID: "u1", Name: "App"}
	r := newTestRouter(store, modelGen(), "u1")

	w := doJSON(t, r, http.MethodPost, "/projects/p1/generate", gin.H{"prompt": "a login screen"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Screen   domain.Screen `json:"screen"`
		Fallback *bool         `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Login", resp.Screen.Name)
	assert.Equal(t, "<div>Login</div>", resp.Screen.HTMLContent)
	assert.Nil(t, resp.Fallback, "fallback flag must be absent for model content")
	assert.Len(t, store.history, 1)
}

func TestGenerateScreen_FallbackFlag(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = &domain.Project{ID: "p1", UserID: "u1", Name: "App"}
	gen := stubGenerator{data: types.ScreenData{Name: "New Screen", HTMLContent: "<div/>", IsFallback: true}}
	r := newTestRouter(store, gen, "u1")

	w := doJSON(t, r, http.MethodPost, "/projects/p1/generate", gin.H{"prompt": "a login screen"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fallback":true`)
}

func TestGenerateScreen_UpdatesExistingScreen(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = &domain.Project{ID: "p1", UserID: "u1", Name: "App"}
	store.screens["11111111-2222-3333-4444-555555555555"] = &domain.Screen{
		ID: "11111111-2222-3333-4444-555555555555", ProjectID: "p1", Name: "old", HTMLContent: "<old/>",
	}
	r := newTestRouter(store, modelGen(), "u1")

	w := doJSON(t, r, http.MethodPost, "/projects/p1/generate", gin.H{
		"prompt":   "refresh it",
		"screenId": "11111111-2222-3333-4444-555555555555",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, store.screens, 1)
	assert.Equal(t, "<div>Login</div>", store.screens["11111111-2222-3333-4444-555555555555"].HTMLContent)
}

func TestProjectCRUD(t *testing.T) {
	store := newMemStore()
	r := newTestRouter(store, modelGen(), "u1")

	w := doJSON(t, r, http.MethodPost, "/projects", gin.H{"name": "My App"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "My App")

	w = doJSON(t, r, http.MethodDelete, "/projects/p-new", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/projects/p-new", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoveScreen(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = &domain.Project{ID: "p1", UserID: "u1", Name: "App"}
	store.screens["s1"] = &domain.Screen{ID: "s1", ProjectID: "p1"}
	r := newTestRouter(store, modelGen(), "u1")

	w := doJSON(t, r, http.MethodPatch, "/screens/s1", gin.H{"x": 40, "y": 80, "width": 375, "height": 812})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40.0, store.screens["s1"].X)

	w = doJSON(t, r, http.MethodPatch, "/screens/s1", gin.H{"x": 40})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := ratelimit.New(1)
	defer limiter.Stop()

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(auth.CtxUserID, "u1") })
	r.POST("/generate", RateLimitMiddleware(limiter), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := doJSON(t, r, http.MethodPost, "/generate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/generate", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
