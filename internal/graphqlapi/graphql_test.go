package graphqlapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"mediaflow/internal/auth"
	"mediaflow/internal/catalog"
	"mediaflow/internal/config"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testGraph struct {
	router  *gin.Engine
	manager *auth.Manager
}

func newTestGraph(t *testing.T) testGraph {
	t.Helper()

	manager, err := auth.NewManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	gate := auth.NewGate(manager, nil)

	store := catalog.NewMemoryStore()
	contents := catalog.NewContentService(store.Contents(), nil, nil, nil)

	schema, err := NewSchema(&Resolver{Contents: contents, Ops: DefaultOperationTable()})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	r := gin.New()
	r.Use(gate.Middleware())
	r.POST("/graphql", Handler(schema))
	return testGraph{router: r, manager: manager}
}

type graphResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func (g testGraph) query(t *testing.T, token, query string, variables map[string]any) graphResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("transport status %d body %s", w.Code, w.Body.String())
	}
	var resp graphResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func (g testGraph) token(t *testing.T, userID int, roles ...string) string {
	t.Helper()
	tok, err := g.manager.Issue(time.Now(), userID, "user@example.com", roles)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func denialExtension(t *testing.T, resp graphResponse) string {
	t.Helper()
	if len(resp.Errors) == 0 {
		t.Fatalf("expected an error, got %+v", resp)
	}
	code, _ := resp.Errors[0].Extensions["code"].(string)
	if code == "" {
		t.Fatalf("error carries no code extension: %+v", resp.Errors[0])
	}
	return code
}

const createContentMutation = `
mutation($input: ContentInput!) {
  createContent(input: $input) { contentId userId title }
}`

var contentInputVars = map[string]any{
	"input": map[string]any{
		"title":       "clip",
		"contentType": "VIDEO",
		"storageUrl":  "s3://bucket/clip.mp4",
		"video":       map[string]any{"durationSeconds": 30, "width": 1920, "height": 1080},
	},
}

func TestQueriesRequireCatalogRole(t *testing.T) {
	g := newTestGraph(t)

	resp := g.query(t, "", `{ allContents { totalElements content { contentId } } }`, nil)
	if code := denialExtension(t, resp); code != "UNAUTHORIZED" {
		t.Fatalf("anonymous allContents: want UNAUTHORIZED, got %s", code)
	}

	resp = g.query(t, g.token(t, 3, "VIEWER"), `{ allContents { totalElements content { contentId } } }`, nil)
	if len(resp.Errors) != 0 {
		t.Fatalf("viewer allContents: %+v", resp.Errors)
	}
	var page struct {
		TotalElements int `json:"totalElements"`
	}
	if err := json.Unmarshal(resp.Data["allContents"], &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalElements != 0 {
		t.Fatalf("expected empty catalog, got %+v", page)
	}
}

func TestCreateContentDenials(t *testing.T) {
	g := newTestGraph(t)

	resp := g.query(t, "", createContentMutation, contentInputVars)
	if code := denialExtension(t, resp); code != "UNAUTHORIZED" {
		t.Fatalf("anonymous create: want UNAUTHORIZED, got %s", code)
	}

	resp = g.query(t, g.token(t, 1, "VIEWER"), createContentMutation, contentInputVars)
	if code := denialExtension(t, resp); code != "FORBIDDEN" {
		t.Fatalf("viewer create: want FORBIDDEN, got %s", code)
	}
}

func TestCreateContentAsCreator(t *testing.T) {
	g := newTestGraph(t)

	resp := g.query(t, g.token(t, 7, "CREATOR"), createContentMutation, contentInputVars)
	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", resp.Errors)
	}
	var created struct {
		ContentID int    `json:"contentId"`
		UserID    int    `json:"userId"`
		Title     string `json:"title"`
	}
	if err := json.Unmarshal(resp.Data["createContent"], &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.UserID != 7 || created.Title != "clip" || created.ContentID == 0 {
		t.Fatalf("unexpected result: %+v", created)
	}
}

func TestUpdateContentOwnership(t *testing.T) {
	g := newTestGraph(t)
	creator := g.token(t, 1, "CREATOR")

	resp := g.query(t, creator, createContentMutation, contentInputVars)
	if len(resp.Errors) != 0 {
		t.Fatalf("setup create failed: %+v", resp.Errors)
	}
	var created struct {
		ContentID int `json:"contentId"`
	}
	if err := json.Unmarshal(resp.Data["createContent"], &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	update := `
mutation($id: Int!, $input: ContentInput!) {
  updateContent(contentId: $id, input: $input) { contentId title }
}`
	vars := map[string]any{"id": created.ContentID, "input": contentInputVars["input"]}

	resp = g.query(t, g.token(t, 2, "CREATOR"), update, vars)
	if code := denialExtension(t, resp); code != "FORBIDDEN" {
		t.Fatalf("stranger update: want FORBIDDEN, got %s", code)
	}

	// A VIEWER is denied by the operation table before ownership is even
	// considered, including on content tied to their own user id.
	resp = g.query(t, g.token(t, 1, "VIEWER"), update, vars)
	if code := denialExtension(t, resp); code != "FORBIDDEN" {
		t.Fatalf("viewer update: want FORBIDDEN, got %s", code)
	}

	resp = g.query(t, creator, update, vars)
	if len(resp.Errors) != 0 {
		t.Fatalf("owner update failed: %+v", resp.Errors)
	}
}

func TestMyContentsRequiresIdentity(t *testing.T) {
	g := newTestGraph(t)

	resp := g.query(t, "", `{ myContents { totalElements } }`, nil)
	if code := denialExtension(t, resp); code != "UNAUTHORIZED" {
		t.Fatalf("want UNAUTHORIZED, got %s", code)
	}

	resp = g.query(t, g.token(t, 3, "VIEWER"), `{ myContents { totalElements } }`, nil)
	if len(resp.Errors) != 0 {
		t.Fatalf("authenticated myContents: %+v", resp.Errors)
	}
}

func TestMissingContentIsPlainError(t *testing.T) {
	g := newTestGraph(t)

	resp := g.query(t, g.token(t, 3, "VIEWER"), `{ content(contentId: 4242) { contentId } }`, nil)
	if len(resp.Errors) == 0 {
		t.Fatalf("expected an error")
	}
	// Not-found carries no denial code.
	if code, ok := resp.Errors[0].Extensions["code"].(string); ok && (code == "UNAUTHORIZED" || code == "FORBIDDEN") {
		t.Fatalf("not-found must not look like a denial: %+v", resp.Errors[0])
	}
}
