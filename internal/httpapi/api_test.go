package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
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

type testAPI struct {
	router  *gin.Engine
	manager *auth.Manager
}

func newTestAPI(t *testing.T, devPublicCreate bool) testAPI {
	t.Helper()

	manager, err := auth.NewManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	gate := auth.NewGate(manager, nil)

	store := catalog.NewMemoryStore()
	contents := catalog.NewContentService(store.Contents(), nil, nil, nil)
	playlists := catalog.NewPlaylistService(store.Playlists(), nil)
	categories := catalog.NewCategoryService(store.CategoriesRepo(), nil)
	metadata := catalog.NewMetadataService(store.MetadataRepo(), contents, nil)

	router := NewRouter(nil, gate.Middleware(), DefaultPolicyTable(devPublicCreate), Handlers{
		Auth:       manager,
		Contents:   contents,
		Playlists:  playlists,
		Categories: categories,
		Metadata:   metadata,
	}, nil)

	return testAPI{router: router, manager: manager}
}

func (a testAPI) token(t *testing.T, userID int, roles ...string) string {
	t.Helper()
	tok, err := a.manager.Issue(time.Now(), userID, "user@example.com", roles)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func (a testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func denialOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	decodeBody(t, w, &body)
	if body.Timestamp == "" {
		t.Fatalf("denial body missing timestamp: %s", w.Body.String())
	}
	return body.Code
}

var videoPayload = map[string]any{
	"title":       "clip",
	"contentType": "VIDEO",
	"storageUrl":  "s3://bucket/clip.mp4",
	"video":       map[string]any{"durationSeconds": 30, "width": 1920, "height": 1080},
}

func (a testAPI) createContent(t *testing.T, token string) int {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/contents", token, videoPayload)
	if w.Code != http.StatusCreated {
		t.Fatalf("create content: status %d body %s", w.Code, w.Body.String())
	}
	var created struct {
		ContentID int `json:"contentId"`
	}
	decodeBody(t, w, &created)
	return created.ContentID
}

func TestCatalogReadsRequireRole(t *testing.T) {
	api := newTestAPI(t, false)

	if w := api.do(t, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}

	for _, path := range []string{
		"/api/v1/contents",
		"/api/v1/categories",
		"/api/v1/playlists/public",
	} {
		w := api.do(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized || denialOf(t, w) != "UNAUTHORIZED" {
			t.Fatalf("anonymous GET %s: status %d body %s", path, w.Code, w.Body.String())
		}
	}

	viewer := api.token(t, 3, "VIEWER")
	for _, path := range []string{
		"/api/v1/contents",
		"/api/v1/categories",
		"/api/v1/playlists/public",
	} {
		if w := api.do(t, http.MethodGet, path, viewer, nil); w.Code != http.StatusOK {
			t.Fatalf("viewer GET %s: status %d body %s", path, w.Code, w.Body.String())
		}
	}
}

func TestCreateContentAsCreator(t *testing.T) {
	api := newTestAPI(t, false)
	token := api.token(t, 7, "CREATOR")

	w := api.do(t, http.MethodPost, "/api/v1/contents", token, videoPayload)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var created struct {
		ContentID int `json:"contentId"`
		UserID    int `json:"userId"`
	}
	decodeBody(t, w, &created)
	if created.UserID != 7 {
		t.Fatalf("owner must be stamped from token, got %d", created.UserID)
	}
}

func TestCreateContentAnonymousIs401(t *testing.T) {
	api := newTestAPI(t, false)

	w := api.do(t, http.MethodPost, "/api/v1/contents", "", videoPayload)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if denialOf(t, w) != "UNAUTHORIZED" {
		t.Fatalf("wrong code: %s", w.Body.String())
	}
}

func TestExpiredTokenDegradesToAnonymous(t *testing.T) {
	api := newTestAPI(t, false)

	expired, err := api.manager.Issue(time.Now().Add(-2*time.Hour), 7, "user@example.com", []string{"CREATOR"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// The caller becomes anonymous, so role-gated reads and writes both
	// see the anonymous denial, never a token parse error.
	if w := api.do(t, http.MethodGet, "/api/v1/contents", expired, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("read with expired token: %d body %s", w.Code, w.Body.String())
	}
	w := api.do(t, http.MethodPost, "/api/v1/contents", expired, videoPayload)
	if w.Code != http.StatusUnauthorized || denialOf(t, w) != "UNAUTHORIZED" {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}

func TestTokenSignedWithOtherKeyIs401(t *testing.T) {
	api := newTestAPI(t, false)

	other, err := auth.NewManager(config.AuthConfig{JWTSecret: "other-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	forged, err := other.Issue(time.Now(), 7, "user@example.com", []string{"CREATOR"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := api.do(t, http.MethodPost, "/api/v1/contents", forged, videoPayload)
	if w.Code != http.StatusUnauthorized || denialOf(t, w) != "UNAUTHORIZED" {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if w := api.do(t, http.MethodGet, "/api/v1/contents", forged, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("read with bad signature: %d body %s", w.Code, w.Body.String())
	}
}

func TestCreateContentAsViewerIs403(t *testing.T) {
	api := newTestAPI(t, false)
	token := api.token(t, 7, "VIEWER")

	w := api.do(t, http.MethodPost, "/api/v1/contents", token, videoPayload)
	if w.Code != http.StatusForbidden || denialOf(t, w) != "FORBIDDEN" {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}

func TestOwnershipOnUpdateAndDelete(t *testing.T) {
	api := newTestAPI(t, false)
	ownerToken := api.token(t, 1, "CREATOR")
	strangerToken := api.token(t, 2, "CREATOR")
	adminToken := api.token(t, 99, "ADMIN")

	id := api.createContent(t, ownerToken)
	path := "/api/v1/contents/" + strconv.Itoa(id)

	update := map[string]any{
		"title":       "renamed",
		"contentType": "VIDEO",
		"storageUrl":  "s3://bucket/clip.mp4",
		"video":       map[string]any{"durationSeconds": 30},
	}

	if w := api.do(t, http.MethodPut, path, strangerToken, update); w.Code != http.StatusForbidden {
		t.Fatalf("stranger update: %d body %s", w.Code, w.Body.String())
	}
	if w := api.do(t, http.MethodPut, path, "", update); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous update: %d", w.Code)
	}
	if w := api.do(t, http.MethodPut, path, ownerToken, update); w.Code != http.StatusOK {
		t.Fatalf("owner update: %d body %s", w.Code, w.Body.String())
	}

	if w := api.do(t, http.MethodDelete, path, strangerToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("stranger delete: %d", w.Code)
	}
	if w := api.do(t, http.MethodDelete, path, adminToken, nil); w.Code != http.StatusNoContent {
		t.Fatalf("admin delete: %d body %s", w.Code, w.Body.String())
	}
	if w := api.do(t, http.MethodGet, path, adminToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("deleted content read: %d", w.Code)
	}
}

func TestMissingResourceIs404NotDenial(t *testing.T) {
	api := newTestAPI(t, false)
	token := api.token(t, 1, "CREATOR")

	w := api.do(t, http.MethodDelete, "/api/v1/contents/4242", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}

func TestMyContentsRequiresAuth(t *testing.T) {
	api := newTestAPI(t, false)

	w := api.do(t, http.MethodGet, "/api/v1/contents/my-contents", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	token := api.token(t, 5, "CREATOR")
	api.createContent(t, token)
	w = api.do(t, http.MethodGet, "/api/v1/contents/my-contents", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var page struct {
		TotalElements int `json:"totalElements"`
	}
	decodeBody(t, w, &page)
	if page.TotalElements != 1 {
		t.Fatalf("unexpected page: %s", w.Body.String())
	}
}

func TestCategoryMutationsAdminOnly(t *testing.T) {
	api := newTestAPI(t, false)
	creatorToken := api.token(t, 1, "CREATOR")
	adminToken := api.token(t, 2, "ADMIN")

	payload := map[string]any{"name": "documentary", "description": "non-fiction"}

	if w := api.do(t, http.MethodPost, "/api/v1/categories", creatorToken, payload); w.Code != http.StatusForbidden {
		t.Fatalf("creator category create: %d", w.Code)
	}
	w := api.do(t, http.MethodPost, "/api/v1/categories", adminToken, payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin category create: %d body %s", w.Code, w.Body.String())
	}

	// Reads only need a catalog role.
	if w := api.do(t, http.MethodGet, "/api/v1/categories", creatorToken, nil); w.Code != http.StatusOK {
		t.Fatalf("creator category read: %d", w.Code)
	}
}

func TestContentMutationsRequireCreatorRole(t *testing.T) {
	api := newTestAPI(t, false)
	creatorToken := api.token(t, 1, "CREATOR")
	viewerToken := api.token(t, 1, "VIEWER")

	id := api.createContent(t, creatorToken)
	path := "/api/v1/contents/" + strconv.Itoa(id)

	update := map[string]any{
		"title":       "renamed",
		"contentType": "VIDEO",
		"storageUrl":  "s3://bucket/clip.mp4",
		"video":       map[string]any{"durationSeconds": 30},
	}

	// A VIEWER is denied at the route level even on content they own.
	if w := api.do(t, http.MethodPut, path, viewerToken, update); w.Code != http.StatusForbidden || denialOf(t, w) != "FORBIDDEN" {
		t.Fatalf("viewer update: %d body %s", w.Code, w.Body.String())
	}
	if w := api.do(t, http.MethodDelete, path, viewerToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("viewer delete: %d body %s", w.Code, w.Body.String())
	}
	if w := api.do(t, http.MethodPost, path+"/categories", viewerToken, map[string]any{"categoryIds": []int{1}}); w.Code != http.StatusForbidden {
		t.Fatalf("viewer category attach: %d body %s", w.Code, w.Body.String())
	}

	if w := api.do(t, http.MethodPut, path, creatorToken, update); w.Code != http.StatusOK {
		t.Fatalf("owner update: %d body %s", w.Code, w.Body.String())
	}
}

func TestDevPublicContentCreate(t *testing.T) {
	api := newTestAPI(t, true)

	w := api.do(t, http.MethodPost, "/api/v1/contents", "", videoPayload)
	if w.Code != http.StatusCreated {
		t.Fatalf("bypass create: %d body %s", w.Code, w.Body.String())
	}

	// The exception covers exactly one route; everything else still denies.
	if w := api.do(t, http.MethodPost, "/api/v1/playlists", "", map[string]any{"title": "x"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bypass must not leak to other routes: %d", w.Code)
	}
}

func TestTokenEndpointRoundTrip(t *testing.T) {
	api := newTestAPI(t, false)

	w := api.do(t, http.MethodPost, "/api/v1/auth/token", "", map[string]any{
		"userId": 11,
		"email":  "user@example.com",
		"roles":  []string{"CREATOR"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("token endpoint: %d body %s", w.Code, w.Body.String())
	}
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	decodeBody(t, w, &body)
	if body.AccessToken == "" {
		t.Fatalf("no token in response")
	}

	if w := api.do(t, http.MethodPost, "/api/v1/contents", body.AccessToken, videoPayload); w.Code != http.StatusCreated {
		t.Fatalf("issued token unusable: %d body %s", w.Code, w.Body.String())
	}
}
