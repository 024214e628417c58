package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mediaflow/internal/auth"
	"mediaflow/internal/authz"
	"mediaflow/internal/catalog"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call catalog services, return JSON.
// Authorization lives in the policy middleware and the services; handlers
// only translate errors to status codes.
type Handlers struct {
	Auth       *auth.Manager
	Contents   *catalog.ContentService
	Playlists  *catalog.PlaylistService
	Categories *catalog.CategoryService
	Metadata   *catalog.MetadataService
}

// errorBody is the uniform denial/error payload on the REST surface.
func errorBody(code, message string) gin.H {
	return gin.H{
		"code":      code,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

// respondError maps service errors onto HTTP statuses. Typed authorization
// denials keep their own code; everything else gets a generic one. Internal
// errors never leak details to the client.
func respondError(c *gin.Context, err error) {
	var denial *authz.Error
	switch {
	case errors.As(err, &denial):
		c.AbortWithStatusJSON(denial.HTTPStatus(), errorBody(string(denial.Code), denial.Message))
	case errors.Is(err, catalog.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody("NOT_FOUND", "resource not found"))
	case errors.Is(err, catalog.ErrInvalid):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("BAD_REQUEST", err.Error()))
	case errors.Is(err, catalog.ErrUploadLimit):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody("TOO_MANY_REQUESTS", err.Error()))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("INTERNAL", "internal error"))
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("BAD_REQUEST", message))
}

func paramInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

func pageRequest(c *gin.Context) catalog.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	return catalog.PageRequest{Page: page, Size: size}
}

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Token issuance ---

type tokenRequest struct {
	UserID int      `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// IssueToken signs a bearer token for the stated identity.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) IssueToken(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("INTERNAL", "auth not configured"))
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.UserID <= 0 || req.Email == "" {
		badRequest(c, "userId and email required")
		return
	}
	token, err := h.Auth.Issue(time.Now(), req.UserID, req.Email, req.Roles)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("INTERNAL", "token issuance failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}
