package httpapi

import (
	"net/http"

	"mediaflow/internal/catalog"

	"github.com/gin-gonic/gin"
)

type videoRequest struct {
	DurationSeconds int `json:"durationSeconds"`
	Width           int `json:"width"`
	Height          int `json:"height"`
}

type imageRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type contentRequest struct {
	Format         string `json:"format"`
	FileSizeMB     int    `json:"fileSizeMB"`
	Language       string `json:"language"`
	Title          string `json:"title"`
	ContentType    string `json:"contentType"`
	Description    string `json:"description"`
	RecommendedAge int    `json:"recommendedAge"`
	StorageURL     string `json:"storageUrl"`
	ThumbnailURL   string `json:"thumbnailUrl"`
	LocationID     int    `json:"locationId"`

	Video *videoRequest `json:"video"`
	Image *imageRequest `json:"image"`

	CategoryIDs []int `json:"categoryIds"`
}

func (r contentRequest) toModel() catalog.Content {
	c := catalog.Content{
		Format:         r.Format,
		FileSizeMB:     r.FileSizeMB,
		Language:       r.Language,
		Title:          r.Title,
		ContentType:    catalog.ContentType(r.ContentType),
		Description:    r.Description,
		RecommendedAge: r.RecommendedAge,
		StorageURL:     r.StorageURL,
		ThumbnailURL:   r.ThumbnailURL,
		LocationID:     r.LocationID,
		CategoryIDs:    r.CategoryIDs,
	}
	if r.Video != nil {
		c.Video = &catalog.Video{
			DurationSeconds: r.Video.DurationSeconds,
			Width:           r.Video.Width,
			Height:          r.Video.Height,
		}
	}
	if r.Image != nil {
		c.Image = &catalog.Image{Width: r.Image.Width, Height: r.Image.Height}
	}
	return c
}

func (h Handlers) ListContents(c *gin.Context) {
	page, err := h.Contents.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) ListContentsByType(c *gin.Context) {
	t := catalog.ContentType(c.Param("contentType"))
	page, err := h.Contents.ListByType(c.Request.Context(), t, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) ListMyContents(c *gin.Context) {
	page, err := h.Contents.ListMine(c.Request.Context(), pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) ListMyContentsByType(c *gin.Context) {
	t := catalog.ContentType(c.Param("contentType"))
	page, err := h.Contents.ListMineByType(c.Request.Context(), t, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) ListUserContents(c *gin.Context) {
	userID, ok := paramInt(c, "userId")
	if !ok {
		return
	}
	page, err := h.Contents.ListByUser(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) ListUserContentsByType(c *gin.Context) {
	userID, ok := paramInt(c, "userId")
	if !ok {
		return
	}
	t := catalog.ContentType(c.Param("contentType"))
	page, err := h.Contents.ListByUserAndType(c.Request.Context(), userID, t, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h Handlers) GetContent(c *gin.Context) {
	id, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	content, err := h.Contents.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h Handlers) CreateContent(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	created, err := h.Contents.Create(c.Request.Context(), req.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h Handlers) UpdateContent(c *gin.Context) {
	id, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	content := req.toModel()
	content.ID = id
	updated, err := h.Contents.Update(c.Request.Context(), content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h Handlers) DeleteContent(c *gin.Context) {
	id, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	if err := h.Contents.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) ListContentCategories(c *gin.Context) {
	id, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	categories, err := h.Contents.Categories(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

type addCategoriesRequest struct {
	CategoryIDs []int `json:"categoryIds"`
}

func (h Handlers) AddContentCategories(c *gin.Context) {
	id, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	var req addCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	content, err := h.Contents.AddCategories(c.Request.Context(), id, req.CategoryIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h Handlers) RemoveContentCategory(c *gin.Context) {
	contentID, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	categoryID, ok := paramInt(c, "categoryId")
	if !ok {
		return
	}
	if err := h.Contents.RemoveCategory(c.Request.Context(), contentID, categoryID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
