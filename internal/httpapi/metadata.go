package httpapi

import (
	"encoding/json"
	"net/http"

	"mediaflow/internal/catalog"

	"github.com/gin-gonic/gin"
)

type metadataRequest struct {
	Extractor string          `json:"extractor"`
	Result    json.RawMessage `json:"result"`
	ContentID int             `json:"contentId"`
}

func (h Handlers) GetMetadata(c *gin.Context) {
	id, ok := paramInt(c, "metadataId")
	if !ok {
		return
	}
	m, err := h.Metadata.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h Handlers) GetContentMetadata(c *gin.Context) {
	contentID, ok := paramInt(c, "contentId")
	if !ok {
		return
	}
	m, err := h.Metadata.GetByContent(c.Request.Context(), contentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h Handlers) CreateMetadata(c *gin.Context) {
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ContentID <= 0 {
		badRequest(c, "contentId must be a positive integer")
		return
	}
	created, err := h.Metadata.Create(c.Request.Context(), catalog.Metadata{
		Extractor: req.Extractor,
		Result:    req.Result,
		ContentID: req.ContentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h Handlers) UpdateMetadata(c *gin.Context) {
	id, ok := paramInt(c, "metadataId")
	if !ok {
		return
	}
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	updated, err := h.Metadata.Update(c.Request.Context(), catalog.Metadata{
		ID:        id,
		Extractor: req.Extractor,
		Result:    req.Result,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h Handlers) DeleteMetadata(c *gin.Context) {
	id, ok := paramInt(c, "metadataId")
	if !ok {
		return
	}
	if err := h.Metadata.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
