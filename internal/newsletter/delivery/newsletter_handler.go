package delivery

import (
	"errors"
	"net/http"
	"strconv"

	newsletterdto "newsbox-backend/internal/newsletter/dto"
	"newsbox-backend/internal/newsletter/usecase"

	"github.com/gin-gonic/gin"
)

type NewsletterHandler struct {
	newsletterUsecase usecase.NewsletterUsecase
}

func NewNewsletterHandler(newsletterUsecase usecase.NewsletterUsecase) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterUsecase: newsletterUsecase,
	}
}

func (h *NewsletterHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	filter := newsletterdto.ListFilter{
		Category: c.Query("category"),
		Folder:   c.Query("folder"),
		Limit:    20,
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			filter.Offset = parsed
		}
	}
	if c.Query("unread") == "true" {
		filter.UnreadOnly = true
	}
	if archivedStr := c.Query("archived"); archivedStr != "" {
		archived := archivedStr == "true"
		filter.Archived = &archived
	}

	newsletters, total, err := h.newsletterUsecase.List(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newsletterdto.NewslettersResponse{
		Newsletters: newsletters,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
		Total:       total,
	})
}

func (h *NewsletterHandler) GetByID(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	newsletter, err := h.newsletterUsecase.GetByID(userID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Mark as read when viewing
	_ = h.newsletterUsecase.MarkRead(userID, id, true)

	c.JSON(http.StatusOK, newsletter)
}

func (h *NewsletterHandler) Search(c *gin.Context) {
	userID := c.GetString("userID")
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.newsletterUsecase.Search(userID, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"newsletters": results, "query": query})
}

func (h *NewsletterHandler) MarkAsRead(c *gin.Context) {
	h.setRead(c, true)
}

func (h *NewsletterHandler) MarkAsUnread(c *gin.Context) {
	h.setRead(c, false)
}

func (h *NewsletterHandler) setRead(c *gin.Context, read bool) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.newsletterUsecase.MarkRead(userID, id, read); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "newsletter updated"})
}

func (h *NewsletterHandler) ToggleStar(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	newsletter, err := h.newsletterUsecase.ToggleStar(userID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newsletter)
}

func (h *NewsletterHandler) Archive(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.newsletterUsecase.Archive(userID, id, true); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "newsletter archived"})
}

func (h *NewsletterHandler) Unarchive(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.newsletterUsecase.Archive(userID, id, false); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "newsletter unarchived"})
}

func (h *NewsletterHandler) Update(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	var req newsletterdto.UpdateNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newsletter, err := h.newsletterUsecase.Update(userID, id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newsletter)
}

func (h *NewsletterHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.newsletterUsecase.Delete(userID, id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "newsletter deleted"})
}

func (h *NewsletterHandler) ApplyRules(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	newsletter, err := h.newsletterUsecase.ApplyRules(userID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newsletter)
}

func (h *NewsletterHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrNewsletterNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
