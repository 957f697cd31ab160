package delivery

import (
	"errors"
	"net/http"

	newsletterdto "newsbox-backend/internal/newsletter/dto"
	"newsbox-backend/internal/newsletter/usecase"

	"github.com/gin-gonic/gin"
)

// SettingsHandler serves the whitelist, rule and category endpoints.
type SettingsHandler struct {
	newsletterUsecase usecase.NewsletterUsecase
}

func NewSettingsHandler(newsletterUsecase usecase.NewsletterUsecase) *SettingsHandler {
	return &SettingsHandler{
		newsletterUsecase: newsletterUsecase,
	}
}

func (h *SettingsHandler) ListWhitelist(c *gin.Context) {
	userID := c.GetString("userID")

	entries, err := h.newsletterUsecase.ListWhitelist(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newsletterdto.WhitelistResponse{Entries: entries})
}

func (h *SettingsHandler) AddWhitelist(c *gin.Context) {
	userID := c.GetString("userID")

	var req newsletterdto.WhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.newsletterUsecase.AddWhitelist(userID, &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "sender whitelisted"})
}

func (h *SettingsHandler) RemoveWhitelist(c *gin.Context) {
	userID := c.GetString("userID")
	email := c.Param("email")

	if err := h.newsletterUsecase.RemoveWhitelist(userID, email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sender removed from whitelist"})
}

func (h *SettingsHandler) ListRules(c *gin.Context) {
	userID := c.GetString("userID")

	rules, err := h.newsletterUsecase.ListRules(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newsletterdto.RulesResponse{Rules: rules})
}

func (h *SettingsHandler) CreateRule(c *gin.Context) {
	userID := c.GetString("userID")

	var req newsletterdto.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.newsletterUsecase.CreateRule(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (h *SettingsHandler) UpdateRule(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	var req newsletterdto.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.newsletterUsecase.UpdateRule(userID, id, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (h *SettingsHandler) DeleteRule(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.newsletterUsecase.DeleteRule(userID, id); err != nil {
		if errors.Is(err, usecase.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rule deleted"})
}

func (h *SettingsHandler) ListCategories(c *gin.Context) {
	userID := c.GetString("userID")

	categories, err := h.newsletterUsecase.ListCategories(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newsletterdto.CategoriesResponse{Categories: categories})
}

func (h *SettingsHandler) CreateCategory(c *gin.Context) {
	userID := c.GetString("userID")

	var req newsletterdto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.newsletterUsecase.CreateCategory(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *SettingsHandler) DeleteCategory(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.newsletterUsecase.DeleteCategory(userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
