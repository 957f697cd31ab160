package delivery

import (
	"errors"
	"net/http"

	accountusecase "newsbox-backend/internal/account/usecase"
	newsletterdto "newsbox-backend/internal/newsletter/dto"
	"newsbox-backend/internal/newsletter/usecase"
	"newsbox-backend/pkg/provider"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

func NewSyncHandler(syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{
		syncUsecase: syncUsecase,
	}
}

func (h *SyncHandler) Preview(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Query("account_id")
	if accountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return
	}

	preview, err := h.syncUsecase.Preview(c.Request.Context(), userID, accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *SyncHandler) Import(c *gin.Context) {
	userID := c.GetString("userID")

	var req newsletterdto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.syncUsecase.CommitImport(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) Run(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Query("account_id") // optional; empty syncs every account

	result, err := h.syncUsecase.RunManualSync(c.Request.Context(), userID, accountID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) Progress(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Query("account_id")
	if accountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return
	}

	progress, err := h.syncUsecase.Progress(userID, accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *SyncHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, accountusecase.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, provider.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "provider authorization expired, please reconnect the account"})
	case errors.Is(err, provider.ErrTransient):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
