package handler

import (
	"net/http"

	"immosearch/internal/auth"
	"immosearch/internal/config"
	"immosearch/internal/model"
	"immosearch/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
	config        *config.SearchConfig
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService, cfg *config.SearchConfig) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		config:        cfg,
	}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if req.Size <= 0 {
		req.Size = h.config.DefaultSize
	}
	if req.Size > h.config.MaxSize {
		req.Size = h.config.MaxSize
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	// Each session accumulates filters across turns; a new session id is
	// minted when the client does not carry one.
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()[:8]
	}

	user := auth.CurrentUser(c)

	resp, err := h.searchService.Search(c.Request.Context(), user.UserID, sessionID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/me
func (h *SearchHandler) Me(c *gin.Context) {
	user := auth.CurrentUser(c)
	c.JSON(http.StatusOK, model.UserInfo{
		UserID:      user.UserID,
		Username:    user.Username,
		Email:       user.Email,
		Name:        user.Name,
		Roles:       user.Roles,
		Groups:      user.Groups,
		IsAnonymous: user.IsAnonymous,
	})
}
