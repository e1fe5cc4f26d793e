package handler

import (
	"net/http"
	"strconv"

	"immosearch/internal/auth"
	"immosearch/internal/model"
	"immosearch/internal/repository"

	"github.com/gin-gonic/gin"
)

// SessionHandler handles session-related HTTP requests
type SessionHandler struct {
	sessions *repository.SessionRepository
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *repository.SessionRepository) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

// Get handles GET /api/v1/session/:id
func (h *SessionHandler) Get(c *gin.Context) {
	user := auth.CurrentUser(c)
	sessionID := c.Param("id")

	info, err := h.sessions.Info(c.Request.Context(), user.UserID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load session: " + err.Error(),
		})
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Session not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": info,
	})
}

// History handles GET /api/v1/session/:id/history
func (h *SessionHandler) History(c *gin.Context) {
	user := auth.CurrentUser(c)
	sessionID := c.Param("id")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.sessions.History(c.Request.Context(), user.UserID, sessionID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load history: " + err.Error(),
		})
		return
	}

	items := make([]model.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, model.HistoryItem{
			Query:     e.Query,
			Timestamp: e.Timestamp,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
		"history":    items,
	})
}

// Reset handles POST /api/v1/session/:id/reset. The stored filters are
// replaced with a fresh state; query history is kept.
func (h *SessionHandler) Reset(c *gin.Context) {
	user := auth.CurrentUser(c)
	sessionID := c.Param("id")

	state := model.NewFilterState()
	if err := h.sessions.Put(c.Request.Context(), user.UserID, sessionID, state, ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to reset session: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
		"filters":    state,
	})
}

// Delete handles DELETE /api/v1/session/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	user := auth.CurrentUser(c)
	sessionID := c.Param("id")

	deleted, err := h.sessions.Delete(c.Request.Context(), user.UserID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete session: " + err.Error(),
		})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Session not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
	})
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	user := auth.CurrentUser(c)

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	sessions, err := h.sessions.ListByUser(c.Request.Context(), user.UserID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list sessions: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"user_id":  user.UserID,
		"sessions": sessions,
	})
}
