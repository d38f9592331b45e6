package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gsus07/tichat-push/internal/microservices/http-api/dto"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/service"
	"github.com/Gsus07/tichat-push/internal/push"
)

type NotificationHandler struct {
	tokens      service.TokenService
	preferences service.PreferencesService
	tracking    service.TrackingService
	delivery    service.DeliveryService
}

func NewNotificationHandler(
	tokens service.TokenService,
	preferences service.PreferencesService,
	tracking service.TrackingService,
	delivery service.DeliveryService,
) *NotificationHandler {
	return &NotificationHandler{
		tokens:      tokens,
		preferences: preferences,
		tracking:    tracking,
		delivery:    delivery,
	}
}

func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/push-token", h.RegisterToken)
	rg.DELETE("/push-token", h.RemoveToken)
	rg.GET("/preferences", h.GetPreferences)
	rg.PUT("/preferences", h.SavePreferences)
	rg.POST("/track-close", h.TrackClose)
	rg.POST("/send", h.Send)
}

// RegisterToken stores a browser push subscription for the authenticated user
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.tokens.Register(ctx, userID.(string), req.Token, req.DeviceType); err != nil {
		if errors.Is(err, service.ErrInvalidPushToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

// RemoveToken deletes a stored subscription
func (h *NotificationHandler) RemoveToken(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.RemoveTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.tokens.Remove(ctx, userID.(string), req.Token); err != nil {
		if errors.Is(err, service.ErrInvalidPushToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPreferences returns the notification opt-in matrix for the user
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	prefs, err := h.preferences.Get(ctx, userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.PreferencesResponse{Preferences: prefs})
}

// SavePreferences replaces the full matrix
func (h *NotificationHandler) SavePreferences(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var prefs push.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preferences"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.preferences.Save(ctx, userID.(string), prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// TrackClose records a dismissed notification, best effort on the client side
func (h *NotificationHandler) TrackClose(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.TrackCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notificationId is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.tracking.TrackClose(ctx, userID.(string), req.NotificationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// Send pushes a payload to every registered endpoint of a target user
func (h *NotificationHandler) Send(c *gin.Context) {
	if _, exists := c.Get("user_id"); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	if h.delivery == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push delivery is not configured"})
		return
	}

	var req dto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	payload := push.Payload{
		Title: req.Title,
		Body:  req.Message,
		Icon:  push.DefaultIcon,
		Badge: push.DefaultIcon,
		Tag:   req.Tag,
		Data:  req.Data,
	}
	if payload.Title == "" {
		payload.Title = push.DefaultTitle
	}
	if payload.Body == "" {
		payload.Body = push.DefaultBody
	}
	if payload.Tag == "" {
		payload.Tag = push.DefaultTag
	}

	// sends fan out to external push services, give them more room
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	delivered, err := h.delivery.Deliver(ctx, req.UserID, payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SendResponse{Delivered: delivered})
}
