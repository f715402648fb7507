package websocket

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vivaha/backend/internal/auth"
	"github.com/vivaha/backend/internal/repository"
)

// Handler handles WebSocket connections
type Handler struct {
	hub            *Hub
	jwtService     *auth.JWTService
	convRepo       *repository.ConversationRepository
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. The origin check is fixed at
// construction; handshakes share the upgrader read-only.
func NewHandler(hub *Hub, jwtService *auth.JWTService, convRepo *repository.ConversationRepository, allowedOrigins []string) *Handler {
	h := &Handler{
		hub:            hub,
		jwtService:     jwtService,
		convRepo:       convRepo,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	for _, pattern := range h.allowedOrigins {
		if matchOrigin(pattern, origin) {
			return true
		}
	}
	return false
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(c *gin.Context) {
	// Browsers cannot set headers on a websocket handshake, so the token
	// rides the query string
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(h.hub, conn, claims.AccountID, claims.Email, h.convRepo)

	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// GetOnlineUsers returns online account ids (for admin tooling)
func (h *Handler) GetOnlineUsers(c *gin.Context) {
	online := h.hub.OnlineUsers()
	c.JSON(http.StatusOK, gin.H{
		"onlineUsers": online,
		"count":       len(online),
	})
}

// matchOrigin supports exact matches or wildcard patterns like *.example.com
func matchOrigin(pattern, origin string) bool {
	if pattern == origin {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		originHost := origin
		if u, err := url.Parse(origin); err == nil {
			originHost = u.Hostname()
		}
		patHost := strings.TrimPrefix(pattern, "*.")
		if strings.HasSuffix(originHost, patHost) {
			return true
		}
	}
	return false
}
