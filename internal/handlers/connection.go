package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tracker-api/internal/dto"
	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/middleware"
	"github.com/yukikurage/tracker-api/internal/services"
)

// ConnectionHandler serves the friend graph.
type ConnectionHandler struct {
	connectionService *services.ConnectionService
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(connectionService *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

// ListConnections returns friends and incoming requests
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	list, err := h.connectionService.ListConnections(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToConnectionListDTO(*list))
}

// RequestConnection sends a request by friend code
func (h *ConnectionHandler) RequestConnection(c *gin.Context) {
	var req services.ConnectionRequestInput
	if !bindJSON(c, &req, false) {
		return
	}

	conn, err := h.connectionService.RequestConnection(c.Request.Context(), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusCreated, dto.ToConnectionDTO(*conn))
}

// AcceptConnection accepts a pending request from user_id
func (h *ConnectionHandler) AcceptConnection(c *gin.Context) {
	if err := h.connectionService.AcceptConnection(c.Request.Context(), middleware.IDParam(c, "user_id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Connection accepted"})
}

// RemoveConnection removes a friend or a pending request
func (h *ConnectionHandler) RemoveConnection(c *gin.Context) {
	if err := h.connectionService.RemoveConnection(c.Request.Context(), middleware.IDParam(c, "user_id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Connection removed"})
}
