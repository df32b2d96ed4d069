package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tracker-api/internal/dto"
	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/middleware"
	"github.com/yukikurage/tracker-api/internal/services"
)

// SharingHandler manages board members.
type SharingHandler struct {
	sharingService *services.SharingService
}

// NewSharingHandler creates a new SharingHandler.
func NewSharingHandler(sharingService *services.SharingService) *SharingHandler {
	return &SharingHandler{sharingService: sharingService}
}

// ListMembers returns the users a board is shared with
func (h *SharingHandler) ListMembers(c *gin.Context) {
	members, err := h.sharingService.ListBoardMembers(c.Request.Context(), middleware.IDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToBoardMemberDTOs(members))
}

// ShareBoard shares a board with connections
func (h *SharingHandler) ShareBoard(c *gin.Context) {
	var req services.ShareBoardInput
	if !bindJSON(c, &req, false) {
		return
	}

	members, err := h.sharingService.ShareBoard(c.Request.Context(), middleware.IDParam(c, "id"), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToBoardMemberDTOs(members))
}

// UnshareBoard removes a member from a board
func (h *SharingHandler) UnshareBoard(c *gin.Context) {
	err := h.sharingService.UnshareBoard(c.Request.Context(), middleware.IDParam(c, "id"), middleware.IDParam(c, "user_id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Member removed successfully"})
}
