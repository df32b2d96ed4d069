package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tracker-api/internal/dto"
	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/middleware"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/services"
)

// BoardHandler serves boards and their sections.
type BoardHandler struct {
	boardService *services.BoardService
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(boardService *services.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// ListBoards returns the user's boards in display order
func (h *BoardHandler) ListBoards(c *gin.Context) {
	boards, err := h.boardService.ListBoards(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToBoardDTOs(boards))
}

// ListSharedBoards returns boards other users shared with the user
func (h *BoardHandler) ListSharedBoards(c *gin.Context) {
	boards, err := h.boardService.ListSharedBoards(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToBoardDTOs(boards))
}

// GetBoard returns a board with its sections
func (h *BoardHandler) GetBoard(c *gin.Context) {
	board, err := h.boardService.GetBoard(c.Request.Context(), middleware.IDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToBoardDTO(*board))
}

// CreateBoard creates a board with the default sections
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	var req services.CreateBoardInput
	if !bindJSON(c, &req, false) {
		return
	}

	board, err := h.boardService.CreateBoard(c.Request.Context(), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusCreated, dto.ToBoardDTO(*board))
}

// UpdateBoard updates the provided board fields
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	var req services.UpdateBoardInput
	if !bindJSON(c, &req, false) {
		return
	}

	board, err := h.boardService.UpdateBoard(c.Request.Context(), middleware.IDParam(c, "id"), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToBoardDTO(*board))
}

// DeleteBoard deletes a board and everything on it
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	if err := h.boardService.DeleteBoard(c.Request.Context(), middleware.IDParam(c, "id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Board deleted successfully"})
}

// ReorderBoards sets the board order
func (h *BoardHandler) ReorderBoards(c *gin.Context) {
	var req ReorderRequest
	if !bindJSON(c, &req, false) {
		return
	}

	if err := h.boardService.ReorderBoards(c.Request.Context(), req.IDs); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Boards reordered"})
}

// EnsureSingletonBoard returns the user's board of a singleton kind,
// creating it on first use
func (h *BoardHandler) EnsureSingletonBoard(c *gin.Context) {
	board, err := h.boardService.EnsureSingletonBoard(c.Request.Context(), models.SingletonKind(c.Param("kind")))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToBoardDTO(*board))
}

// CreateSection appends a section to a board
func (h *BoardHandler) CreateSection(c *gin.Context) {
	var req services.SectionInput
	if !bindJSON(c, &req, false) {
		return
	}

	section, err := h.boardService.CreateSection(c.Request.Context(), middleware.IDParam(c, "id"), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusCreated, dto.ToSectionDTO(*section))
}

// UpdateSection renames a section
func (h *BoardHandler) UpdateSection(c *gin.Context) {
	var req services.SectionInput
	if !bindJSON(c, &req, false) {
		return
	}

	section, err := h.boardService.UpdateSection(c.Request.Context(), middleware.IDParam(c, "id"), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToSectionDTO(*section))
}

// DeleteSection deletes a section; its tasks stay on the board
func (h *BoardHandler) DeleteSection(c *gin.Context) {
	if err := h.boardService.DeleteSection(c.Request.Context(), middleware.IDParam(c, "id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Section deleted successfully"})
}

// ReorderSections sets the section order of a board
func (h *BoardHandler) ReorderSections(c *gin.Context) {
	var req ReorderRequest
	if !bindJSON(c, &req, false) {
		return
	}

	if err := h.boardService.ReorderSections(c.Request.Context(), middleware.IDParam(c, "id"), req.IDs); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Sections reordered"})
}
