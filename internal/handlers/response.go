package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
)

// respond writes data inside the {data, error} envelope
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"data":  data,
		"error": nil,
	})
}

// bindJSON decodes the request body into req. An empty body leaves req
// untouched when optional is set.
func bindJSON(c *gin.Context, req interface{}, optional bool) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// ReorderRequest lists ids in their new display order
type ReorderRequest struct {
	IDs []uint64 `json:"ids" binding:"required"`
}
