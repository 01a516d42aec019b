package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"scribesnap/internal/middleware"
	"scribesnap/internal/repository"
	"scribesnap/internal/service"
)

type QRCodeController struct {
	noteService service.NoteService
	frontendURL string
}

func NewQRCodeController(noteService service.NoteService, frontendURL string) *QRCodeController {
	return &QRCodeController{
		noteService: noteService,
		frontendURL: frontendURL,
	}
}

// NoteQRCode handles GET /api/v1/notes/:id/qrcode - a scannable deep link for
// opening one of the caller's notes on another device.
func (qc *QRCodeController) NoteQRCode(c *gin.Context) {
	noteID := c.Param("id")

	// Ownership check; the QR must not leak other users' note ids.
	if _, err := qc.noteService.Get(c.Request.Context(), middleware.UserID(c), noteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	png, err := qrcode.Encode(qc.frontendURL+"/notes/"+noteID, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Header("Content-Disposition", "inline; filename=note-qrcode.png")
	c.Data(http.StatusOK, "image/png", png)
}
