package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scribesnap/internal/middleware"
	"scribesnap/internal/models"
	"scribesnap/internal/repository"
	"scribesnap/internal/service"
)

type NotesController struct {
	noteService service.NoteService
}

func NewNotesController(noteService service.NoteService) *NotesController {
	return &NotesController{
		noteService: noteService,
	}
}

// List handles GET /api/v1/notes
func (nc *NotesController) List(c *gin.Context) {
	response, err := nc.noteService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Create handles POST /api/v1/notes
func (nc *NotesController) Create(c *gin.Context) {
	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := nc.noteService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyNote) || errors.Is(err, service.ErrInvalidColor) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Update handles PATCH /api/v1/notes/:id
func (nc *NotesController) Update(c *gin.Context) {
	var req models.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := nc.noteService.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		case errors.Is(err, service.ErrEmptyNote), errors.Is(err, service.ErrInvalidColor):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /api/v1/notes/:id
func (nc *NotesController) Delete(c *gin.Context) {
	err := nc.noteService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}
