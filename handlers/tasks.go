package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/models"
)

// GET /items
func (h *Handler) listItems(c *gin.Context) {
	tasks, err := h.store.ListTasks(c.Request.Context())
	if err != nil {
		h.respondTaskError(c, 0, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /items/:id
func (h *Handler) getItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.store.GetTask(c.Request.Context(), id)
	if err != nil {
		h.respondTaskError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// POST /items
func (h *Handler) createItem(c *gin.Context) {
	var in models.NewTask
	if err := decodeStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		h.respondTaskError(c, 0, err)
		return
	}
	task, err := h.store.CreateTask(c.Request.Context(), in)
	if err != nil {
		h.respondTaskError(c, 0, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// PATCH /items/:id
func (h *Handler) updateItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var patch models.TaskPatch
	if err := decodeStrict(c, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if err := patch.Validate(); err != nil {
		h.respondTaskError(c, id, err)
		return
	}
	task, err := h.store.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		h.respondTaskError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /items/:id
func (h *Handler) deleteItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.store.DeleteTask(c.Request.Context(), id)
	if err != nil {
		h.respondTaskError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /completed-items
func (h *Handler) deleteCompletedItems(c *gin.Context) {
	removed, err := h.store.DeleteCompletedTasks(c.Request.Context())
	if err != nil {
		h.respondTaskError(c, 0, err)
		return
	}
	if len(removed) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed items found"})
		return
	}
	c.JSON(http.StatusOK, removed)
}
