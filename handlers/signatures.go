package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/models"
	"todo-api/store"
)

const (
	missingSignature = "Could not find a signature with that id identifier"
	nameRequired     = "A string value for name is required in your JSON body"
)

// Signature routes answer with JSend envelopes.
func success(c *gin.Context, status int, data gin.H) {
	body := gin.H{"status": "success"}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"status": "fail", "data": data})
}

func (h *Handler) respondSignatureError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, gin.H{verr.Field: verr.Reason})
	case errors.Is(err, store.ErrNotFound):
		fail(c, http.StatusNotFound, gin.H{"id": missingSignature})
	case errors.Is(err, context.DeadlineExceeded):
		loggerFrom(c, h.logger).Error("store timed out", "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"status": "error", "message": "store timed out"})
	default:
		loggerFrom(c, h.logger).Error("store failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
	}
}

func (h *Handler) signatureID(c *gin.Context) (int64, bool) {
	id, err := parseID(c)
	if err != nil {
		fail(c, http.StatusBadRequest, gin.H{"id": err.Error()})
		return 0, false
	}
	return id, true
}

func (h *Handler) listSignatures(c *gin.Context) {
	sigs, err := h.store.ListSignatures(c.Request.Context())
	if err != nil {
		h.respondSignatureError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"signatures": sigs})
}

func (h *Handler) getSignature(c *gin.Context) {
	id, ok := h.signatureID(c)
	if !ok {
		return
	}
	sig, err := h.store.GetSignature(c.Request.Context(), id)
	if err != nil {
		h.respondSignatureError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"signature": sig})
}

func (h *Handler) createSignature(c *gin.Context) {
	var in models.NewSignature
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, gin.H{"name": nameRequired})
		return
	}
	if err := in.Validate(); err != nil {
		h.respondSignatureError(c, err)
		return
	}
	sig, err := h.store.CreateSignature(c.Request.Context(), in)
	if err != nil {
		h.respondSignatureError(c, err)
		return
	}
	success(c, http.StatusCreated, gin.H{"signature": sig})
}

// replaceSignature overwrites both fields; an absent message is cleared.
func (h *Handler) replaceSignature(c *gin.Context) {
	id, ok := h.signatureID(c)
	if !ok {
		return
	}
	var in models.NewSignature
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, gin.H{"name": nameRequired})
		return
	}
	if err := in.Validate(); err != nil {
		h.respondSignatureError(c, err)
		return
	}
	patch := models.SignaturePatch{
		Name:    models.Some(in.Name),
		Message: models.Some(in.Message),
	}
	sig, err := h.store.UpdateSignature(c.Request.Context(), id, patch)
	if err != nil {
		h.respondSignatureError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"signature": sig})
}

func (h *Handler) updateSignature(c *gin.Context) {
	id, ok := h.signatureID(c)
	if !ok {
		return
	}
	var patch models.SignaturePatch
	if err := decodeStrict(c, &patch); err != nil {
		fail(c, http.StatusBadRequest, gin.H{"body": err.Error()})
		return
	}
	if err := patch.Validate(); err != nil {
		h.respondSignatureError(c, err)
		return
	}
	sig, err := h.store.UpdateSignature(c.Request.Context(), id, patch)
	if err != nil {
		h.respondSignatureError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"signature": sig})
}

func (h *Handler) deleteSignature(c *gin.Context) {
	id, ok := h.signatureID(c)
	if !ok {
		return
	}
	if _, err := h.store.DeleteSignature(c.Request.Context(), id); err != nil {
		h.respondSignatureError(c, err)
		return
	}
	success(c, http.StatusOK, nil)
}
