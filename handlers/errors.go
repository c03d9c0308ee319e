package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-api/models"
	"todo-api/store"
)

var (
	errInvalidID    = errors.New("id must be a positive integer")
	errTrailingData = errors.New("request body must hold a single JSON object")
)

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// decodeStrict decodes the request body into v, rejecting unknown keys so a
// payload can never smuggle in an id.
func decodeStrict(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// respondTaskError writes the response for a failed task operation.
func (h *Handler) respondTaskError(c *gin.Context, id int64, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found", "id": id})
	case errors.Is(err, context.DeadlineExceeded):
		loggerFrom(c, h.logger).Error("store timed out", "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "store timed out"})
	default:
		loggerFrom(c, h.logger).Error("store failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
