package handler

import (
	"errors"
	"net/http"

	"salesledger/internal/logger"
	"salesledger/internal/middleware"
	"salesledger/pkg/apperror"
	"salesledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP statuses. Anything unrecognized is
// logged and reported as a 500 without its details.
func writeError(c *gin.Context, err error) {
	var (
		notFound   *apperror.NotFoundError
		validation *apperror.ValidationError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, validation.Error()))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, notFound.Error()))
	case errors.Is(err, apperror.ErrEmptySale):
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, err.Error()))
	case errors.Is(err, apperror.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
	case errors.Is(err, apperror.ErrConflict):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		logger.FromGin(c).Error("request failed", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
	}
}

// bindJSON decodes the body into req, answering 400 itself on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, middleware.ValidationMessage(err)))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, query interface{}) bool {
	if err := c.ShouldBindQuery(query); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, middleware.ValidationMessage(err)))
		return false
	}
	return true
}

// owner returns the authenticated owner, answering 401 when RequireAuth did not run
func owner(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.OwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "authentication required"))
	}
	return id, ok
}
