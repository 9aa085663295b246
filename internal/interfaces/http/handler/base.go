package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/academy/backend/internal/interfaces/http/dto"
	"github.com/academy/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.HTTPStatusForCode(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends an invalid_form response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.CodeInvalidForm, message)
}

// HandleError renders a rejection with its own code and status. Anything
// that is not a domain error is logged and reported as INTERNAL_ERROR.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.ErrorWithCode(c, dto.CodeTimeout, "Request timed out")
		return
	}

	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("unexpected error", zap.Error(err))
	h.ErrorWithCode(c, dto.CodeInternal, "An unexpected error occurred")
}

// actor returns the caller resolved by the JWT middleware. A missing actor
// is passed on as nil so the capability checker rejects it.
func actor(c *gin.Context) *billing.Actor {
	return middleware.GetActor(c)
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, billing.ErrInvalidForm
	}
	return id, nil
}

// optionalUUIDQuery parses an optional uuid query parameter. Absent or
// empty values give nil.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewDomainError(billing.CodeInvalidForm, name+" must be a UUID")
	}
	return &id, nil
}

// pageQuery parses ?page=, defaulting to 1 for anything unusable
func pageQuery(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
