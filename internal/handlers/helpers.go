package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"irisai/internal/middleware"
	"irisai/internal/xerrors"
)

// tolerant of the claim types different token issuers produce
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID string, roleID int) {
	userID = c.GetString(middleware.CtxUserID)
	if id, ok := getIntFromCtx(c, middleware.CtxRoleID); ok {
		roleID = id
	}
	return
}

func getPaging(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "50"))
	return page, size
}

type errorResponse struct {
	Error   string         `json:"error"`
	Kind    xerrors.Kind   `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

func statusFor(kind xerrors.Kind) int {
	switch kind {
	case xerrors.KindNotFound:
		return http.StatusNotFound
	case xerrors.KindInvalidTransition, xerrors.KindInvalidUser:
		return http.StatusUnprocessableEntity
	case xerrors.KindNotConvertible, xerrors.KindNotReversible, xerrors.KindConflict:
		return http.StatusConflict
	case xerrors.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders err as {"error","kind","details"}. Internal causes are
// logged, not returned.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var xe *xerrors.Error
	if !errors.As(err, &xe) {
		xe = xerrors.Internal(err, "internal server error")
	}
	status := statusFor(xe.Kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(xe.Kind)),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, errorResponse{Error: xe.Message, Kind: xe.Kind})
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: xe.Message, Kind: xe.Kind, Details: xe.Details})
}

func badBody(err error) error {
	return xerrors.BadRequest("invalid request body").With("cause", err.Error())
}
