package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/vtu_api/internal/engine"
	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/service"
	"github.com/GTDGit/vtu_api/internal/utils"
)

// handleError maps service errors to HTTP responses. sess, when not nil, is
// returned alongside the error so clients can render the current form state.
func handleError(c *gin.Context, err error, sess *models.Session) {
	var verr *service.ValidationError
	var aerr *engine.AmountError

	switch {
	case errors.As(err, &verr):
		utils.ErrorWithData(c, 422, "VALIDATION_FAILED", "Please correct the highlighted fields", gin.H{
			"errors":  verr.Result,
			"session": sess,
		})
	case errors.As(err, &aerr):
		utils.ErrorWithData(c, 422, "VALIDATION_FAILED", aerr.Message, gin.H{
			"errors": engine.ValidationResult{aerr.Field: {Code: aerr.Code, Message: aerr.Message}},
		})
	case errors.Is(err, utils.ErrUnknownService):
		utils.Error(c, 404, "UNKNOWN_SERVICE", "Service not found")
	case errors.Is(err, utils.ErrUnknownProvider):
		utils.Error(c, 404, "UNKNOWN_PROVIDER", "Provider not found")
	case errors.Is(err, utils.ErrUnknownCategory):
		utils.Error(c, 404, "UNKNOWN_CATEGORY", "Category not found")
	case errors.Is(err, utils.ErrPlanNotFound):
		utils.Error(c, 404, "PLAN_NOT_FOUND", "Plan not found")
	case errors.Is(err, utils.ErrUnknownBank):
		utils.Error(c, 404, "UNKNOWN_BANK", "Bank not found")
	case errors.Is(err, utils.ErrSessionNotFound):
		utils.Error(c, 404, "SESSION_NOT_FOUND", "Session not found or expired")
	case errors.Is(err, utils.ErrUnsupportedMethod):
		utils.Error(c, 400, "UNSUPPORTED_METHOD", "Payment method does not support offline instructions")
	case errors.Is(err, utils.ErrSubmissionInProgress):
		utils.Error(c, 409, "SUBMISSION_IN_PROGRESS", "A submission for this session is already in progress")
	case errors.Is(err, utils.ErrSessionClosed):
		utils.Error(c, 409, "SESSION_CLOSED", "This order has already been completed")
	case errors.Is(err, utils.ErrSubmissionFailed):
		utils.ErrorWithData(c, 502, "SUBMISSION_FAILED", "Transaction failed, please try again", gin.H{
			"session": sess,
		})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}
