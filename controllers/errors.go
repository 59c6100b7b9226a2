package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luckymart/LuckyMart/services"
	"github.com/luckymart/LuckyMart/utils"
)

// appErrorFor maps engine sentinels onto transport-level errors. Anything
// unrecognized is a plain 500.
func appErrorFor(err error) *utils.AppError {
	switch {
	case errors.Is(err, services.ErrInvalidEventType):
		return utils.BadRequestError("Invalid event type", err)
	case errors.Is(err, services.ErrSelfReferral):
		return utils.BadRequestError("Users cannot refer themselves", err)
	case errors.Is(err, services.ErrCycleDetected):
		return utils.BadRequestError("Referral would create a circular chain", err)
	case errors.Is(err, services.ErrUserNotFound):
		return utils.NotFoundError("User not found", err)
	case errors.Is(err, services.ErrReferrerNotFound):
		return utils.NotFoundError("Referral code not found", err)
	case errors.Is(err, services.ErrAlreadyTriggered):
		return utils.ConflictError("Reward already triggered", err)
	case errors.Is(err, services.ErrDuplicateReferee):
		return utils.ConflictError("User already has a referrer", err)
	case errors.Is(err, services.ErrFraudBlocked):
		return utils.NewAppError(http.StatusForbidden, "Blocked by fraud check", err)
	case errors.Is(err, services.ErrFraudCheckUnavailable):
		return utils.InternalError("Fraud check unavailable, please retry later", err)
	default:
		return utils.InternalError("Internal server error", err)
	}
}

// respondServiceError writes the mapped error. 5xx causes keep their detail
// out of the response body; the log carries it instead.
func respondServiceError(c *gin.Context, err error) {
	appErr := appErrorFor(err)
	if appErr.Code >= http.StatusInternalServerError {
		utils.LogError("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.Error(c, appErr.Code, appErr.Message, nil)
		return
	}
	utils.Error(c, appErr.Code, appErr.Message, appErr.Error())
}
