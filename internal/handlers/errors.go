package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/constants"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/identity"
	"github.com/yukikurage/board-collab-api/internal/middleware"
	"github.com/yukikurage/board-collab-api/internal/services"
)

var notFoundErrors = []error{
	services.ErrBoardNotFound,
	services.ErrInvitationNotFound,
	services.ErrMemberNotFound,
	services.ErrUserNotFound,
	services.ErrWorkspaceNotFound,
	services.ErrListNotFound,
	services.ErrCardNotFound,
	services.ErrCardMemberNotFound,
}

var validationErrors = []error{
	services.ErrInvalidBoardRole,
	services.ErrInvalidInviteeEmail,
	services.ErrInvalidPlatformRole,
	services.ErrNameRequired,
	services.ErrBoardTitleRequired,
	services.ErrWorkspaceNameRequired,
	services.ErrListTitleRequired,
	services.ErrCardTextRequired,
	services.ErrWorkspaceRequired,
	services.ErrInvalidDateRange,
	services.ErrCrossBoardMove,
	services.ErrNotOnBoard,
	identity.ErrInvalidIdentifier,
	identity.ErrInvalidEmail,
	identity.ErrInvalidPhone,
}

// respondServiceError maps a service error onto the API error envelope.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case isAny(err, notFoundErrors):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidResetToken):
		apierrors.Respond(c, http.StatusBadRequest, apierrors.ErrCodeInvalidToken, err.Error())
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.Respond(c, http.StatusNotFound, apierrors.ErrCodeInvalidToken, err.Error())
	case errors.Is(err, services.ErrAlreadyProcessed):
		apierrors.Conflict(c, apierrors.ErrCodeAlreadyProcessed, err.Error())
	case errors.Is(err, services.ErrInvitationExpired):
		apierrors.Gone(c, apierrors.ErrCodeInvitationExpired, err.Error())
	case errors.Is(err, services.ErrEmailMismatch):
		apierrors.Respond(c, http.StatusForbidden, apierrors.ErrCodeEmailMismatch, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, apierrors.ErrCodeAlreadyMember, err.Error())
	case errors.Is(err, services.ErrDuplicateInvitation):
		apierrors.Conflict(c, apierrors.ErrCodeDuplicateInvitation, err.Error())
	case errors.Is(err, services.ErrCannotRemoveOwner):
		apierrors.Respond(c, http.StatusBadRequest, apierrors.ErrCodeCannotRemoveOwner, err.Error())
	case errors.Is(err, services.ErrNameConflict):
		apierrors.Conflict(c, apierrors.ErrCodeNameConflict, err.Error())
	case errors.Is(err, services.ErrDuplicationFailed):
		_ = c.Error(err)
		apierrors.Respond(c, http.StatusInternalServerError, apierrors.ErrCodeDuplicationFailed, services.ErrDuplicationFailed.Error())
	case errors.Is(err, services.ErrIdentifierTaken),
		errors.Is(err, services.ErrAlreadyCardMember):
		apierrors.Conflict(c, "", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Respond(c, http.StatusUnauthorized, apierrors.ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case isAny(err, validationErrors):
		apierrors.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// currentUserID reads the authenticated user, responding 401 when absent.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

// parseIDParam parses a numeric path parameter, responding 400 when malformed.
func parseIDParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s ID", label))
		return 0, false
	}
	return id, true
}
