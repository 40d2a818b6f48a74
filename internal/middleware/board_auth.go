package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/constants"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/services"
)

// RequireBoardAccess checks if the user may view the board named by the :id parameter
func RequireBoardAccess(policy *services.AccessPolicy) gin.HandlerFunc {
	return requireBoard(policy, services.AccessDecision.CanAccess, "You do not have access to this board")
}

// RequireBoardAdmin checks if the user may administer the board named by the :id parameter
func RequireBoardAdmin(policy *services.AccessPolicy) gin.HandlerFunc {
	return requireBoard(policy, services.AccessDecision.CanAdminister, "Only board administrators can perform this action")
}

func requireBoard(policy *services.AccessPolicy, allowed func(services.AccessDecision) bool, denied string) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid board ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		decision, err := policy.Resolve(c.Request.Context(), userID, boardID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrBoardNotFound):
				apierrors.NotFound(c, "Board not found")
			case errors.Is(err, services.ErrUserNotFound):
				apierrors.Unauthorized(c, "")
			default:
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		if !allowed(decision) {
			apierrors.Forbidden(c, denied)
			c.Abort()
			return
		}

		// Store board and membership in context
		c.Set(constants.ContextKeyBoard, decision.Board)
		c.Set(constants.ContextKeyBoardMember, decision.Member)
		c.Next()
	}
}
