package services

import "errors"

// Errors shared by several services. Service-specific errors are declared next to the service.
var (
	ErrNotAuthorized     = errors.New("not authorized to perform this action")
	ErrBoardNotFound     = errors.New("board not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrMemberNotFound    = errors.New("board member not found")
	ErrAlreadyMember     = errors.New("user is already a member of this board")
	ErrCannotRemoveOwner = errors.New("the board owner cannot be removed")
	ErrInvalidBoardRole  = errors.New("role must be one of VIEWER, MEMBER, ADMIN")
)
