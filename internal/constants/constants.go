package constants

import "time"

const (
	// ContextKeyUserID is used both as the session key and the gin context key.
	ContextKeyUserID = "user_id"
	// ContextKeyBoard holds the board loaded by the board access middleware.
	ContextKeyBoard = "board"
	// ContextKeyBoardMember holds the caller's membership row, if any.
	ContextKeyBoardMember = "board_member"

	SessionCookieName = "board_session"
	SessionMaxAge     = 86400 * 7

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	DefaultInvitationTTL = 7 * 24 * time.Hour
	DefaultListColor     = "#ffffff"
	CopyTitleSuffix      = " (Copy)"
	EmailSendTimeout     = 10 * time.Second
	PasswordResetTTL     = 15 * time.Minute
)
