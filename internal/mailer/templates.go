package mailer

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// InvitationEmail describes a board invitation notice.
type InvitationEmail struct {
	To          string
	InviterName string
	BoardID     uint64
	BoardTitle  string
	Role        string
	Token       string
	ExpiresAt   time.Time
}

// InvitationLink builds the accept link the frontend serves for a token.
func InvitationLink(frontendURL string, boardID uint64, token string) string {
	return fmt.Sprintf("%s/board/%d/invite/%s", strings.TrimRight(frontendURL, "/"), boardID, token)
}

// BuildInvitation renders the invitation message.
func BuildInvitation(frontendURL string, e InvitationEmail) Message {
	link := InvitationLink(frontendURL, e.BoardID, e.Token)
	days := int(time.Until(e.ExpiresAt).Hours()/24 + 0.5)
	if days < 1 {
		days = 1
	}

	body := fmt.Sprintf(`Hello,

%s has invited you to collaborate on the board "%s" as %s.

Accept the invitation here:
%s

This invitation expires in %d days (%s).

If you were not expecting this invitation, you can ignore this email.
`, e.InviterName, e.BoardTitle, strings.ToLower(e.Role), link, days, e.ExpiresAt.UTC().Format(time.RFC1123))

	return Message{
		To:      e.To,
		Subject: fmt.Sprintf("You're invited to collaborate on '%s'", e.BoardTitle),
		Body:    body,
	}
}

// CardAssignmentEmail describes a "you were added to a card" notice.
type CardAssignmentEmail struct {
	To         string
	MemberName string
	AddedBy    string
	CardText   string
	BoardTitle string
}

// BuildCardAssignment renders the card assignment message.
func BuildCardAssignment(e CardAssignmentEmail) Message {
	body := fmt.Sprintf(`Hello %s,

You have been added to a card in the board "%s".

Card: %s
Added by: %s

You can now view and collaborate on this card.
`, e.MemberName, e.BoardTitle, e.CardText, e.AddedBy)

	return Message{
		To:      e.To,
		Subject: fmt.Sprintf("You've been added to a card: %s", e.CardText),
		Body:    body,
	}
}

// WelcomeEmail describes the message sent after registration.
type WelcomeEmail struct {
	To          string
	Name        string
	FrontendURL string
}

// BuildWelcome renders the welcome message.
func BuildWelcome(e WelcomeEmail) Message {
	body := fmt.Sprintf(`Hello %s,

Your account has been created. You can now create boards and invite collaborators:
%s

Welcome aboard!
`, e.Name, strings.TrimRight(e.FrontendURL, "/"))

	return Message{
		To:      e.To,
		Subject: "Welcome to Boards!",
		Body:    body,
	}
}

// PasswordResetEmail describes a password reset notice.
type PasswordResetEmail struct {
	To        string
	Name      string
	Token     string
	ExpiresAt time.Time
}

// PasswordResetLink builds the reset link the frontend serves for a token.
func PasswordResetLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(frontendURL, "/"), url.QueryEscape(token))
}

// BuildPasswordReset renders the password reset message.
func BuildPasswordReset(frontendURL string, e PasswordResetEmail) Message {
	minutes := int(time.Until(e.ExpiresAt).Minutes() + 0.5)
	if minutes < 1 {
		minutes = 1
	}

	body := fmt.Sprintf(`Hello %s,

We received a request to reset your password. Choose a new one here:
%s

The link expires in %d minutes. If you did not ask for a reset, you can ignore this email.
`, e.Name, PasswordResetLink(frontendURL, e.Token), minutes)

	return Message{
		To:      e.To,
		Subject: "Reset your password",
		Body:    body,
	}
}
