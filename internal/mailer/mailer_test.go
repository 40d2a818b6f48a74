package mailer

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func TestBuildInvitation(t *testing.T) {
	msg := BuildInvitation("http://localhost:3000/", InvitationEmail{
		To:          "u2@example.com",
		InviterName: "Alice",
		BoardID:     12,
		BoardTitle:  "Sprint Planning",
		Role:        "MEMBER",
		Token:       "tok-123",
		ExpiresAt:   time.Now().Add(7 * 24 * time.Hour),
	})

	assert.Equal(t, "u2@example.com", msg.To)
	assert.Equal(t, "You're invited to collaborate on 'Sprint Planning'", msg.Subject)
	assert.Contains(t, msg.Body, "http://localhost:3000/board/12/invite/tok-123")
	assert.Contains(t, msg.Body, "expires in 7 days")
	assert.Contains(t, msg.Body, "as member")
}

func TestBuildCardAssignment(t *testing.T) {
	msg := BuildCardAssignment(CardAssignmentEmail{
		To:         "bob@example.com",
		MemberName: "Bob",
		AddedBy:    "Alice",
		CardText:   "Write release notes",
		BoardTitle: "Launch",
	})

	assert.Equal(t, "You've been added to a card: Write release notes", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Bob")
	assert.Contains(t, msg.Body, `"Launch"`)
}

func TestBuildPasswordReset(t *testing.T) {
	msg := BuildPasswordReset("https://boards.example.com/", PasswordResetEmail{
		To:        "alice@example.com",
		Name:      "Alice",
		Token:     "a b&c",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	})

	assert.Equal(t, "Reset your password", msg.Subject)
	assert.Contains(t, msg.Body, "https://boards.example.com/reset-password?token=a+b%26c")
	assert.Contains(t, msg.Body, "expires in 15 minutes")
}

func TestBuildWelcome(t *testing.T) {
	msg := BuildWelcome(WelcomeEmail{To: "alice@example.com", Name: "Alice", FrontendURL: "https://boards.example.com/"})

	assert.Equal(t, "Welcome to Boards!", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Alice")
	assert.Contains(t, msg.Body, "https://boards.example.com\n")
}

func TestSMTPSender_Send(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "mailer",
		Password:  "secret",
		FromEmail: "noreply@example.com",
		FromName:  "Boards",
	})

	var raw bytes.Buffer
	var hasDeadline bool
	sender.deliver = func(ctx context.Context, m *gomail.Msg) error {
		_, hasDeadline = ctx.Deadline()
		_, err := m.WriteTo(&raw)
		return err
	}

	err := sender.Send(context.Background(), Message{To: "u2@example.com", Subject: "Hi", Body: "line1\nline2"})
	require.NoError(t, err)

	assert.True(t, hasDeadline)
	out := raw.String()
	assert.Contains(t, out, "u2@example.com")
	assert.Contains(t, out, "noreply@example.com")
	assert.Contains(t, out, "Boards")
	assert.Contains(t, out, "Subject: Hi")
	assert.Contains(t, out, "line1")
	assert.Contains(t, out, "line2")
}

func TestSMTPSender_SendRejectsBadRecipient(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 25, FromEmail: "noreply@example.com"})
	called := false
	sender.deliver = func(context.Context, *gomail.Msg) error {
		called = true
		return nil
	}

	err := sender.Send(context.Background(), Message{To: "not an address"})
	require.Error(t, err)
	assert.False(t, called)
}

func TestSMTPSender_SendWrapsFailure(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 25, FromEmail: "noreply@example.com"})
	sender.deliver = func(context.Context, *gomail.Msg) error {
		return errors.New("connection refused")
	}

	err := sender.Send(context.Background(), Message{To: "u2@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u2@example.com")
}

func TestSMTPSender_SendHonoursCancelledContext(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 25, FromEmail: "noreply@example.com"})
	called := false
	sender.deliver = func(context.Context, *gomail.Msg) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, Message{To: "u2@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSMTPSender_SendGivesUpOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	// Accept connections and never send the SMTP greeting.
	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	port := ln.Addr().(*net.TCPAddr).Port
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: port, FromEmail: "noreply@example.com", Timeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = sender.Send(ctx, Message{To: "u2@example.com", Subject: "Hi", Body: "hello"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(zerolog.New(&buf))

	require.NoError(t, sender.Send(context.Background(), Message{To: "u2@example.com", Subject: "Hello"}))
	assert.Contains(t, buf.String(), `"to":"u2@example.com"`)
	assert.Contains(t, buf.String(), `"subject":"Hello"`)
}
