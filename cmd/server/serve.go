package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/board-collab-api/internal/auth"
	"github.com/yukikurage/board-collab-api/internal/config"
	"github.com/yukikurage/board-collab-api/internal/constants"
	"github.com/yukikurage/board-collab-api/internal/database"
	"github.com/yukikurage/board-collab-api/internal/handlers"
	"github.com/yukikurage/board-collab-api/internal/mailer"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"github.com/yukikurage/board-collab-api/internal/services"
	"gorm.io/gorm"
)

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(a.cfg.GinMode)

	return a.withDB(func(db *gorm.DB) error {
		if err := database.Migrate(ctx, db, a.log); err != nil {
			return err
		}

		store, err := newSessionStore(a.cfg)
		if err != nil {
			return err
		}

		tokens := auth.NewTokenManager(a.cfg.JWTSecret, a.cfg.JWTTTL)
		policy := services.NewAccessPolicy(
			repository.NewUserRepository(db),
			repository.NewBoardRepository(db),
			repository.NewMemberRepository(db),
		)

		router := handlers.NewRouter(a.buildHandlers(db, policy, tokens), handlers.RouterOptions{
			SessionStore:   store,
			Tokens:         tokens,
			Policy:         policy,
			AllowedOrigins: a.cfg.AllowedOrigins,
			Log:            a.log,
		})

		srv := &http.Server{
			Addr:              a.cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info().Str("addr", a.cfg.Addr).Msg("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
}

// buildHandlers wires repositories into services and services into handlers.
func (a *app) buildHandlers(db *gorm.DB, policy *services.AccessPolicy, tokens *auth.TokenManager) handlers.Handlers {
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	contentRepo := repository.NewContentRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	sender := a.mailSender()
	activity := services.NewActivityRecorder(auditRepo, a.log)

	authService := services.NewAuthService(userRepo, sender, services.AuthSettings{FrontendURL: a.cfg.FrontendURL}, a.log)
	userService := services.NewUserService(userRepo)
	workspaceService := services.NewWorkspaceService(workspaceRepo, boardRepo, userRepo)
	boardService := services.NewBoardService(boardRepo, workspaceRepo, auditRepo, policy, activity)
	contentService := services.NewContentService(contentRepo, boardRepo, userRepo, policy, sender, a.log)
	invitationService := services.NewInvitationService(
		invitationRepo,
		memberRepo,
		userRepo,
		policy,
		sender,
		activity,
		services.InvitationSettings{TTL: a.cfg.InvitationTTL, FrontendURL: a.cfg.FrontendURL},
		a.log,
	)
	membershipService := services.NewMembershipService(memberRepo, userRepo, policy, activity)
	duplicationService := services.NewDuplicationService(boardRepo, workspaceRepo, userRepo, policy, activity, a.log)

	return handlers.Handlers{
		Auth:       handlers.NewAuthHandler(authService, tokens),
		Admin:      handlers.NewAdminHandler(userService),
		Workspace:  handlers.NewWorkspaceHandler(workspaceService),
		Board:      handlers.NewBoardHandler(boardService, duplicationService),
		Content:    handlers.NewContentHandler(contentService),
		Invitation: handlers.NewInvitationHandler(invitationService),
		Member:     handlers.NewMemberHandler(membershipService),
	}
}

func (a *app) mailSender() mailer.Sender {
	if a.cfg.SMTPHost == "" {
		a.log.Warn().Msg("SMTP_HOST not set, emails will be logged instead of sent")
		return mailer.NewLogSender(a.log)
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:      a.cfg.SMTPHost,
		Port:      a.cfg.SMTPPort,
		Username:  a.cfg.SMTPUsername,
		Password:  a.cfg.SMTPPassword,
		FromEmail: a.cfg.FromEmail,
		FromName:  a.cfg.FromName,
		Timeout:   constants.EmailSendTimeout,
	})
}

// newSessionStore uses Redis when REDIS_ADDR is set and signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisAddr != "" {
		// Pool of 10 connections, default user, no password
		rs, err := redisStore.NewStore(10, "tcp", cfg.RedisAddr, "", []byte(cfg.SessionSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
