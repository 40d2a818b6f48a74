package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/board-collab-api/internal/auth"
	"github.com/yukikurage/board-collab-api/internal/database"
	"github.com/yukikurage/board-collab-api/internal/dto"
	apierrors "github.com/yukikurage/board-collab-api/internal/errors"
	"github.com/yukikurage/board-collab-api/internal/mailer"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"github.com/yukikurage/board-collab-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type handlerTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.TokenManager
	auth   *services.AuthService
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(zerolog.Nop(), true))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(database.Models()...))

	log := zerolog.Nop()
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	sender := mailer.NewLogSender(log)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	policy := services.NewAccessPolicy(userRepo, boardRepo, memberRepo)
	activity := services.NewActivityRecorder(auditRepo, log)
	authService := services.NewAuthService(userRepo, sender, services.AuthSettings{FrontendURL: "https://boards.example.com"}, log)

	h := Handlers{
		Auth:      NewAuthHandler(authService, tokens),
		Admin:     NewAdminHandler(services.NewUserService(userRepo)),
		Workspace: NewWorkspaceHandler(services.NewWorkspaceService(workspaceRepo, boardRepo, userRepo)),
		Board: NewBoardHandler(
			services.NewBoardService(boardRepo, workspaceRepo, auditRepo, policy, activity),
			services.NewDuplicationService(boardRepo, workspaceRepo, userRepo, policy, activity, log),
		),
		Content: NewContentHandler(services.NewContentService(
			repository.NewContentRepository(db), boardRepo, userRepo, policy, sender, log,
		)),
		Invitation: NewInvitationHandler(services.NewInvitationService(
			repository.NewInvitationRepository(db),
			memberRepo,
			userRepo,
			policy,
			sender,
			activity,
			services.InvitationSettings{FrontendURL: "https://boards.example.com"},
			log,
		)),
		Member: NewMemberHandler(services.NewMembershipService(memberRepo, userRepo, policy, activity)),
	}

	router := NewRouter(h, RouterOptions{
		SessionStore:   cookie.NewStore([]byte("secret")),
		Tokens:         tokens,
		Policy:         policy,
		AllowedOrigins: []string{"http://localhost:3000"},
		Log:            log,
	})

	return &handlerTestEnv{
		db:     db,
		router: router,
		tokens: tokens,
		auth:   authService,
	}
}

// do sends a JSON request, authenticated with token when it is not empty.
func (env *handlerTestEnv) do(t *testing.T, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// register signs a user up through the API and returns the user and token.
func (env *handlerTestEnv) register(t *testing.T, name, identifier string) (dto.UserDTO, string) {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":       name,
		"identifier": identifier,
		"password":   "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response dto.AuthResponse
	decode(t, w, &response)
	return response.User, response.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func requireAPIError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())

	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	require.Equal(t, code, apiErr.Code)
}
