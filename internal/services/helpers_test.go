package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/board-collab-api/internal/database"
	"github.com/yukikurage/board-collab-api/internal/mailer"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"github.com/yukikurage/board-collab-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time { return c.current }

func (c *testClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

type serviceTestEnv struct {
	db             *gorm.DB
	userRepo       repository.UserRepository
	boardRepo      repository.BoardRepository
	workspaceRepo  repository.WorkspaceRepository
	contentRepo    repository.ContentRepository
	invitationRepo repository.InvitationRepository
	memberRepo     repository.MemberRepository
	auditRepo      repository.AuditRepository

	sender *mockSender
	clock  *testClock

	policy      *AccessPolicy
	auth        *AuthService
	users       *UserService
	workspaces  *WorkspaceService
	boards      *BoardService
	content     *ContentService
	invitations *InvitationService
	members     *MembershipService
	duplication *DuplicationService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(zerolog.Nop(), true))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to ":memory:" would get its own empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db := newTestDB(t)
	log := zerolog.Nop()

	env := &serviceTestEnv{
		db:             db,
		userRepo:       repository.NewUserRepository(db),
		boardRepo:      repository.NewBoardRepository(db),
		workspaceRepo:  repository.NewWorkspaceRepository(db),
		contentRepo:    repository.NewContentRepository(db),
		invitationRepo: repository.NewInvitationRepository(db),
		memberRepo:     repository.NewMemberRepository(db),
		auditRepo:      repository.NewAuditRepository(db),
		sender:         &mockSender{},
		clock:          &testClock{current: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	env.sender.On("Send", mock.Anything, mock.Anything).Return(nil).Maybe()

	activity := NewActivityRecorder(env.auditRepo, log)
	env.policy = NewAccessPolicy(env.userRepo, env.boardRepo, env.memberRepo)
	env.auth = NewAuthService(env.userRepo, env.sender, AuthSettings{FrontendURL: "https://boards.example.com"}, log)
	env.auth.now = env.clock.Now
	env.users = NewUserService(env.userRepo)
	env.workspaces = NewWorkspaceService(env.workspaceRepo, env.boardRepo, env.userRepo)
	env.boards = NewBoardService(env.boardRepo, env.workspaceRepo, env.auditRepo, env.policy, activity)

	env.content = NewContentService(env.contentRepo, env.boardRepo, env.userRepo, env.policy, env.sender, log)
	env.content.now = env.clock.Now

	env.invitations = NewInvitationService(
		env.invitationRepo,
		env.memberRepo,
		env.userRepo,
		env.policy,
		env.sender,
		activity,
		InvitationSettings{FrontendURL: "https://boards.example.com"},
		log,
	)
	env.invitations.now = env.clock.Now

	env.members = NewMembershipService(env.memberRepo, env.userRepo, env.policy, activity)

	env.duplication = NewDuplicationService(env.boardRepo, env.workspaceRepo, env.userRepo, env.policy, activity, log)
	env.duplication.now = env.clock.Now

	return env
}

// failingSender makes every email delivery fail.
func (env *serviceTestEnv) failingSender(err error) {
	env.sender.ExpectedCalls = nil
	env.sender.On("Send", mock.Anything, mock.Anything).Return(err)
}

func (env *serviceTestEnv) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		PasswordHash: "not-a-real-hash",
		Role:         models.PlatformRoleUser,
	}
	if email != "" {
		user.Email = &email
	}
	require.NoError(t, env.userRepo.Create(context.Background(), user))
	return user
}

func (env *serviceTestEnv) createPhoneUser(t *testing.T, name, phone string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Phone:        &phone,
		PasswordHash: "not-a-real-hash",
		Role:         models.PlatformRoleUser,
	}
	require.NoError(t, env.userRepo.Create(context.Background(), user))
	return user
}

func (env *serviceTestEnv) promote(t *testing.T, user *models.User, role models.PlatformRole) {
	t.Helper()

	require.NoError(t, env.userRepo.UpdateRole(context.Background(), user.ID, role))
	user.Role = role
}

func (env *serviceTestEnv) createBoard(t *testing.T, owner *models.User, title string) *models.Board {
	t.Helper()

	board, err := env.boards.Create(context.Background(), CreateBoardInput{
		Title:   title,
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	return board
}

func (env *serviceTestEnv) addMember(t *testing.T, board *models.Board, user *models.User, role models.BoardRole) {
	t.Helper()

	require.NoError(t, env.memberRepo.Create(context.Background(), &models.BoardMember{
		BoardID: board.ID,
		UserID:  user.ID,
		Role:    role,
	}))
}

func (env *serviceTestEnv) countMembers(t *testing.T, boardID uint64) int64 {
	t.Helper()

	var count int64
	require.NoError(t, env.db.Model(&models.BoardMember{}).Where("board_id = ?", boardID).Count(&count).Error)
	return count
}

func (env *serviceTestEnv) reloadInvitation(t *testing.T, id uint64) *models.BoardInvitation {
	t.Helper()

	invitation, err := env.invitationRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return invitation
}

func paginationFirstPage() utils.PaginationParams {
	return utils.NewPaginationParams(1, 20)
}
