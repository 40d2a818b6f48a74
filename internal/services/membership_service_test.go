package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/board-collab-api/internal/models"
)

func TestMembershipService_AddMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	user := env.createUser(t, "User", "user@example.com")
	editor := env.createUser(t, "Editor", "editor@example.com")
	board := env.createBoard(t, owner, "Roadmap")
	env.addMember(t, board, editor, models.BoardRoleMember)

	_, err := env.members.AddMember(ctx, AddMemberInput{BoardID: board.ID, UserID: user.ID, ActorID: editor.ID})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	member, err := env.members.AddMember(ctx, AddMemberInput{BoardID: board.ID, UserID: user.ID, ActorID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, models.BoardRoleMember, member.Role)
	assert.Equal(t, "User", member.User.Name)

	_, err = env.members.AddMember(ctx, AddMemberInput{BoardID: board.ID, UserID: user.ID, ActorID: owner.ID, Role: models.BoardRoleAdmin})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = env.members.AddMember(ctx, AddMemberInput{BoardID: board.ID, UserID: owner.ID, ActorID: owner.ID})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = env.members.AddMember(ctx, AddMemberInput{BoardID: board.ID, UserID: user.ID + 100, ActorID: owner.ID})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.members.AddMember(ctx, AddMemberInput{BoardID: board.ID, UserID: user.ID, ActorID: owner.ID, Role: "OWNER"})
	assert.ErrorIs(t, err, ErrInvalidBoardRole)

	assert.Equal(t, int64(2), env.countMembers(t, board.ID))
}

func TestMembershipService_OwnerCannotBeRemoved(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	admin := env.createUser(t, "Admin", "admin@example.com")
	platformAdmin := env.createUser(t, "Platform", "platform@example.com")
	env.promote(t, platformAdmin, models.PlatformRoleSuperAdmin)
	board := env.createBoard(t, owner, "Roadmap")
	env.addMember(t, board, admin, models.BoardRoleAdmin)

	for _, actor := range []*models.User{owner, admin, platformAdmin} {
		err := env.members.RemoveMember(ctx, board.ID, owner.ID, actor.ID)
		assert.ErrorIs(t, err, ErrCannotRemoveOwner, actor.Name)
	}

	err := env.members.LeaveBoard(ctx, board.ID, owner.ID)
	assert.ErrorIs(t, err, ErrCannotRemoveOwner)
}

func TestMembershipService_RemoveMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	admin := env.createUser(t, "Admin", "admin@example.com")
	editor := env.createUser(t, "Editor", "editor@example.com")
	viewer := env.createUser(t, "Viewer", "viewer@example.com")
	board := env.createBoard(t, owner, "Roadmap")
	env.addMember(t, board, admin, models.BoardRoleAdmin)
	env.addMember(t, board, editor, models.BoardRoleMember)
	env.addMember(t, board, viewer, models.BoardRoleViewer)

	err := env.members.RemoveMember(ctx, board.ID, viewer.ID, editor.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, env.members.RemoveMember(ctx, board.ID, viewer.ID, admin.ID))

	err = env.members.RemoveMember(ctx, board.ID, viewer.ID, admin.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	require.NoError(t, env.members.LeaveBoard(ctx, board.ID, editor.ID))

	err = env.members.LeaveBoard(ctx, board.ID, editor.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	err = env.members.RemoveMember(ctx, board.ID+100, admin.ID, owner.ID)
	assert.ErrorIs(t, err, ErrBoardNotFound)

	assert.Equal(t, int64(1), env.countMembers(t, board.ID))
}

func TestMembershipService_UpdateRole(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	viewer := env.createUser(t, "Viewer", "viewer@example.com")
	board := env.createBoard(t, owner, "Roadmap")
	env.addMember(t, board, viewer, models.BoardRoleViewer)

	_, err := env.members.UpdateRole(ctx, board.ID, viewer.ID, models.BoardRoleAdmin, viewer.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	member, err := env.members.UpdateRole(ctx, board.ID, viewer.ID, models.BoardRoleAdmin, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BoardRoleAdmin, member.Role)

	stored, err := env.memberRepo.Find(ctx, board.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BoardRoleAdmin, stored.Role)

	// Promoted members can now administer.
	_, err = env.members.UpdateRole(ctx, board.ID, viewer.ID, models.BoardRoleMember, viewer.ID)
	require.NoError(t, err)

	_, err = env.members.UpdateRole(ctx, board.ID, owner.ID, models.BoardRoleViewer, owner.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = env.members.UpdateRole(ctx, board.ID, viewer.ID, "SUPERUSER", owner.ID)
	assert.ErrorIs(t, err, ErrInvalidBoardRole)
}

func TestMembershipService_ListMembers(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	first := env.createUser(t, "First", "first@example.com")
	second := env.createUser(t, "Second", "second@example.com")
	stranger := env.createUser(t, "Stranger", "stranger@example.com")
	board := env.createBoard(t, owner, "Roadmap")
	env.addMember(t, board, first, models.BoardRoleViewer)
	env.addMember(t, board, second, models.BoardRoleAdmin)

	roster, err := env.members.ListMembers(ctx, board.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, roster.Owner.ID)
	assert.Equal(t, string(models.BoardRoleViewer), roster.YourRole)
	require.Len(t, roster.Members, 2)

	names := []string{roster.Members[0].User.Name, roster.Members[1].User.Name}
	assert.ElementsMatch(t, []string{"First", "Second"}, names)

	roster, err = env.members.ListMembers(ctx, board.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, roster.YourRole)

	_, err = env.members.ListMembers(ctx, board.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
