package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/board-collab-api/internal/mailer"
	"github.com/yukikurage/board-collab-api/internal/models"
)

func TestContentService_ListsAppendInOrder(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	viewer := env.createUser(t, "Viewer", "viewer@example.com")
	board := env.createBoard(t, owner, "Roadmap")
	env.addMember(t, board, viewer, models.BoardRoleViewer)

	for i, title := range []string{"Todo", "Doing", "Done"} {
		list, err := env.content.CreateList(ctx, CreateListInput{BoardID: board.ID, UserID: owner.ID, Title: title})
		require.NoError(t, err)
		assert.Equal(t, i, list.Position)
	}

	_, err := env.content.CreateList(ctx, CreateListInput{BoardID: board.ID, UserID: viewer.ID, Title: "Nope"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = env.content.CreateList(ctx, CreateListInput{BoardID: board.ID, UserID: owner.ID, Title: "  "})
	assert.ErrorIs(t, err, ErrListTitleRequired)

	lists, err := env.content.GetLists(ctx, board.ID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, lists, 3)
	assert.Equal(t, "Doing", lists[1].Title)
}

func TestContentService_UpdateAndDeleteList(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	fixture := seedTodoDone(t, env, owner)

	title := "Backlog"
	color := "#00ff00"
	list, err := env.content.UpdateList(ctx, fixture.todo.ID, owner.ID, UpdateListInput{Title: &title, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "Backlog", list.Title)
	assert.Equal(t, "#00ff00", list.Color)

	require.NoError(t, env.content.DeleteList(ctx, fixture.todo.ID, owner.ID))

	var cards int64
	require.NoError(t, env.db.Model(&models.Card{}).Where("list_id = ?", fixture.todo.ID).Count(&cards).Error)
	assert.Zero(t, cards)

	_, err = env.content.UpdateList(ctx, fixture.todo.ID, owner.ID, UpdateListInput{Title: &title})
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestContentService_CardLifecycle(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	fixture := seedTodoDone(t, env, owner)

	assert.Equal(t, 0, fixture.cardA.Position)
	assert.Equal(t, 1, fixture.cardB.Position)

	_, err := env.content.CreateCard(ctx, CreateCardInput{ListID: fixture.todo.ID, UserID: owner.ID, Text: ""})
	assert.ErrorIs(t, err, ErrCardTextRequired)

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = env.content.CreateCard(ctx, CreateCardInput{ListID: fixture.todo.ID, UserID: owner.ID, Text: "C", StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	text := "A revised"
	attachments := []models.Attachment{{Name: "notes.txt", URL: "https://files.example.com/notes.txt"}}
	card, err := env.content.UpdateCard(ctx, fixture.cardA.ID, owner.ID, UpdateCardInput{
		Text:        &text,
		ClearDates:  true,
		Attachments: &attachments,
	})
	require.NoError(t, err)
	assert.Equal(t, "A revised", card.Text)
	assert.Nil(t, card.StartDate)
	assert.Nil(t, card.EndDate)
	require.Len(t, card.Attachments, 1)
	assert.Equal(t, "notes.txt", card.Attachments[0].Name)

	require.NoError(t, env.content.DeleteCard(ctx, fixture.cardB.ID, owner.ID))
	err = env.content.DeleteCard(ctx, fixture.cardB.ID, owner.ID)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestContentService_MoveCard(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	fixture := seedTodoDone(t, env, owner)
	other := env.createBoard(t, owner, "Other")
	foreignList, err := env.content.CreateList(ctx, CreateListInput{BoardID: other.ID, UserID: owner.ID, Title: "Elsewhere"})
	require.NoError(t, err)

	moved, err := env.content.MoveCard(ctx, fixture.cardA.ID, owner.ID, fixture.done.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, fixture.done.ID, moved.ListID)

	lists, err := env.content.GetLists(ctx, fixture.board.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, lists[0].Cards, 1)
	assert.Equal(t, "B", lists[0].Cards[0].Text)
	assert.Equal(t, 0, lists[0].Cards[0].Position)
	require.Len(t, lists[1].Cards, 1)
	assert.Equal(t, "A", lists[1].Cards[0].Text)

	// Reorder within a list.
	_, err = env.content.MoveCard(ctx, fixture.cardB.ID, owner.ID, fixture.done.ID, 5)
	require.NoError(t, err)
	lists, err = env.content.GetLists(ctx, fixture.board.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, lists[1].Cards, 2)
	assert.Equal(t, "A", lists[1].Cards[0].Text)
	assert.Equal(t, "B", lists[1].Cards[1].Text)
	assert.Equal(t, 1, lists[1].Cards[1].Position)

	_, err = env.content.MoveCard(ctx, fixture.cardB.ID, owner.ID, fixture.done.ID, 0)
	require.NoError(t, err)
	lists, err = env.content.GetLists(ctx, fixture.board.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", lists[1].Cards[0].Text)
	assert.Equal(t, "A", lists[1].Cards[1].Text)

	_, err = env.content.MoveCard(ctx, fixture.cardA.ID, owner.ID, foreignList.ID, 0)
	assert.ErrorIs(t, err, ErrCrossBoardMove)
}

func TestContentService_CardMembers(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	helper := env.createUser(t, "Helper", "helper@example.com")
	stranger := env.createUser(t, "Stranger", "stranger@example.com")
	fixture := seedTodoDone(t, env, owner)
	env.addMember(t, fixture.board, helper, models.BoardRoleViewer)

	member, err := env.content.AddCardMember(ctx, fixture.cardA.ID, helper.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now(), member.AddedAt)

	env.sender.AssertCalled(t, "Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "helper@example.com" && msg.Subject == "You've been added to a card: A"
	}))

	_, err = env.content.AddCardMember(ctx, fixture.cardA.ID, helper.ID, owner.ID)
	assert.ErrorIs(t, err, ErrAlreadyCardMember)

	_, err = env.content.AddCardMember(ctx, fixture.cardA.ID, stranger.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotOnBoard)

	// Viewers can read assignments but not change them.
	members, err := env.content.ListCardMembers(ctx, fixture.cardA.ID, helper.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Helper", members[0].User.Name)

	err = env.content.RemoveCardMember(ctx, fixture.cardA.ID, helper.ID, helper.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, env.content.RemoveCardMember(ctx, fixture.cardA.ID, helper.ID, owner.ID))
	err = env.content.RemoveCardMember(ctx, fixture.cardA.ID, helper.ID, owner.ID)
	assert.ErrorIs(t, err, ErrCardMemberNotFound)
}

func TestContentService_CardMemberEmailFailureIsIgnored(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.failingSender(errors.New("smtp: timeout"))
	ctx := context.Background()

	owner := env.createUser(t, "Owner", "owner@example.com")
	helper := env.createUser(t, "Helper", "helper@example.com")
	phoneOnly := env.createPhoneUser(t, "Phone", "+15550199")
	fixture := seedTodoDone(t, env, owner)
	env.addMember(t, fixture.board, helper, models.BoardRoleMember)
	env.addMember(t, fixture.board, phoneOnly, models.BoardRoleMember)

	_, err := env.content.AddCardMember(ctx, fixture.cardA.ID, helper.ID, owner.ID)
	require.NoError(t, err)

	// No address, no attempt.
	_, err = env.content.AddCardMember(ctx, fixture.cardA.ID, phoneOnly.ID, owner.ID)
	require.NoError(t, err)

	env.sender.AssertNumberOfCalls(t, "Send", 1)
}
