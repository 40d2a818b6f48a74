package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/board-collab-api/internal/constants"
	"github.com/yukikurage/board-collab-api/internal/mailer"
	"github.com/yukikurage/board-collab-api/internal/metrics"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrListNotFound       = errors.New("list not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrListTitleRequired  = errors.New("list title is required")
	ErrCardTextRequired   = errors.New("card text is required")
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
	ErrCrossBoardMove     = errors.New("cards can only move between lists of the same board")
	ErrNotOnBoard         = errors.New("user does not have access to this board")
	ErrAlreadyCardMember  = errors.New("user is already assigned to this card")
	ErrCardMemberNotFound = errors.New("user is not assigned to this card")
)

const emailKindCardAssignment = "card_assignment"

// ContentService manages lists, cards and card assignments.
type ContentService struct {
	contentRepo repository.ContentRepository
	boardRepo   repository.BoardRepository
	userRepo    repository.UserRepository
	policy      *AccessPolicy
	sender      mailer.Sender
	log         zerolog.Logger
	now         func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(
	contentRepo repository.ContentRepository,
	boardRepo repository.BoardRepository,
	userRepo repository.UserRepository,
	policy *AccessPolicy,
	sender mailer.Sender,
	log zerolog.Logger,
) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		boardRepo:   boardRepo,
		userRepo:    userRepo,
		policy:      policy,
		sender:      sender,
		log:         log,
		now:         time.Now,
	}
}

// CreateListInput represents a new list.
type CreateListInput struct {
	BoardID uint64
	UserID  uint64
	Title   string
	Color   string
}

// UpdateListInput represents a partial list update.
type UpdateListInput struct {
	Title    *string
	Color    *string
	Position *int
}

// CreateCardInput represents a new card.
type CreateCardInput struct {
	ListID      uint64
	UserID      uint64
	Text        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Attachments []models.Attachment
}

// UpdateCardInput represents a partial card update.
type UpdateCardInput struct {
	Text        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	ClearDates  bool
	Attachments *[]models.Attachment
}

// CreateList appends a list to the board.
func (s *ContentService) CreateList(ctx context.Context, input CreateListInput) (*models.List, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrListTitleRequired
	}

	if _, err := s.policy.RequireEdit(ctx, input.UserID, input.BoardID); err != nil {
		return nil, err
	}

	maxPosition, err := s.contentRepo.MaxListPosition(ctx, input.BoardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get list position: %w", err)
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = constants.DefaultListColor
	}

	list := &models.List{
		BoardID:  input.BoardID,
		Title:    title,
		Color:    color,
		Position: maxPosition + 1,
	}
	if err := s.contentRepo.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return list, nil
}

// GetLists returns the board's lists with their cards.
func (s *ContentService) GetLists(ctx context.Context, boardID, userID uint64) ([]models.List, error) {
	if _, err := s.policy.RequireAccess(ctx, userID, boardID); err != nil {
		return nil, err
	}

	lists, err := s.boardRepo.LoadContent(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	return lists, nil
}

// UpdateList changes a list's title, color or position.
func (s *ContentService) UpdateList(ctx context.Context, listID, userID uint64, input UpdateListInput) (*models.List, error) {
	list, err := s.editableList(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrListTitleRequired
		}
		list.Title = title
	}
	if input.Color != nil && strings.TrimSpace(*input.Color) != "" {
		list.Color = strings.TrimSpace(*input.Color)
	}
	if input.Position != nil && *input.Position >= 0 {
		list.Position = *input.Position
	}

	if err := s.contentRepo.UpdateList(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return list, nil
}

// DeleteList removes a list with its cards.
func (s *ContentService) DeleteList(ctx context.Context, listID, userID uint64) error {
	list, err := s.editableList(ctx, listID, userID)
	if err != nil {
		return err
	}

	if err := s.contentRepo.DeleteList(ctx, list.ID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return nil
}

// CreateCard appends a card to the list.
func (s *ContentService) CreateCard(ctx context.Context, input CreateCardInput) (*models.Card, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrCardTextRequired
	}
	if err := validateDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	list, err := s.editableList(ctx, input.ListID, input.UserID)
	if err != nil {
		return nil, err
	}

	maxPosition, err := s.contentRepo.MaxCardPosition(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card position: %w", err)
	}

	card := &models.Card{
		ListID:      list.ID,
		Text:        text,
		Description: strings.TrimSpace(input.Description),
		Position:    maxPosition + 1,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Attachments: datatypes.JSONSlice[models.Attachment](input.Attachments),
	}
	if card.Attachments == nil {
		card.Attachments = datatypes.JSONSlice[models.Attachment]{}
	}
	if err := s.contentRepo.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return card, nil
}

// UpdateCard changes a card's fields.
func (s *ContentService) UpdateCard(ctx context.Context, cardID, userID uint64, input UpdateCardInput) (*models.Card, error) {
	card, _, err := s.editableCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			return nil, ErrCardTextRequired
		}
		card.Text = text
	}
	if input.Description != nil {
		card.Description = strings.TrimSpace(*input.Description)
	}
	if input.ClearDates {
		card.StartDate = nil
		card.EndDate = nil
	}
	if input.StartDate != nil {
		card.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		card.EndDate = input.EndDate
	}
	if err := validateDates(card.StartDate, card.EndDate); err != nil {
		return nil, err
	}
	if input.Attachments != nil {
		card.Attachments = datatypes.JSONSlice[models.Attachment](*input.Attachments)
	}

	if err := s.contentRepo.UpdateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	return card, nil
}

// MoveCard moves a card to position in toListID, which must be on the same board.
func (s *ContentService) MoveCard(ctx context.Context, cardID, userID, toListID uint64, position int) (*models.Card, error) {
	card, _, err := s.editableCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	if toListID != card.ListID {
		target, err := s.findList(ctx, toListID)
		if err != nil {
			return nil, err
		}
		if target.BoardID != card.List.BoardID {
			return nil, ErrCrossBoardMove
		}
	}

	if err := s.contentRepo.MoveCard(ctx, card, toListID, position); err != nil {
		return nil, fmt.Errorf("failed to move card: %w", err)
	}
	return card, nil
}

// DeleteCard removes a card.
func (s *ContentService) DeleteCard(ctx context.Context, cardID, userID uint64) error {
	card, _, err := s.editableCard(ctx, cardID, userID)
	if err != nil {
		return err
	}

	if err := s.contentRepo.DeleteCard(ctx, card.ID); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// AddCardMember assigns memberID to the card and emails them best effort.
// The assignee must have access to the board.
func (s *ContentService) AddCardMember(ctx context.Context, cardID, memberID, actorID uint64) (*models.CardMember, error) {
	card, decision, err := s.editableCard(ctx, cardID, actorID)
	if err != nil {
		return nil, err
	}

	assignee, err := s.policy.ResolveBoard(ctx, memberID, decision.Board)
	if err != nil {
		return nil, err
	}
	if !assignee.CanAccess() {
		return nil, ErrNotOnBoard
	}

	member := &models.CardMember{
		CardID:  card.ID,
		UserID:  memberID,
		AddedAt: s.now(),
	}
	if err := s.contentRepo.AddCardMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrCardMemberExists) {
			return nil, ErrAlreadyCardMember
		}
		return nil, fmt.Errorf("failed to add card member: %w", err)
	}
	member.User = *assignee.User

	s.notifyAssignee(ctx, card, decision, assignee.User)
	return member, nil
}

func (s *ContentService) notifyAssignee(ctx context.Context, card *models.Card, decision AccessDecision, assignee *models.User) {
	email := assignee.EmailAddress()
	if email == "" {
		metrics.EmailDelivery(emailKindCardAssignment, metrics.ResultSkipped)
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.EmailSendTimeout)
	defer cancel()

	msg := mailer.BuildCardAssignment(mailer.CardAssignmentEmail{
		To:         email,
		MemberName: assignee.Name,
		AddedBy:    decision.User.Name,
		CardText:   card.Text,
		BoardTitle: decision.Board.Title,
	})
	if err := s.sender.Send(sendCtx, msg); err != nil {
		metrics.EmailDelivery(emailKindCardAssignment, metrics.ResultFailure)
		s.log.Warn().Err(err).
			Uint64("card_id", card.ID).
			Uint64("user_id", assignee.ID).
			Msg("failed to send card assignment email")
		return
	}
	metrics.EmailDelivery(emailKindCardAssignment, metrics.ResultSuccess)
}

// RemoveCardMember unassigns memberID from the card.
func (s *ContentService) RemoveCardMember(ctx context.Context, cardID, memberID, actorID uint64) error {
	card, _, err := s.editableCard(ctx, cardID, actorID)
	if err != nil {
		return err
	}

	if err := s.contentRepo.RemoveCardMember(ctx, card.ID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCardMemberNotFound
		}
		return fmt.Errorf("failed to remove card member: %w", err)
	}
	return nil
}

// ListCardMembers returns the users assigned to a card.
func (s *ContentService) ListCardMembers(ctx context.Context, cardID, userID uint64) ([]models.CardMember, error) {
	card, err := s.findCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.policy.RequireAccess(ctx, userID, card.List.BoardID); err != nil {
		return nil, err
	}

	members, err := s.contentRepo.ListCardMembers(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card members: %w", err)
	}
	return members, nil
}

func (s *ContentService) editableList(ctx context.Context, listID, userID uint64) (*models.List, error) {
	list, err := s.findList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if _, err := s.policy.RequireEdit(ctx, userID, list.BoardID); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ContentService) editableCard(ctx context.Context, cardID, userID uint64) (*models.Card, AccessDecision, error) {
	card, err := s.findCard(ctx, cardID)
	if err != nil {
		return nil, AccessDecision{}, err
	}
	decision, err := s.policy.RequireEdit(ctx, userID, card.List.BoardID)
	if err != nil {
		return nil, AccessDecision{}, err
	}
	return card, decision, nil
}

func (s *ContentService) findList(ctx context.Context, listID uint64) (*models.List, error) {
	list, err := s.contentRepo.FindList(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to find list: %w", err)
	}
	return list, nil
}

func (s *ContentService) findCard(ctx context.Context, cardID uint64) (*models.Card, error) {
	card, err := s.contentRepo.FindCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to find card: %w", err)
	}
	return card, nil
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidDateRange
	}
	return nil
}
