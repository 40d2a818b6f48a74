package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/board-collab-api/internal/constants"
	"github.com/yukikurage/board-collab-api/internal/metrics"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNameConflict      = errors.New("a board with this title already exists in the workspace")
	ErrDuplicationFailed = errors.New("failed to duplicate board")
	ErrWorkspaceRequired = errors.New("workspace is required")
)

// DuplicationService copies a board with its lists, cards and card members.
type DuplicationService struct {
	boardRepo     repository.BoardRepository
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	policy        *AccessPolicy
	activity      *ActivityRecorder
	log           zerolog.Logger
	now           func() time.Time
}

// NewDuplicationService creates a new DuplicationService.
func NewDuplicationService(
	boardRepo repository.BoardRepository,
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	policy *AccessPolicy,
	activity *ActivityRecorder,
	log zerolog.Logger,
) *DuplicationService {
	return &DuplicationService{
		boardRepo:     boardRepo,
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		policy:        policy,
		activity:      activity,
		log:           log,
		now:           time.Now,
	}
}

// DuplicateInput represents a board copy request.
type DuplicateInput struct {
	SourceBoardID uint64
	ActorID       uint64
	// TargetOwnerID defaults to ActorID.
	TargetOwnerID     uint64
	TargetWorkspaceID *uint64
	// Title defaults to the source title with " (Copy)" appended.
	Title *string
	// CheckNameConflict rejects a title already used in the target workspace.
	CheckNameConflict bool
}

// Duplicate copies the source board for the target owner.
func (s *DuplicationService) Duplicate(ctx context.Context, input DuplicateInput) (*models.Board, error) {
	decision, err := s.policy.RequireAccess(ctx, input.ActorID, input.SourceBoardID)
	if err != nil {
		return nil, err
	}
	source := decision.Board

	ownerID := input.TargetOwnerID
	if ownerID == 0 {
		ownerID = input.ActorID
	}
	if ownerID != input.ActorID {
		if !decision.User.Role.IsPlatformAdmin() {
			return nil, ErrNotAuthorized
		}
		if _, err := s.userRepo.FindByID(ctx, ownerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to find target owner: %w", err)
		}
	}

	if input.TargetWorkspaceID != nil {
		workspace, err := s.workspaceRepo.FindByID(ctx, *input.TargetWorkspaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWorkspaceNotFound
			}
			return nil, fmt.Errorf("failed to find workspace: %w", err)
		}
		if workspace.OwnerID != ownerID {
			return nil, ErrNotAuthorized
		}
	} else if input.CheckNameConflict {
		return nil, ErrWorkspaceRequired
	}

	title := source.Title + constants.CopyTitleSuffix
	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		title = strings.TrimSpace(*input.Title)
	}

	lists, err := s.boardRepo.LoadContent(ctx, source.ID)
	if err != nil {
		metrics.Duplication(metrics.ResultFailure)
		return nil, fmt.Errorf("%w: %w", ErrDuplicationFailed, err)
	}

	board := &models.Board{
		Title:       title,
		Description: source.Description,
		OwnerID:     ownerID,
		WorkspaceID: input.TargetWorkspaceID,
	}
	copies := cloneLists(lists, s.now())

	if err := s.boardRepo.CreateCopy(ctx, board, copies, input.CheckNameConflict); err != nil {
		metrics.Duplication(metrics.ResultFailure)
		if errors.Is(err, repository.ErrBoardTitleTaken) {
			return nil, ErrNameConflict
		}
		s.log.Error().Err(err).
			Uint64("source_board_id", source.ID).
			Msg("board duplication rolled back")
		return nil, fmt.Errorf("%w: %w", ErrDuplicationFailed, err)
	}

	metrics.Duplication(metrics.ResultSuccess)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    input.ActorID,
		BoardID:    source.ID,
		Action:     models.AuditBoardDuplicated,
		TargetType: "board",
		TargetID:   board.ID,
		Metadata:   map[string]interface{}{"title": board.Title, "lists": len(copies)},
	})

	return board, nil
}

// cloneLists returns unsaved copies of lists and their cards, keeping order,
// positions and card members.
func cloneLists(lists []models.List, now time.Time) []models.List {
	copies := make([]models.List, len(lists))
	for i, list := range lists {
		copies[i] = models.List{
			Title:    list.Title,
			Color:    list.Color,
			Position: list.Position,
		}
		if len(list.Cards) == 0 {
			continue
		}

		cards := make([]models.Card, len(list.Cards))
		for j, card := range list.Cards {
			cards[j] = models.Card{
				Text:        card.Text,
				Description: card.Description,
				Position:    card.Position,
				StartDate:   copyTime(card.StartDate),
				EndDate:     copyTime(card.EndDate),
				Attachments: append(datatypes.JSONSlice[models.Attachment]{}, card.Attachments...),
			}
			for _, member := range card.Members {
				cards[j].Members = append(cards[j].Members, models.CardMember{
					UserID:  member.UserID,
					AddedAt: now,
				})
			}
		}
		copies[i].Cards = cards
	}
	return copies
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
