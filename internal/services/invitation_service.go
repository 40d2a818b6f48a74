package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/board-collab-api/internal/constants"
	"github.com/yukikurage/board-collab-api/internal/identity"
	"github.com/yukikurage/board-collab-api/internal/mailer"
	"github.com/yukikurage/board-collab-api/internal/metrics"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"github.com/yukikurage/board-collab-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvalidToken        = errors.New("invalid invitation token")
	ErrAlreadyProcessed    = errors.New("invitation has already been processed")
	ErrInvitationExpired   = errors.New("invitation has expired")
	ErrEmailMismatch       = errors.New("this invitation was sent to a different email address")
	ErrDuplicateInvitation = errors.New("a pending invitation already exists for this email")
	ErrInvalidInviteeEmail = errors.New("invitee email is not a valid email address")
)

const emailKindInvitation = "invitation"

// InvitationSettings configures invitation issuance.
type InvitationSettings struct {
	TTL         time.Duration
	FrontendURL string
}

// InvitationService runs the invitation lifecycle: issue, resolve, accept, decline and cancel.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	memberRepo     repository.MemberRepository
	userRepo       repository.UserRepository
	policy         *AccessPolicy
	sender         mailer.Sender
	activity       *ActivityRecorder
	settings       InvitationSettings
	log            zerolog.Logger
	now            func() time.Time
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	policy *AccessPolicy,
	sender mailer.Sender,
	activity *ActivityRecorder,
	settings InvitationSettings,
	log zerolog.Logger,
) *InvitationService {
	if settings.TTL <= 0 {
		settings.TTL = constants.DefaultInvitationTTL
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		memberRepo:     memberRepo,
		userRepo:       userRepo,
		policy:         policy,
		sender:         sender,
		activity:       activity,
		settings:       settings,
		log:            log,
		now:            time.Now,
	}
}

// IssueInvitationInput represents an invitation request.
type IssueInvitationInput struct {
	BoardID      uint64
	InviterID    uint64
	InviteeEmail string
	Role         models.BoardRole
}

// InvitationDetails pairs an invitation with whether it is past expiry right now.
// Expired is computed and does not imply the stored status changed.
type InvitationDetails struct {
	Invitation *models.BoardInvitation
	Expired    bool
}

// Issue creates a pending invitation and emails the invitee.
// The email is best effort; a delivery failure does not fail the call.
func (s *InvitationService) Issue(ctx context.Context, input IssueInvitationInput) (*models.BoardInvitation, error) {
	role := input.Role
	if role == "" {
		role = models.BoardRoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidBoardRole
	}

	email, err := identity.ParseEmail(input.InviteeEmail)
	if err != nil {
		return nil, ErrInvalidInviteeEmail
	}

	decision, err := s.policy.RequireAdmin(ctx, input.InviterID, input.BoardID)
	if err != nil {
		return nil, err
	}
	board := decision.Board

	if err := s.ensureNotOnBoard(ctx, board, email); err != nil {
		return nil, err
	}

	if pending, err := s.invitationRepo.FindPending(ctx, board.ID, string(email)); err == nil {
		if !pending.IsExpired(s.now()) {
			return nil, ErrDuplicateInvitation
		}
		// A stale pending row still holds the pending key until it is expired.
		if err := s.expire(ctx, pending, decision.User.ID); err != nil && !errors.Is(err, ErrAlreadyProcessed) {
			return nil, err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	pendingKey := models.PendingInvitationKey(board.ID, string(email))
	invitation := &models.BoardInvitation{
		Token:        token,
		BoardID:      board.ID,
		InviterID:    decision.User.ID,
		InviteeEmail: string(email),
		Role:         role,
		Status:       models.InvitationStatusPending,
		PendingKey:   &pendingKey,
		ExpiresAt:    s.now().Add(s.settings.TTL),
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		if errors.Is(err, repository.ErrDuplicatePendingInvitation) {
			return nil, ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	invitation.Board = *board
	invitation.Inviter = *decision.User

	metrics.InvitationOutcome(metrics.OutcomeIssued)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    decision.User.ID,
		BoardID:    board.ID,
		Action:     models.AuditInvitationIssued,
		TargetType: "invitation",
		TargetID:   invitation.ID,
		Metadata:   map[string]interface{}{"email": invitation.InviteeEmail, "role": invitation.Role},
	})
	s.notifyInvitee(ctx, invitation)

	return invitation, nil
}

// ensureNotOnBoard rejects invitations to the owner or to an existing member.
func (s *InvitationService) ensureNotOnBoard(ctx context.Context, board *models.Board, email identity.Email) error {
	invitee, err := s.userRepo.FindByIdentifier(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find invitee: %w", err)
	}

	if board.IsOwner(invitee.ID) {
		return ErrAlreadyMember
	}
	if _, err := s.memberRepo.Find(ctx, board.ID, invitee.ID); err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	return nil
}

func (s *InvitationService) notifyInvitee(ctx context.Context, invitation *models.BoardInvitation) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.EmailSendTimeout)
	defer cancel()

	msg := mailer.BuildInvitation(s.settings.FrontendURL, mailer.InvitationEmail{
		To:          invitation.InviteeEmail,
		InviterName: invitation.Inviter.Name,
		BoardID:     invitation.BoardID,
		BoardTitle:  invitation.Board.Title,
		Role:        string(invitation.Role),
		Token:       invitation.Token,
		ExpiresAt:   invitation.ExpiresAt,
	})

	if err := s.sender.Send(sendCtx, msg); err != nil {
		metrics.EmailDelivery(emailKindInvitation, metrics.ResultFailure)
		s.log.Warn().Err(err).
			Uint64("invitation_id", invitation.ID).
			Uint64("board_id", invitation.BoardID).
			Msg("failed to send invitation email")
		return
	}
	metrics.EmailDelivery(emailKindInvitation, metrics.ResultSuccess)
}

// Resolve looks up an invitation by token for display. It never changes state.
func (s *InvitationService) Resolve(ctx context.Context, token string) (*InvitationDetails, error) {
	invitation, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.details(invitation), nil
}

// Accept adds the caller to the invitation's board with the invited role.
// An invitation past its expiry is marked EXPIRED and cannot be accepted.
func (s *InvitationService) Accept(ctx context.Context, token string, userID uint64) (*models.BoardMember, error) {
	invitation, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if invitation.IsExpired(s.now()) {
		if err := s.expire(ctx, invitation, userID); err != nil {
			return nil, err
		}
		return nil, ErrInvitationExpired
	}

	user, err := s.invitee(ctx, invitation, userID)
	if err != nil {
		return nil, err
	}

	if invitation.Board.IsOwner(user.ID) {
		return nil, ErrAlreadyMember
	}
	if _, err := s.memberRepo.Find(ctx, invitation.BoardID, user.ID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	now := s.now()
	member := &models.BoardMember{
		BoardID:  invitation.BoardID,
		UserID:   user.ID,
		Role:     invitation.Role,
		JoinedAt: now,
	}

	if err := s.invitationRepo.Accept(ctx, invitation, member, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvitationNotPending):
			return nil, ErrAlreadyProcessed
		case errors.Is(err, repository.ErrMemberExists):
			return nil, ErrAlreadyMember
		default:
			return nil, fmt.Errorf("failed to accept invitation: %w", err)
		}
	}
	member.User = *user

	metrics.InvitationOutcome(metrics.OutcomeAccepted)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    user.ID,
		BoardID:    invitation.BoardID,
		Action:     models.AuditInvitationAccepted,
		TargetType: "invitation",
		TargetID:   invitation.ID,
		Metadata:   map[string]interface{}{"role": member.Role},
	})

	return member, nil
}

// Decline marks the invitation declined. No membership is created.
// Expiry is not checked: a lapsed invitation can still be turned down.
func (s *InvitationService) Decline(ctx context.Context, token string, userID uint64) (*models.BoardInvitation, error) {
	invitation, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.invitee(ctx, invitation, userID)
	if err != nil {
		return nil, err
	}

	if err := s.invitationRepo.Transition(ctx, invitation.ID, models.InvitationStatusDeclined); err != nil {
		if errors.Is(err, repository.ErrInvitationNotPending) {
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("failed to decline invitation: %w", err)
	}
	invitation.Status = models.InvitationStatusDeclined
	invitation.PendingKey = nil

	metrics.InvitationOutcome(metrics.OutcomeDeclined)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    user.ID,
		BoardID:    invitation.BoardID,
		Action:     models.AuditInvitationDeclined,
		TargetType: "invitation",
		TargetID:   invitation.ID,
	})

	return invitation, nil
}

// pendingByToken finds the invitation for token and requires it to be PENDING.
func (s *InvitationService) pendingByToken(ctx context.Context, token string) (*models.BoardInvitation, error) {
	invitation, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation.Status != models.InvitationStatusPending {
		return nil, ErrAlreadyProcessed
	}
	return invitation, nil
}

// expire persists EXPIRED for a pending invitation whose deadline passed.
func (s *InvitationService) expire(ctx context.Context, invitation *models.BoardInvitation, actorID uint64) error {
	if err := s.invitationRepo.Transition(ctx, invitation.ID, models.InvitationStatusExpired); err != nil {
		if errors.Is(err, repository.ErrInvitationNotPending) {
			return ErrAlreadyProcessed
		}
		return fmt.Errorf("failed to expire invitation: %w", err)
	}
	invitation.Status = models.InvitationStatusExpired
	invitation.PendingKey = nil

	metrics.InvitationOutcome(metrics.OutcomeExpired)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actorID,
		BoardID:    invitation.BoardID,
		Action:     models.AuditInvitationExpired,
		TargetType: "invitation",
		TargetID:   invitation.ID,
	})
	return nil
}

// invitee loads the caller and checks they own the invited address.
func (s *InvitationService) invitee(ctx context.Context, invitation *models.BoardInvitation, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !identity.SameEmail(user.EmailAddress(), invitation.InviteeEmail) {
		return nil, ErrEmailMismatch
	}
	return user, nil
}

func (s *InvitationService) findByToken(ctx context.Context, token string) (*models.BoardInvitation, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	invitation, err := s.invitationRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return invitation, nil
}

// Cancel deletes a pending invitation. The inviter or a board administrator may cancel.
func (s *InvitationService) Cancel(ctx context.Context, invitationID, userID uint64) error {
	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to find invitation: %w", err)
	}

	decision, err := s.policy.Resolve(ctx, userID, invitation.BoardID)
	if err != nil {
		return err
	}
	if invitation.InviterID != userID && !decision.CanAdminister() {
		return ErrNotAuthorized
	}

	if invitation.Status != models.InvitationStatusPending {
		return ErrAlreadyProcessed
	}

	if err := s.invitationRepo.Delete(ctx, invitation.ID); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	metrics.InvitationOutcome(metrics.OutcomeCancelled)
	s.activity.Record(ctx, ActivityEntry{
		ActorID:    userID,
		BoardID:    invitation.BoardID,
		Action:     models.AuditInvitationCancelled,
		TargetType: "invitation",
		TargetID:   invitation.ID,
		Metadata:   map[string]interface{}{"email": invitation.InviteeEmail},
	})
	return nil
}

// ListForBoard returns every invitation of a board. Administrators only.
func (s *InvitationService) ListForBoard(ctx context.Context, boardID, userID uint64) ([]InvitationDetails, error) {
	if _, err := s.policy.RequireAdmin(ctx, userID, boardID); err != nil {
		return nil, err
	}

	invitations, err := s.invitationRepo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return s.detailList(invitations), nil
}

// ListForUser returns the pending invitations addressed to the user's email.
func (s *InvitationService) ListForUser(ctx context.Context, userID uint64) ([]InvitationDetails, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	email := identity.NormalizeEmail(user.EmailAddress())
	if email == "" {
		return []InvitationDetails{}, nil
	}

	invitations, err := s.invitationRepo.ListPendingForEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return s.detailList(invitations), nil
}

func (s *InvitationService) details(invitation *models.BoardInvitation) *InvitationDetails {
	return &InvitationDetails{
		Invitation: invitation,
		Expired:    invitation.Status == models.InvitationStatusPending && invitation.IsExpired(s.now()),
	}
}

func (s *InvitationService) detailList(invitations []models.BoardInvitation) []InvitationDetails {
	result := make([]InvitationDetails, 0, len(invitations))
	for i := range invitations {
		result = append(result, *s.details(&invitations[i]))
	}
	return result
}
