package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/yukikurage/board-collab-api/internal/models"
	"github.com/yukikurage/board-collab-api/internal/repository"
	"gorm.io/datatypes"
)

// ActivityRecorder appends entries to a board's activity log. Failures are
// logged and never surface to the caller.
type ActivityRecorder struct {
	auditRepo repository.AuditRepository
	log       zerolog.Logger
}

// NewActivityRecorder creates a new ActivityRecorder.
func NewActivityRecorder(auditRepo repository.AuditRepository, log zerolog.Logger) *ActivityRecorder {
	return &ActivityRecorder{
		auditRepo: auditRepo,
		log:       log,
	}
}

// ActivityEntry describes one event.
type ActivityEntry struct {
	ActorID    uint64
	BoardID    uint64
	Action     models.AuditAction
	TargetType string
	TargetID   uint64
	Metadata   map[string]interface{}
}

// Record stores entry.
func (r *ActivityRecorder) Record(ctx context.Context, entry ActivityEntry) {
	if r == nil {
		return
	}

	metadata := datatypes.JSON("{}")
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			r.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("failed to encode activity metadata")
		} else {
			metadata = datatypes.JSON(raw)
		}
	}

	log := &models.AuditLog{
		ActorID:    entry.ActorID,
		BoardID:    entry.BoardID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Metadata:   metadata,
	}
	if err := r.auditRepo.Record(ctx, log); err != nil {
		r.log.Warn().Err(err).
			Str("action", string(entry.Action)).
			Uint64("board_id", entry.BoardID).
			Msg("failed to record board activity")
	}
}
