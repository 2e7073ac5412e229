package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service writes a structured audit trail of lifecycle transitions.
type Service struct {
	logger zerolog.Logger
}

func NewService(logger *zerolog.Logger) *Service {
	return &Service{logger: logger.With().Str("component", "audit").Logger()}
}

// Log records a single audited action. Metadata is optional.
func (s *Service) Log(ctx context.Context, action, resource string, resourceID uuid.UUID, metadata map[string]interface{}) {
	event := s.logger.Info().
		Str("action", action).
		Str("resource", resource).
		Str("resource_id", resourceID.String())

	if requestID, ok := ctx.Value("request_id").(string); ok {
		event = event.Str("request_id", requestID)
	}
	if len(metadata) > 0 {
		event = event.Fields(metadata)
	}

	event.Msg("audit")
}
