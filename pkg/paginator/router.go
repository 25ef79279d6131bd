package paginator

import (
	"context"
	"errors"

	"github.com/harun/pagina/internal/observability"
	"github.com/harun/pagina/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Interaction outcomes, used as metric labels.
const (
	outcomeIgnored   = "ignored"
	outcomeMalformed = "malformed"
	outcomeMissing   = "missing"
	outcomeNotOwner  = "not_owner"
	outcomeUnchanged = "unchanged"
	outcomeChanged   = "changed"
	outcomeStopped   = "stopped"
	outcomeGone      = "gone"
	outcomeFailed    = "failed"
)

// ProcessInteraction routes one inbound interaction. It returns false when the
// control identifier is outside the engine namespace, so callers can hand the
// event to other handlers. Failures are logged, never returned.
func (e *Engine) ProcessInteraction(ctx context.Context, in Interaction) bool {
	if !OwnsControlID(e.baseID, in.CustomID) {
		return false
	}

	ctx, span := tracing.StartSpan(
		ctx,
		"pagina.paginator",
		"paginator.interaction",
		attribute.String("message_id", in.Message.MessageID),
		attribute.String("custom_id", in.CustomID),
	)
	defer span.End()

	action, ok := ParseAction(e.baseID, in.CustomID, in.Values)
	label := action.Kind.String()
	outcome := outcomeIgnored
	defer func() {
		e.acknowledge(ctx, in)
		observability.RecordInteraction(label, outcome)
		span.SetAttributes(attribute.String("outcome", outcome))
	}()

	if !ok {
		outcome = outcomeMalformed
		return true
	}

	if e.locks != nil {
		release := e.locks.lock(in.Message.MessageID)
		defer release()
	}

	outcome = e.step(ctx, in, action)
	return true
}

// step runs the read-compute-edit-write cycle for one decoded action.
func (e *Engine) step(ctx context.Context, in Interaction, action Action) string {
	logger := tracing.LoggerFromContext(ctx, e.logger).With().
		Str("message_id", in.Message.MessageID).
		Str("user_id", in.UserID).
		Str("action", action.Kind.String()).
		Logger()

	session, err := e.store.Get(ctx, in.Message.MessageID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return outcomeMissing
		}
		logger.Error().Err(err).Msg("Failed to load paginator session")
		return outcomeFailed
	}

	if in.UserID != session.OwnerID {
		logger.Debug().Str("owner_id", session.OwnerID).Msg("Ignoring interaction from non-owner")
		return outcomeNotOwner
	}

	if action.Kind == ActionStop {
		if err := e.remove(ctx, session.Ref, "stopped"); err != nil {
			logger.Error().Err(err).Msg("Failed to stop paginator")
			return outcomeFailed
		}
		return outcomeStopped
	}

	total := len(session.Pages)
	next := Clamp(action.Apply(session.CurrentIndex), total)
	if next == session.CurrentIndex {
		return outcomeUnchanged
	}

	view := BuildView(e.baseID, next, session.Pages)
	if err := e.messenger.EditPage(ctx, session.Ref, session.Pages[next], &view); err != nil {
		observability.RecordTransportError("edit")
		if errors.Is(err, ErrMessageGone) {
			logger.Info().Err(err).Msg("Paginated message is gone, dropping session")
			if delErr := e.store.Delete(ctx, session.Ref.MessageID); delErr != nil {
				logger.Error().Err(delErr).Msg("Failed to delete paginator session")
			}
			return outcomeGone
		}
		logger.Warn().Err(err).Msg("Failed to edit paginated message")
		return outcomeFailed
	}

	if err := e.store.UpdateIndex(ctx, session.Ref.MessageID, next); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			logger.Debug().Msg("Session reaped before index update")
		} else {
			logger.Error().Err(err).Msg("Failed to persist paginator index")
		}
	}

	logger.Debug().
		Int("from", session.CurrentIndex).
		Int("to", next).
		Msg("Paginator page changed")
	return outcomeChanged
}

func (e *Engine) acknowledge(ctx context.Context, in Interaction) {
	if err := e.messenger.Acknowledge(ctx, in); err != nil {
		observability.RecordTransportError("acknowledge")
		e.logger.Debug().Err(err).Str("interaction_id", in.ID).Msg("Failed to acknowledge interaction")
	}
}
