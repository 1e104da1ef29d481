package reportactivity

import (
	"context"
	"strings"

	"github.com/goliatone/go-riskreport/report"
	"github.com/goliatone/go-users/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// MetadataActorID is the event metadata key carrying the requesting user.
const MetadataActorID = "actor_id"

// Config configures the activity emitter adapter.
type Config struct {
	Sink       types.ActivitySink
	Channel    string
	ObjectType string
	// ActorID is used when an event carries no actor of its own.
	ActorID string
}

// Emitter records report lifecycle events as go-users activity.
type Emitter struct {
	sink       types.ActivitySink
	channel    string
	objectType string
	actorID    uuid.UUID
}

var _ report.ChangeEmitter = (*Emitter)(nil)

// NewEmitter creates a new activity emitter.
func NewEmitter(cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = "riskreport"
	}
	objectType := strings.TrimSpace(cfg.ObjectType)
	if objectType == "" {
		objectType = "risk_report"
	}
	return &Emitter{
		sink:       cfg.Sink,
		channel:    channel,
		objectType: objectType,
		actorID:    parseUUID(cfg.ActorID),
	}
}

// Emit logs a lifecycle event to the configured ActivitySink.
func (e *Emitter) Emit(ctx context.Context, evt report.ChangeEvent) error {
	if e == nil {
		return report.NewError(report.KindInternal, "activity emitter is nil", nil)
	}
	if e.sink == nil {
		return report.NewError(report.KindInternal, "activity sink not configured", nil)
	}
	verb := strings.TrimSpace(evt.Name)
	if verb == "" {
		return report.NewError(report.KindInvalidInput, "activity verb is required", nil)
	}
	objectID := strings.TrimSpace(evt.ExportID)
	if objectID == "" {
		return report.NewError(report.KindInvalidInput, "activity object ID is required", nil)
	}

	actorID := e.actorID
	if raw, ok := evt.Metadata[MetadataActorID].(string); ok {
		if parsed := parseUUID(raw); parsed != uuid.Nil {
			actorID = parsed
		}
	}

	record, err := activity.BuildRecordFromUUID(
		actorID,
		verb,
		e.objectType,
		objectID,
		buildMetadata(evt),
		activity.WithChannel(e.channel),
		activity.WithOccurredAt(evt.Timestamp),
	)
	if err != nil {
		return err
	}
	return e.sink.Log(ctx, record)
}

func buildMetadata(evt report.ChangeEvent) map[string]any {
	meta := make(map[string]any, len(evt.Metadata))
	for k, v := range evt.Metadata {
		if k == MetadataActorID {
			continue
		}
		meta[k] = v
	}
	return meta
}

func parseUUID(value string) uuid.UUID {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
