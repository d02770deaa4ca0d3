// Package usersink writes dashboard activity into a go-users activity sink.
package usersink

import (
	"context"
	"maps"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-feedback-dashboard/pkg/activity"
)

// Sink is the go-users activity log writer.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook converts activity events into go-users activity records.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify logs evt. Events without a verb and hooks without a sink are skipped.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	if evt.Verb == "" {
		return nil
	}
	return h.Sink.Log(ctx, Record(evt))
}

// Record maps evt onto a go-users activity record. Viewer ids that are not
// UUIDs are mapped to stable name-based UUIDs and kept verbatim in Data.
func Record(evt activity.Event) types.ActivityRecord {
	data := map[string]any{}
	if evt.Metadata != nil {
		data = maps.Clone(evt.Metadata)
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = append([]string(nil), evt.Recipients...)
	}
	actorID := identity(evt.ActorID, "actor", data)
	userID := identity(evt.UserID, "user", data)
	tenantID := identity(evt.TenantID, "tenant", data)
	return types.ActivityRecord{
		ActorID:    actorID,
		UserID:     userID,
		TenantID:   tenantID,
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	}
}

func identity(raw, key string, data map[string]any) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	data[key] = raw
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(raw))
}
