package router

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/t212-bridge/internal/diff"
	"github.com/rickgao/t212-bridge/internal/model"
)

// Change is the resource-agnostic envelope delivered to subscribers.
// Old is absent for creations, New is absent for removals; both carry
// the record's JSON form for updates. Pair is the record's canonical
// trading pair when the source could resolve one, so consumers need no
// broker ticker knowledge.
type Change struct {
	ID        string          `json:"id"`
	Resource  model.Resource  `json:"resource"`
	Kind      string          `json:"kind"`
	Key       string          `json:"key"`
	Pair      string          `json:"pair,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
	New       json.RawMessage `json:"new,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// MakeChange wraps one diff event in an envelope. Every change gets a
// fresh id so sinks that replay (the database writer, reconnecting
// stream clients) can deduplicate on it.
func MakeChange[V diff.Equaler[V]](resource model.Resource, e diff.Event[V]) (Change, error) {
	ch := Change{
		ID:        uuid.NewString(),
		Resource:  resource,
		Kind:      e.Kind.String(),
		Key:       e.Key,
		FetchedAt: e.At,
	}
	if e.Old != nil {
		data, err := json.Marshal(e.Old)
		if err != nil {
			return Change{}, fmt.Errorf("marshal old %s record: %w", resource, err)
		}
		ch.Old = data
	}
	if e.New != nil {
		data, err := json.Marshal(e.New)
		if err != nil {
			return Change{}, fmt.Errorf("marshal new %s record: %w", resource, err)
		}
		ch.New = data
	}
	return ch, nil
}
