package port

import "context"

type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// ChangeEvent announces that a row of Table changed. It carries no row
// data: consumers are expected to reload their view.
type ChangeEvent struct {
	Table    string     `json:"table"`
	Type     ChangeType `json:"type"`
	EntityID string     `json:"entity_id,omitempty"`
}

// ChangeFeed is the single subscribe contract for "something changed"
// signals. Implementations may push real events or synthesize them by
// polling; neither guarantees completeness, only that a reload is due.
type ChangeFeed interface {
	// Subscribe emits events for the given table until ctx is done. The
	// returned channel is closed when the subscription ends.
	Subscribe(ctx context.Context, table string) (<-chan ChangeEvent, error)
}
