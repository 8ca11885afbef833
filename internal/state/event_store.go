package state

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/HotpotFunds/HotpotFunds/internal/types"
)

// SaveEvents persists events starting at sequence cursor and returns the next
// cursor. Sequence numbers are the event's position in the world log, so
// replays after a restart upsert cleanly.
func SaveEvents(cursor int, events []types.Event) (int, error) {
	if DB == nil {
		return cursor, fmt.Errorf("database not initialized")
	}
	if len(events) == 0 {
		return cursor, nil
	}

	query := `
		INSERT INTO ledger_events (event_seq, emitter, event_name, args)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_seq) DO NOTHING;
	`
	for i, ev := range events {
		argsJSON, err := json.Marshal(ev.Args)
		if err != nil {
			return cursor + i, fmt.Errorf("failed to marshal event args: %w", err)
		}
		if _, err := DB.Exec(query, cursor+i, string(ev.Emitter), ev.Name, argsJSON); err != nil {
			return cursor + i, fmt.Errorf("failed to save event: %w", err)
		}
	}

	log.Debug().Int("count", len(events)).Int("cursor", cursor+len(events)).Msg("Ledger events saved to database")
	return cursor + len(events), nil
}

// StoredEvent is one persisted ledger event.
type StoredEvent struct {
	Seq     int64           `json:"seq"`
	Emitter string          `json:"emitter"`
	Name    string          `json:"name"`
	Args    json.RawMessage `json:"args"`
}

// GetRecentEvents returns the latest persisted events, newest first,
// optionally filtered by emitter.
func GetRecentEvents(emitter string, limit int) ([]StoredEvent, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT event_seq, emitter, event_name, args
		FROM ledger_events
		WHERE $1 = '' OR emitter = $1
		ORDER BY event_seq DESC
		LIMIT $2;
	`
	rows, err := DB.Query(query, emitter, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var ev StoredEvent
		if err := rows.Scan(&ev.Seq, &ev.Emitter, &ev.Name, &ev.Args); err != nil {
			return nil, fmt.Errorf("failed to scan ledger event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
