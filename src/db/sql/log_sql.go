package db

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// CreateLog appends one audit trail row. Best effort: a failed write is
// reported to the process logger and otherwise swallowed, so the audit sink
// can never fail a user request. The insert is detached from request
// cancellation so an aborted request still leaves its trail.
func CreateLog(ctx context.Context, pool *pgxpool.Pool, level, message string, meta map[string]any, userID *int64) {
	var payload []byte
	if meta != nil {
		var err error
		payload, err = json.Marshal(meta)
		if err != nil {
			log.Error().Err(err).Str("message", message).Msg("failed to encode audit log meta")
			payload = nil
		}
	}

	query := `INSERT INTO logs (level, message, meta, user_id) VALUES ($1, $2, $3, $4)`
	if _, err := pool.Exec(context.WithoutCancel(ctx), query, level, message, payload, userID); err != nil {
		log.Error().Err(err).Str("message", message).Msg("failed to write audit log")
	}
}
