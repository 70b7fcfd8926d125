package repository

import (
	"context"
	"fmt"

	"github.com/nepalkings/kings-server/internal/game"
)

// GameStore persists game log entries, chat messages and game state
// snapshots. It implements game.Store.
type GameStore struct {
	db *DB
}

// NewGameStore creates the persistence collaborator for the engine.
func NewGameStore(db *DB) *GameStore {
	return &GameStore{db: db}
}

// AppendLog writes one game log entry.
func (s *GameStore) AppendLog(ctx context.Context, gameID string, entry game.LogEntry) error {
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO game_logs (game_id, round, turn, message, author_id, log_type, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`,
		gameID, entry.Round, entry.Turn, entry.Message, entry.AuthorID, entry.Type, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting game log: %w", err)
	}
	return nil
}

// AppendChat writes one chat message.
func (s *GameStore) AppendChat(ctx context.Context, msg game.ChatMessage) error {
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO game_chats (game_id, author_id, message, created_at)
		VALUES ($1, $2, $3, $4)`,
		msg.GameID, msg.AuthorID, msg.Message, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}
	return nil
}

// SaveGameState upserts the game's turn and round snapshot.
func (s *GameStore) SaveGameState(ctx context.Context, gameID string, state game.GameState, round int, turnPlayerID string) error {
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO game_states (game_id, state, round, turn_player_id, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (game_id) DO UPDATE
		SET state = EXCLUDED.state,
		    round = EXCLUDED.round,
		    turn_player_id = EXCLUDED.turn_player_id,
		    updated_at = NOW()`,
		gameID, state.String(), round, turnPlayerID,
	)
	if err != nil {
		return fmt.Errorf("saving game state: %w", err)
	}
	return nil
}

// GameLogs reads a game's persisted log in insertion order.
func (s *GameStore) GameLogs(ctx context.Context, gameID string) ([]game.LogEntry, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT round, turn, message, COALESCE(author_id, ''), log_type, created_at
		FROM game_logs
		WHERE game_id = $1
		ORDER BY turn ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying game logs: %w", err)
	}
	defer rows.Close()

	var entries []game.LogEntry
	for rows.Next() {
		var entry game.LogEntry
		if err := rows.Scan(&entry.Round, &entry.Turn, &entry.Message, &entry.AuthorID, &entry.Type, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning game log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
