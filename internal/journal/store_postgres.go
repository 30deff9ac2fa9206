package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS client_games (
    session_id     TEXT PRIMARY KEY,
    room_id        TEXT NOT NULL,
    color          TEXT NOT NULL,
    result         TEXT NOT NULL,
    pgn_result     TEXT NOT NULL,
    reason         TEXT NOT NULL DEFAULT '',
    resigned_color TEXT NOT NULL DEFAULT '',
    final_fen      TEXT NOT NULL DEFAULT '',
    white_name     TEXT NOT NULL DEFAULT '',
    black_name     TEXT NOT NULL DEFAULT '',
    ended_at       TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps finished games only; live records are Redis' job.
type PostgresStore struct {
	db *sql.DB
}

func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(pctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *PostgresStore) SaveLive(context.Context, Live) error { return nil }

// SaveResult upserts by session id.
func (p *PostgresStore) SaveResult(ctx context.Context, r Result) error {
	if p == nil || p.db == nil {
		return nil
	}
	q := `INSERT INTO client_games (
        session_id, room_id, color, result, pgn_result, reason, resigned_color,
        final_fen, white_name, black_name, ended_at
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
      ON CONFLICT (session_id) DO UPDATE SET
        result=EXCLUDED.result,
        pgn_result=EXCLUDED.pgn_result,
        reason=EXCLUDED.reason,
        resigned_color=EXCLUDED.resigned_color,
        final_fen=EXCLUDED.final_fen,
        ended_at=EXCLUDED.ended_at`
	_, err := p.db.ExecContext(ctx, q,
		r.SessionID, r.RoomID, r.Color, r.Result, PGNResult(r.Result),
		strings.TrimSpace(r.Reason), r.ResignedColor,
		r.FinalFEN, r.WhiteName, r.BlackName, r.EndedAt,
	)
	return err
}

// PGNResult maps a server result to the PGN result token.
func PGNResult(result string) string {
	switch strings.ToUpper(strings.TrimSpace(result)) {
	case "WHITE_WIN":
		return "1-0"
	case "BLACK_WIN":
		return "0-1"
	case "DRAW":
		return "1/2-1/2"
	default:
		return "*"
	}
}
