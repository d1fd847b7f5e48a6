package db

import (
	"fmt"
	"time"
)

// AskRecord is one pipeline run to be written to history.
type AskRecord struct {
	Question    string
	AnswerChars int
	RankedCount int
	ChunkCount  int
	SourceCount int
	Language    string
	Duration    time.Duration
}

// Ask is one row read back from history.
type Ask struct {
	AskID       int64
	Question    string
	AnswerChars int
	RankedCount int
	ChunkCount  int
	SourceCount int
	Language    string
	DurationMS  int64
	CreatedAt   time.Time
}

// InsertAsk records a completed pipeline run and returns its ID.
func (db *DB) InsertAsk(rec AskRecord) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO asks (question, answer_chars, ranked_count, chunk_count, source_count, language, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Question, rec.AnswerChars, rec.RankedCount, rec.ChunkCount, rec.SourceCount, rec.Language, rec.Duration.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("failed to insert ask: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get ask ID: %w", err)
	}
	return id, nil
}

// RecentAsks returns up to limit history rows, newest first.
func (db *DB) RecentAsks(limit int) ([]Ask, error) {
	rows, err := db.Query(`
		SELECT ask_id, question, answer_chars, ranked_count, chunk_count, source_count, COALESCE(language, ''), duration_ms, created_at
		FROM asks
		ORDER BY ask_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query asks: %w", err)
	}
	defer rows.Close()

	var asks []Ask
	for rows.Next() {
		var a Ask
		if err := rows.Scan(&a.AskID, &a.Question, &a.AnswerChars, &a.RankedCount, &a.ChunkCount, &a.SourceCount, &a.Language, &a.DurationMS, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ask row: %w", err)
		}
		asks = append(asks, a)
	}
	return asks, rows.Err()
}
