package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Asks table: one row per answered question
CREATE TABLE IF NOT EXISTS asks (
    ask_id INTEGER PRIMARY KEY AUTOINCREMENT,
    question TEXT NOT NULL,
    answer_chars INTEGER DEFAULT 0,
    ranked_count INTEGER DEFAULT 0,    -- URLs surviving the ranking stage
    chunk_count INTEGER DEFAULT 0,     -- chunks loaded for retrieval
    source_count INTEGER DEFAULT 0,    -- distinct sources cited in the answer
    language TEXT,                     -- dominant page language, ISO 639-1
    duration_ms INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_asks_created ON asks(created_at);
`
