package store

const schema = `
CREATE TABLE IF NOT EXISTS journal_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL,
    event TEXT NOT NULL,
    path_type TEXT NOT NULL,
    observed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_observed ON journal_events(observed_at);
CREATE INDEX IF NOT EXISTS idx_journal_path ON journal_events(path);
`
