package storage

const schema = `
-- One row per learnable item the learner has answered at least once.
CREATE TABLE IF NOT EXISTS review_records (
    item_id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    last_reviewed TEXT NOT NULL,
    next_review TEXT NOT NULL,
    difficulty_level INTEGER NOT NULL DEFAULT 1,
    correct_streak INTEGER NOT NULL DEFAULT 0,
    total_attempts INTEGER NOT NULL DEFAULT 0,
    correct_attempts INTEGER NOT NULL DEFAULT 0,
    ease REAL NOT NULL DEFAULT 2.0
);

CREATE INDEX IF NOT EXISTS idx_review_records_category ON review_records(category);

-- Every answer given, kept for history views. Removed together with the record on reset.
CREATE TABLE IF NOT EXISTS answer_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id TEXT NOT NULL,
    category TEXT NOT NULL,
    correct INTEGER NOT NULL,
    answered_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answer_log_item ON answer_log(item_id);
`
