package audit

// schema creates the run-history tables.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    mode TEXT NOT NULL,
    region TEXT NOT NULL,
    execute BOOLEAN NOT NULL,
    started TIMESTAMP NOT NULL,
    finished TIMESTAMP,

    found INTEGER NOT NULL DEFAULT 0,
    eligible INTEGER NOT NULL DEFAULT 0,
    deleted INTEGER NOT NULL DEFAULT 0,
    would_delete INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    not_found INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS outcomes (
    run_id TEXT NOT NULL REFERENCES runs(id),
    seq INTEGER NOT NULL,
    barcode TEXT,
    arn TEXT,
    status TEXT,
    action TEXT NOT NULL,
    reason TEXT,
    error TEXT,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
CREATE INDEX IF NOT EXISTS idx_outcomes_barcode ON outcomes(barcode);
`
