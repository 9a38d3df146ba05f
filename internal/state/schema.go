// Package state implements the workspace state store: the cfg snapshot
// cache and the generated-region baselines, persisted in a SQLite database
// under .buckshift/ at the Buck2 root.
package state

// Schema DDL. The store is created lazily and survives across invocations,
// so every statement must be idempotent.
const (
	createCfgSnapshots = `CREATE TABLE IF NOT EXISTS cfg_snapshots (
    triple TEXT NOT NULL,
    rustc_version TEXT NOT NULL,
    facts TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (triple, rustc_version)
);`

	createBaselines = `CREATE TABLE IF NOT EXISTS baselines (
    path TEXT PRIMARY KEY,
    fingerprint TEXT NOT NULL,
    content TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

var schemaStatements = []string{
	createCfgSnapshots,
	createBaselines,
}
