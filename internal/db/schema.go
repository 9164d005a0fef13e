package db

// SchemaSQL is the complete schema for a wicket workspace database.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests load
// it via GetSchemaSQL() so that repository code and test fixtures can
// never drift apart: a repository referencing a column that does not
// exist here fails immediately with "no such column".
//
// The ledger table is append-only by contract: the repositories expose no
// UPDATE or DELETE path for it, and seq is assigned strictly
// monotonically with no gaps.
const SchemaSQL = `
-- Ledger (append-only progress record; the source of truth for position)
CREATE TABLE IF NOT EXISTS ledger_entries (
	seq INTEGER PRIMARY KEY,
	from_step TEXT NOT NULL,
	to_step TEXT NOT NULL,
	spec_hash TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL CHECK(action IN ('advance', 'commit', 'amendment', 'note')),
	outcome TEXT NOT NULL CHECK(outcome IN ('admitted', 'rejected', 'unavailable', 'annotated')),
	reject_kind TEXT,
	failing_condition TEXT,
	reason TEXT,
	evidence_json TEXT,
	amendment_id TEXT,
	actor TEXT NOT NULL,
	note TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Amendments (spec change requests; lifecycle proposed -> approved/rejected -> applied)
CREATE TABLE IF NOT EXISTS amendments (
	id TEXT PRIMARY KEY,
	reason TEXT NOT NULL,
	previous_spec_hash TEXT NOT NULL DEFAULT '',
	proposed_spec_hash TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('proposed', 'approved', 'rejected', 'applied')) DEFAULT 'proposed',
	reviewed_by TEXT,
	justification TEXT,
	adr_id TEXT,
	actor TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	decided_at DATETIME,
	applied_at DATETIME
);

-- ADRs (immutable decision records; one per applied amendment)
CREATE TABLE IF NOT EXISTS adrs (
	id TEXT PRIMARY KEY,
	amendment_id TEXT NOT NULL UNIQUE,
	reason TEXT NOT NULL,
	before_hash TEXT NOT NULL DEFAULT '',
	after_hash TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (amendment_id) REFERENCES amendments(id)
);

CREATE INDEX IF NOT EXISTS idx_ledger_outcome ON ledger_entries(outcome);
CREATE INDEX IF NOT EXISTS idx_amendments_status ON amendments(status);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// This prevents test schemas from drifting out of sync with production.
func GetSchemaSQL() string {
	return SchemaSQL
}
