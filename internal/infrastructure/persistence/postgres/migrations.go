package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// The schema carries the workflow invariants: one workflow record per trainee
// (unique trainee_id columns), occupancy bounded by capacity (CHECK), and the
// serial counters that back gap-free identifier generation.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_trainees",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_projects",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_enrollment",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_serial_counters",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS trainees (
	id               UUID PRIMARY KEY,
	public_id        TEXT UNIQUE,
	name             TEXT NOT NULL,
	father_name      TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL UNIQUE,
	password_hash    TEXT NOT NULL,
	college          TEXT NOT NULL DEFAULT '',
	course           TEXT NOT NULL DEFAULT '',
	branch           TEXT NOT NULL,
	address          TEXT NOT NULL DEFAULT '',
	mobile           TEXT NOT NULL DEFAULT '',
	photo_ref        TEXT NOT NULL DEFAULT '',
	lor_ref          TEXT NOT NULL DEFAULT '',
	selected         BOOLEAN NOT NULL DEFAULT FALSE,
	payment_verified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_trainees_branch ON trainees (branch);
CREATE INDEX IF NOT EXISTS idx_trainees_selected ON trainees (selected) WHERE selected;
`

const migration001Down = `
DROP TABLE IF EXISTS trainees;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS projects (
	id             UUID PRIMARY KEY,
	title          TEXT NOT NULL,
	branch         TEXT NOT NULL,
	supervisor     TEXT NOT NULL DEFAULT '',
	duration_weeks INTEGER NOT NULL,
	start_date     TIMESTAMPTZ,
	end_date       TIMESTAMPTZ,
	total_slots    INTEGER NOT NULL CHECK (total_slots > 0),
	taken_slots    INTEGER NOT NULL DEFAULT 0
		CHECK (taken_slots >= 0 AND taken_slots <= total_slots),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_projects_branch ON projects (branch);
`

const migration002Down = `
DROP TABLE IF EXISTS projects;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS fee_records (
	id            UUID PRIMARY KEY,
	trainee_id    UUID NOT NULL UNIQUE REFERENCES trainees (id),
	status        TEXT NOT NULL DEFAULT 'pending',
	ticket_number TEXT NOT NULL DEFAULT '',
	challan_ref   TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	sent_at       TIMESTAMPTZ,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_fee_records_status ON fee_records (status);

CREATE TABLE IF NOT EXISTS selections (
	id          UUID PRIMARY KEY,
	trainee_id  UUID NOT NULL UNIQUE REFERENCES trainees (id),
	project_id  UUID NOT NULL REFERENCES projects (id),
	status      TEXT NOT NULL DEFAULT 'pending',
	selected_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_selections_project ON selections (project_id);

CREATE TABLE IF NOT EXISTS admissions (
	id           UUID PRIMARY KEY,
	trainee_id   UUID NOT NULL UNIQUE REFERENCES trainees (id),
	artifact_ref TEXT NOT NULL DEFAULT '',
	issued_on    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS certificates (
	id           UUID PRIMARY KEY,
	trainee_id   UUID NOT NULL UNIQUE REFERENCES trainees (id),
	serial       TEXT NOT NULL UNIQUE,
	verified     BOOLEAN NOT NULL DEFAULT FALSE,
	issued_on    TIMESTAMPTZ,
	artifact_ref TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_certificates_verified ON certificates (verified) WHERE verified;
`

const migration003Down = `
DROP TABLE IF EXISTS certificates;
DROP TABLE IF EXISTS admissions;
DROP TABLE IF EXISTS selections;
DROP TABLE IF EXISTS fee_records;
`

const migration004Up = `
CREATE TABLE IF NOT EXISTS serial_counters (
	category   TEXT NOT NULL,
	bucket     INTEGER NOT NULL,
	last_seq   INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (category, bucket)
);
`

const migration004Down = `
DROP TABLE IF EXISTS serial_counters;
`
