package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'modification_kind') THEN
			CREATE TYPE modification_kind AS ENUM ('SUSPENSION', 'EXTENSION');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contractor_org_id UUID NOT NULL,
		name VARCHAR(256) NOT NULL,
		initial_value BIGINT NOT NULL,
		committed_value BIGINT NOT NULL,
		start_date DATE NOT NULL,
		initial_end_date DATE NOT NULL,
		current_end_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS work_points (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		name VARCHAR(256) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS activities (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_point_id UUID NOT NULL REFERENCES work_points(id),
		description TEXT NOT NULL,
		unit VARCHAR(32) NOT NULL,
		physical_target NUMERIC(18,3) NOT NULL,
		financial_target BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS additions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		amount BIGINT NOT NULL,
		effective_date DATE NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS modifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		kind modification_kind NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		duration_days INT NOT NULL CHECK (duration_days >= 1),
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (start_date <= end_date)
	);`,
	`CREATE TABLE IF NOT EXISTS contract_progress (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		value BIGINT NOT NULL CHECK (value >= 0),
		physical_percent NUMERIC(5,2) NOT NULL CHECK (physical_percent >= 0 AND physical_percent <= 100),
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS activity_progress (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		activity_id UUID NOT NULL REFERENCES activities(id),
		quantity NUMERIC(18,3) NOT NULL CHECK (quantity > 0),
		cost BIGINT NOT NULL CHECK (cost >= 0),
		work_done TEXT NOT NULL DEFAULT '',
		work_planned TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_points_contract_id ON work_points (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_activities_work_point_id ON activities (work_point_id);`,
	`CREATE INDEX IF NOT EXISTS idx_additions_contract_id ON additions (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_modifications_contract_id ON modifications (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_modifications_kind ON modifications (contract_id, kind);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_progress_contract_id ON contract_progress (contract_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_progress_activity_id ON activity_progress (activity_id, created_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
