package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('admin', 'landlord', 'tenant');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_status') THEN
			CREATE TYPE user_status AS ENUM ('active', 'inactive', 'banned');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'property_status') THEN
			CREATE TYPE property_status AS ENUM ('available', 'rented', 'maintenance', 'offline');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('draft', 'pending', 'active', 'expired', 'terminated', 'breached');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_method') THEN
			CREATE TYPE payment_method AS ENUM ('monthly', 'quarterly', 'semi_annually', 'annually');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(64) NOT NULL DEFAULT '',
		role user_role NOT NULL,
		status user_status NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS properties (
		id BIGSERIAL PRIMARY KEY,
		landlord_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		title VARCHAR(128) NOT NULL DEFAULT '',
		address VARCHAR(256) NOT NULL DEFAULT '',
		status property_status NOT NULL DEFAULT 'available',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id BIGSERIAL PRIMARY KEY,
		contract_number VARCHAR(32) NOT NULL,
		landlord_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		tenant_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE RESTRICT,
		monthly_rent BIGINT NOT NULL CHECK (monthly_rent > 0),
		deposit BIGINT NOT NULL DEFAULT 0 CHECK (deposit >= 0),
		management_fee BIGINT NOT NULL DEFAULT 0 CHECK (management_fee >= 0),
		other_fees BIGINT NOT NULL DEFAULT 0 CHECK (other_fees >= 0),
		signed_date TIMESTAMPTZ NOT NULL,
		effective_date TIMESTAMPTZ NOT NULL,
		expiry_date TIMESTAMPTZ NOT NULL,
		lease_duration INT NOT NULL CHECK (lease_duration BETWEEN 1 AND 120),
		payment_method payment_method NOT NULL,
		payment_day INT NOT NULL CHECK (payment_day BETWEEN 1 AND 31),
		status contract_status NOT NULL DEFAULT 'draft',
		terms TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_contract_parties CHECK (landlord_id <> tenant_id),
		CONSTRAINT chk_contract_dates CHECK (effective_date >= signed_date AND expiry_date > effective_date)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_property_id ON contracts (property_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_landlord_id ON contracts (landlord_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_tenant_id ON contracts (tenant_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_expiry_date ON contracts (expiry_date) WHERE status = 'active';`,
	// Backstop against double booking: the availability check runs under a
	// property row lock, the constraint catches anything that slips past.
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'excl_contract_booking') THEN
			ALTER TABLE contracts ADD CONSTRAINT excl_contract_booking
				EXCLUDE USING gist (
					property_id WITH =,
					tstzrange(effective_date, expiry_date) WITH &&
				) WHERE (status IN ('active', 'pending'));
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
