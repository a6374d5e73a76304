package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'ticket_status') THEN
			CREATE TYPE ticket_status AS ENUM (
				'NOT_STARTED', 'IN_PROGRESS', 'COMPLETED', 'UNREPAIRABLE',
				'PAYMENT_COLLECTED', 'HANDED_OVER', 'RETURNED', 'PICKED_UP'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS repair_tickets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		ticket_id VARCHAR(16) NOT NULL UNIQUE,
		customer_name VARCHAR(120) NOT NULL,
		customer_mobile VARCHAR(10) NOT NULL,
		customer_email VARCHAR(120) NOT NULL DEFAULT '',
		customer_address TEXT NOT NULL DEFAULT '',
		device_brand VARCHAR(60) NOT NULL,
		device_model VARCHAR(60) NOT NULL,
		device_problem TEXT NOT NULL,
		priority VARCHAR(10) NOT NULL DEFAULT 'Normal',
		estimated_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		final_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		service_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		parts_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		status ticket_status NOT NULL DEFAULT 'NOT_STARTED',
		payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
		payment_method VARCHAR(10) NOT NULL DEFAULT '',
		payment_notes TEXT NOT NULL DEFAULT '',
		split_payments JSONB,
		return_reason TEXT NOT NULL DEFAULT '',
		return_details TEXT NOT NULL DEFAULT '',
		unrepairable BOOLEAN NOT NULL DEFAULT FALSE,
		handover_completed BOOLEAN NOT NULL DEFAULT FALSE,
		payment_notified BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ,
		payment_collected_at TIMESTAMPTZ,
		handover_at TIMESTAMPTZ,
		return_at TIMESTAMPTZ,
		customer_pickup_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_repair_tickets_status ON repair_tickets (status);`,
	`CREATE INDEX IF NOT EXISTS idx_repair_tickets_payment_status ON repair_tickets (payment_status);`,
	`CREATE INDEX IF NOT EXISTS idx_repair_tickets_mobile ON repair_tickets (customer_mobile);`,
	`CREATE INDEX IF NOT EXISTS idx_repair_tickets_created_at ON repair_tickets (created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_repair_tickets_payment_collected_at ON repair_tickets (payment_collected_at);`,
	`CREATE INDEX IF NOT EXISTS idx_repair_tickets_return_at ON repair_tickets (return_at);`,
	`CREATE TABLE IF NOT EXISTS payment_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		ticket_id VARCHAR(16) NOT NULL,
		device_id UUID NOT NULL,
		customer_name VARCHAR(120) NOT NULL DEFAULT '',
		device_info VARCHAR(130) NOT NULL DEFAULT '',
		amount NUMERIC(12,2) NOT NULL,
		method VARCHAR(10) NOT NULL,
		type VARCHAR(20) NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		split_count INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payment_logs_ticket_id ON payment_logs (ticket_id);`,
	`CREATE INDEX IF NOT EXISTS idx_payment_logs_timestamp ON payment_logs (timestamp);`,
	`CREATE TABLE IF NOT EXISTS whatsapp_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		device_id UUID NOT NULL,
		ticket_id VARCHAR(16) NOT NULL,
		customer_name VARCHAR(120) NOT NULL DEFAULT '',
		customer_mobile VARCHAR(10) NOT NULL DEFAULT '',
		message_type VARCHAR(20) NOT NULL,
		language VARCHAR(10) NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_whatsapp_logs_ticket_id ON whatsapp_logs (ticket_id);`,
}

func Migrate(database *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i, err)
		}
	}
	return nil
}
