package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds idempotent schema statements executed at startup. The
// unique keys are load-bearing: (garage_id, slot_date, time_slot) backs the
// idempotent publish and the single-cell claim, and bookings.reference backs
// the collision-retried reference generation.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		role ENUM('CUSTOMER','GARAGE','ADMIN') NOT NULL DEFAULT 'CUSTOMER',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS garages (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		owner_id BIGINT UNSIGNED NOT NULL,
		name VARCHAR(255) NOT NULL,
		postcode VARCHAR(16) NOT NULL,
		approval_status ENUM('PENDING','APPROVED','INFO_REQUESTED','REJECTED') NOT NULL DEFAULT 'PENDING',
		purchased_quota INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_garages_owner (owner_id),
		CONSTRAINT fk_garages_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		customer_id BIGINT UNSIGNED NOT NULL,
		registration VARCHAR(16) NOT NULL,
		make VARCHAR(64) NOT NULL,
		model VARCHAR(64) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_vehicles_customer_reg (customer_id, registration),
		CONSTRAINT fk_vehicles_customer FOREIGN KEY (customer_id) REFERENCES users (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS slots (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		garage_id BIGINT UNSIGNED NOT NULL,
		slot_date DATE NOT NULL,
		time_slot CHAR(11) NOT NULL,
		blocked TINYINT(1) NOT NULL DEFAULT 0,
		booked TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_slots_cell (garage_id, slot_date, time_slot),
		CONSTRAINT fk_slots_garage FOREIGN KEY (garage_id) REFERENCES garages (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		reference CHAR(12) NOT NULL,
		garage_id BIGINT UNSIGNED NOT NULL,
		customer_id BIGINT UNSIGNED NOT NULL,
		vehicle_id BIGINT UNSIGNED NOT NULL,
		slot_date DATE NOT NULL,
		time_slot CHAR(11) NOT NULL,
		status ENUM('PENDING','CONFIRMED','IN_PROGRESS','COMPLETED','CANCELLED','NO_SHOW') NOT NULL DEFAULT 'PENDING',
		review_unlocked TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		confirmed_at DATETIME NULL,
		started_at DATETIME NULL,
		completed_at DATETIME NULL,
		cancelled_at DATETIME NULL,
		no_show_at DATETIME NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_bookings_reference (reference),
		KEY idx_bookings_garage_status (garage_id, status),
		KEY idx_bookings_customer (customer_id),
		CONSTRAINT fk_bookings_garage FOREIGN KEY (garage_id) REFERENCES garages (id),
		CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS email_log (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		booking_id BIGINT UNSIGNED NOT NULL,
		type VARCHAR(32) NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		status ENUM('PENDING','SENT','FAILED') NOT NULL DEFAULT 'PENDING',
		error TEXT NOT NULL,
		attempts INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_email_log_booking (booking_id),
		KEY idx_email_log_retry (status, attempts),
		CONSTRAINT fk_email_log_booking FOREIGN KEY (booking_id) REFERENCES bookings (id)
	) ENGINE=InnoDB`,
}

// Migrate applies the schema statements in order. Every statement is
// idempotent so repeated startups are safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
