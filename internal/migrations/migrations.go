package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema. Every statement is idempotent so the
// migration can execute on every startup. The DDL comes in two dialects
// because tests and dev mode run on SQLite while production runs on
// PostgreSQL.
func Run(db *sqlx.DB) error {
	schema := postgresSchema
	if db.DriverName() == "sqlite" {
		schema = sqliteSchema
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id SERIAL PRIMARY KEY,
        username VARCHAR(100) UNIQUE NOT NULL,
        password_hash VARCHAR(255) NOT NULL,
        role VARCHAR(20) NOT NULL CHECK (role IN ('admin', 'employee')),
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        last_login TIMESTAMP,
        is_active BOOLEAN DEFAULT TRUE
    );`,
	`CREATE TABLE IF NOT EXISTS inventory (
        id SERIAL PRIMARY KEY,
        patient_name VARCHAR(255) NOT NULL,
        patient_id BIGINT NOT NULL,
        administration_location VARCHAR(255) DEFAULT '',
        drug_item_name VARCHAR(255) NOT NULL,
        date_of_service TEXT DEFAULT '',
        date_of_dispense TEXT DEFAULT '',
        date_ordered TEXT DEFAULT '',
        date_received TEXT DEFAULT '',
        order_number BIGINT,
        invoice_number BIGINT,
        po_number BIGINT,
        lot_number BIGINT,
        expiration_date TEXT DEFAULT '',
        inventory_number VARCHAR(50) UNIQUE,
        inventory_type VARCHAR(100) DEFAULT '',
        quantity BIGINT NOT NULL DEFAULT 0,
        purchase_price DECIMAL(10,2) DEFAULT 0,
        provider VARCHAR(255) DEFAULT '',
        location VARCHAR(255) DEFAULT '',
        inventory_site VARCHAR(255) DEFAULT '',
        dose_swap_status BOOLEAN DEFAULT FALSE,
        created_by VARCHAR(100) DEFAULT '',
        updated_by VARCHAR(100) DEFAULT '',
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS documents (
        id SERIAL PRIMARY KEY,
        filename VARCHAR(255) NOT NULL,
        stored_name VARCHAR(255) NOT NULL,
        file_path VARCHAR(500) NOT NULL,
        file_size BIGINT DEFAULT 0,
        file_type VARCHAR(50) DEFAULT '',
        inventory_id BIGINT REFERENCES inventory(id),
        description TEXT DEFAULT '',
        uploaded_by VARCHAR(100) DEFAULT '',
        uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS audit_log (
        id SERIAL PRIMARY KEY,
        table_name VARCHAR(50) NOT NULL,
        record_id BIGINT NOT NULL,
        action VARCHAR(20) NOT NULL,
        old_values TEXT,
        new_values TEXT,
        changed_by VARCHAR(100) DEFAULT '',
        changed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS alert_settings (
        id BIGINT PRIMARY KEY,
        expiry_critical_days INT NOT NULL DEFAULT 7,
        expiry_warning_days INT NOT NULL DEFAULT 30,
        low_stock_threshold BIGINT NOT NULL DEFAULT 5,
        notify_email_enabled BOOLEAN NOT NULL DEFAULT TRUE
    );`,
	`INSERT INTO alert_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING;`,
	`CREATE TABLE IF NOT EXISTS alert_acks (
        record_id BIGINT NOT NULL,
        alert_type VARCHAR(50) NOT NULL,
        acked_by VARCHAR(100) DEFAULT '',
        acked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (record_id, alert_type)
    );`,
	`CREATE TABLE IF NOT EXISTS import_history (
        id SERIAL PRIMARY KEY,
        filename VARCHAR(255) NOT NULL,
        total_rows INT NOT NULL DEFAULT 0,
        imported INT NOT NULL DEFAULT 0,
        failed INT NOT NULL DEFAULT 0,
        imported_by VARCHAR(100) DEFAULT '',
        imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('admin', 'employee')),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        last_login DATETIME,
        is_active BOOLEAN DEFAULT TRUE
    );`,
	`CREATE TABLE IF NOT EXISTS inventory (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        patient_name TEXT NOT NULL,
        patient_id INTEGER NOT NULL,
        administration_location TEXT DEFAULT '',
        drug_item_name TEXT NOT NULL,
        date_of_service TEXT DEFAULT '',
        date_of_dispense TEXT DEFAULT '',
        date_ordered TEXT DEFAULT '',
        date_received TEXT DEFAULT '',
        order_number INTEGER,
        invoice_number INTEGER,
        po_number INTEGER,
        lot_number INTEGER,
        expiration_date TEXT DEFAULT '',
        inventory_number TEXT UNIQUE,
        inventory_type TEXT DEFAULT '',
        quantity INTEGER NOT NULL DEFAULT 0,
        purchase_price REAL DEFAULT 0,
        provider TEXT DEFAULT '',
        location TEXT DEFAULT '',
        inventory_site TEXT DEFAULT '',
        dose_swap_status BOOLEAN DEFAULT FALSE,
        created_by TEXT DEFAULT '',
        updated_by TEXT DEFAULT '',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS documents (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        filename TEXT NOT NULL,
        stored_name TEXT NOT NULL,
        file_path TEXT NOT NULL,
        file_size INTEGER DEFAULT 0,
        file_type TEXT DEFAULT '',
        inventory_id INTEGER REFERENCES inventory(id),
        description TEXT DEFAULT '',
        uploaded_by TEXT DEFAULT '',
        uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS audit_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        table_name TEXT NOT NULL,
        record_id INTEGER NOT NULL,
        action TEXT NOT NULL,
        old_values TEXT,
        new_values TEXT,
        changed_by TEXT DEFAULT '',
        changed_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS alert_settings (
        id INTEGER PRIMARY KEY,
        expiry_critical_days INTEGER NOT NULL DEFAULT 7,
        expiry_warning_days INTEGER NOT NULL DEFAULT 30,
        low_stock_threshold INTEGER NOT NULL DEFAULT 5,
        notify_email_enabled BOOLEAN NOT NULL DEFAULT TRUE
    );`,
	`INSERT OR IGNORE INTO alert_settings (id) VALUES (1);`,
	`CREATE TABLE IF NOT EXISTS alert_acks (
        record_id INTEGER NOT NULL,
        alert_type TEXT NOT NULL,
        acked_by TEXT DEFAULT '',
        acked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (record_id, alert_type)
    );`,
	`CREATE TABLE IF NOT EXISTS import_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        filename TEXT NOT NULL,
        total_rows INTEGER NOT NULL DEFAULT 0,
        imported INTEGER NOT NULL DEFAULT 0,
        failed INTEGER NOT NULL DEFAULT 0,
        imported_by TEXT DEFAULT '',
        imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );`,
}
