package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	// One statement per Exec, so any DB_DSN works without multiStatements.
	statements := map[string]string{
		"orders": `
	CREATE TABLE IF NOT EXISTS orders (
	  id BIGINT NOT NULL AUTO_INCREMENT,
	  order_key VARCHAR(64) NOT NULL,
	  status VARCHAR(32) NOT NULL,
	  total_cents BIGINT NOT NULL,
	  currency CHAR(3) NOT NULL,
	  billing_first_name VARCHAR(100) NOT NULL,
	  billing_last_name VARCHAR(100) NOT NULL,
	  transaction_id VARCHAR(64) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  paid_at DATETIME(3) NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_orders_order_key (order_key)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		"order_meta": `
	CREATE TABLE IF NOT EXISTS order_meta (
	  id BIGINT NOT NULL AUTO_INCREMENT,
	  order_id BIGINT NOT NULL,
	  meta_key VARCHAR(64) NOT NULL,
	  meta_value VARCHAR(255) NOT NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_order_meta_order_key (order_id, meta_key),
	  CONSTRAINT fk_order_meta_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		"order_notes": `
	CREATE TABLE IF NOT EXISTS order_notes (
	  id CHAR(36) NOT NULL,
	  order_id BIGINT NOT NULL,
	  note VARCHAR(500) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_order_notes_order_id (order_id),
	  CONSTRAINT fk_order_notes_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		"ipn_events": `
	CREATE TABLE IF NOT EXISTS ipn_events (
	  id CHAR(36) NOT NULL,
	  order_id BIGINT NULL,
	  status VARCHAR(32) NOT NULL,
	  tid VARCHAR(32) NOT NULL,
	  mpay_tid VARCHAR(64) NOT NULL,
	  remote_addr VARCHAR(45) NOT NULL,
	  payload_json JSON NOT NULL,
	  outcome VARCHAR(16) NOT NULL,
	  detail VARCHAR(255) NULL,
	  received_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_ipn_events_order_id (order_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	// Creation order matters for the foreign keys.
	for _, table := range []string{"orders", "order_meta", "order_notes", "ipn_events"} {
		if _, err := sqlDB.Exec(statements[table]); err != nil {
			log.Fatalf("Failed to create %s table: %v", table, err)
		}
		log.Printf("✓ %s table created successfully", table)
	}
}
