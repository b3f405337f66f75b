package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// seed creates or refreshes the bootstrap admin account.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	username := getenvDefault("SEED_ADMIN_USERNAME", "admin")
	email := getenvDefault("SEED_ADMIN_EMAIL", "admin@example.com")
	password := getenvDefault("SEED_ADMIN_PASSWORD", "ChangeMe123!")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	query := `
		INSERT INTO users (username, email, hashed_password, role, is_active, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, 'admin', TRUE, TRUE, $4, $4)
		ON CONFLICT ((LOWER(email))) DO UPDATE SET
			hashed_password = EXCLUDED.hashed_password,
			role = 'admin',
			is_active = TRUE,
			is_superuser = TRUE,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	now := time.Now().UTC()
	var id int64
	if err := db.QueryRow(query, username, email, string(hash), now).Scan(&id); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	fmt.Printf("Seeded admin: username=%s email=%s id=%d\n", username, email, id)
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
