package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/VentixeEventManagement/AccountServiceProvider/config"
	"github.com/VentixeEventManagement/AccountServiceProvider/pkg/helpers"
)

// Seeds the base roles and a confirmed admin account for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	var adminRoleID, userRoleID string
	if err := db.QueryRow(`
		INSERT INTO roles (name) VALUES ('Admin')
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id
	`).Scan(&adminRoleID); err != nil {
		log.Fatalf("failed to upsert Admin role: %v", err)
	}
	if err := db.QueryRow(`
		INSERT INTO roles (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id
	`, cfg.DefaultRole).Scan(&userRoleID); err != nil {
		log.Fatalf("failed to upsert %s role: %v", cfg.DefaultRole, err)
	}
	fmt.Printf("roles ensured: Admin=%s %s=%s\n", adminRoleID, cfg.DefaultRole, userRoleID)

	email := "admin@example.com"
	password := "ChangeMe123!"
	hash, err := helpers.NewBcryptHasher().Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO accounts (id, email, user_name, phone_number, password_hash, email_confirmed)
		VALUES ($1, $2, $2, '', $3, TRUE)
		ON CONFLICT (LOWER(email)) DO UPDATE SET updated_at = now()
		RETURNING id
	`, uuid.NewString(), email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin account: %v", err)
	}
	fmt.Printf("seeded account: id=%s email=%s password=%s\n", id, email, password)

	if _, err := db.Exec(`
		INSERT INTO account_roles (account_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id, role_id) DO NOTHING
	`, id, adminRoleID); err != nil {
		log.Fatalf("failed to assign Admin role: %v", err)
	}
	fmt.Println("assigned Admin role to seeded account (if not already)")
}
