package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/olehvasylenko/contacts-api/config"
	"github.com/olehvasylenko/contacts-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "password123"
	username := "demoUser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (username, email, password, avatar, confirmed)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (email) DO UPDATE SET confirmed = TRUE
		RETURNING id
	`, username, email, hash, helpers.GravatarURL(email, 200)).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	today := time.Now()
	contacts := []struct {
		first, last, email, phone string
		birthday                  time.Time
	}{
		{"Alice", "Anderson", "alice@example.com", "+1-555-0100", today.AddDate(-30, 0, 2)},
		{"Bob", "Brown", "bob@example.com", "+1-555-0101", today.AddDate(-25, 0, 5)},
		{"Carol", "Clark", "carol@example.com", "+1-555-0102", time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range contacts {
		var id string
		err := db.QueryRow(`
			INSERT INTO contacts (first_name, last_name, email, phone_number, birthday, user_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, c.first, c.last, c.email, c.phone, c.birthday, userID).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed contact %s: %v", c.email, err)
		}
		fmt.Printf("seeded contact: id=%s email=%s\n", id, c.email)
	}
}
