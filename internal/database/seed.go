package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a staff
// account, a lecturer account, a few categories and tags. It is a no-op
// when any account already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return fmt.Errorf("seed check accounts: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	accounts := []struct {
		id    int16
		name  string
		email string
		role  int
	}{
		{1, "Sample Staff", "staff@newsroom.local", 1},
		{2, "Sample Lecturer", "lecturer@newsroom.local", 2},
	}
	for _, a := range accounts {
		_, err := db.Exec(`
			INSERT INTO accounts (id, name, email, role, password_hash)
			VALUES ($1, $2, $3, $4, $5)
		`, a.id, a.name, a.email, a.role, string(hash))
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.email, err)
		}
	}

	categories := []struct {
		name, desc string
	}{
		{"General", "General campus news"},
		{"Technology", "Technology and lab news"},
		{"Events", "Upcoming events and announcements"},
	}
	for _, c := range categories {
		if _, err := db.Exec(`
			INSERT INTO categories (name, description, is_active)
			VALUES ($1, $2, TRUE)
		`, c.name, c.desc); err != nil {
			return fmt.Errorf("seed category %s: %w", c.name, err)
		}
	}

	tags := []struct {
		id   int
		name string
	}{
		{1, "Breaking"},
		{2, "Announcement"},
		{3, "Research"},
	}
	for _, t := range tags {
		if _, err := db.Exec(`
			INSERT INTO tags (id, name) VALUES ($1, $2)
		`, t.id, t.name); err != nil {
			return fmt.Errorf("seed tag %s: %w", t.name, err)
		}
	}

	slog.Info("database seeded with development data",
		"staff", "staff@newsroom.local",
		"lecturer", "lecturer@newsroom.local",
		"password", "changeme",
	)
	return nil
}
