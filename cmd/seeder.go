package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"signups", "events", "attachments", "publication_requests", "users"} {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		now := time.Now().UTC()

		users := []struct {
			Username   string
			Email      string
			Type       string
			Department string
		}{
			{"admin", "admin@campus.example", "admin", ""},
			{"astrid", "astrid@campus.example", "staff", "computer-science"},
			{"jonas", "jonas@campus.example", "student", "mathematics"},
		}

		for _, u := range users {
			var exists int
			if err := db.QueryRow(db.Rebind("SELECT 1 FROM users WHERE username = ?"), u.Username).Scan(&exists); err == nil {
				fmt.Println("user already exists, skipping:", u.Username)
				continue
			}

			var dept interface{}
			if u.Department != "" {
				dept = u.Department
			}
			_, err := db.Exec(
				db.Rebind(`INSERT INTO users (id, username, email, password_hash, type, department, is_active, must_change_password, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, true, false, ?, ?)`),
				uuid.NewString(), u.Username, u.Email, string(hash), u.Type, dept, now, now)
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Username, err)
			}
			fmt.Println("Seeded user:", u.Username)
		}

		var submitterID string
		if err := db.QueryRow(db.Rebind("SELECT id FROM users WHERE username = ?"), "jonas").Scan(&submitterID); err != nil {
			log.Fatalf("failed to look up seed submitter: %v", err)
		}

		requests := []struct {
			Title        string
			Author       string
			Organization string
			Status       string
		}{
			{"Spring Hackathon", "Jonas Berg", "CS Student Society", "pending"},
			{"Career Fair 2026", "Astrid Lund", "Career Services", "approved"},
			{"Board Game Night", "Jonas Berg", "Student Union", "rejected"},
		}

		for _, r := range requests {
			var exists int
			if err := db.QueryRow(db.Rebind("SELECT 1 FROM publication_requests WHERE title = ?"), r.Title).Scan(&exists); err == nil {
				fmt.Println("request already exists, skipping:", r.Title)
				continue
			}

			start := now.Add(14 * 24 * time.Hour)
			end := start.Add(3 * time.Hour)
			isVisible := r.Status == "approved"
			_, err := db.Exec(
				db.Rebind(`INSERT INTO publication_requests
				 (id, title, author, organization, email, location, on_campus, date, start_time, end_time, start_at, end_at,
				  description, departments_json, publish_all, status, feedback, is_visible, submitter_id, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, 'Main Hall', true, ?, ?, ?, ?, ?, 'Sample seeded event.', '[]', true, ?, '', ?, ?, ?, ?)`),
				uuid.NewString(), r.Title, r.Author, r.Organization, "jonas@campus.example",
				start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04"), start, end,
				r.Status, isVisible, submitterID, now, now)
			if err != nil {
				log.Fatalf("failed to insert request %s: %v", r.Title, err)
			}
			fmt.Println("Seeded request:", r.Title)
		}

		fmt.Println("Seeding complete; login with any seeded username and password:", password)
	},
}
