package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/salatech/promotion-service/internal/config"
	"github.com/salatech/promotion-service/internal/database"
	"github.com/salatech/promotion-service/internal/logger"
	"github.com/salatech/promotion-service/internal/model"
)

// Seeds a demo school with two academic years, a full grade ladder including
// tracked classes, students spread across the source year, and one admin
// (admin@demo.sch.id / password123). Intended for local development only.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding Demo School ===")

	schoolID := uuid.New()
	if _, err := pool.Exec(ctx,
		`INSERT INTO schools (id, name) VALUES ($1, $2)`,
		schoolID, "SMA Demo Nusantara",
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to create school")
	}
	fmt.Printf("School: %s\n", schoolID)

	sourceYearID := uuid.New()
	targetYearID := uuid.New()
	years := []struct {
		id        uuid.UUID
		name      string
		start     time.Time
		status    model.YearStatus
		isCurrent bool
	}{
		{sourceYearID, "2025/2026", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), model.YearActive, true},
		{targetYearID, "2026/2027", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), model.YearPlanning, false},
	}
	for _, y := range years {
		if _, err := pool.Exec(ctx,
			`INSERT INTO academic_years (id, school_id, name, start_date, end_date, status, is_current)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			y.id, schoolID, y.name, y.start, y.start.AddDate(1, 0, -1), y.status, y.isCurrent,
		); err != nil {
			log.Fatal().Err(err).Str("year", y.name).Msg("Failed to create academic year")
		}
	}
	fmt.Printf("Years: %s (source), %s (target)\n", sourceYearID, targetYearID)

	type classSpec struct {
		name  string
		grade int
		track model.Track
	}
	ladder := []classSpec{
		{"10-A", 10, model.TrackNone},
		{"10-B", 10, model.TrackNone},
		{"11-SCI-A", 11, model.TrackScience},
		{"11-SOC-A", 11, model.TrackSocial},
		{"12-SCI-A", 12, model.TrackScience},
		{"12-SOC-A", 12, model.TrackSocial},
	}

	sourceClasses := make(map[string]uuid.UUID, len(ladder))
	for _, yearID := range []uuid.UUID{sourceYearID, targetYearID} {
		for _, spec := range ladder {
			id := uuid.New()
			var track *string
			if spec.track != model.TrackNone {
				t := string(spec.track)
				track = &t
			}
			if _, err := pool.Exec(ctx,
				`INSERT INTO classes (id, school_id, academic_year_id, name, grade, track)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				id, schoolID, yearID, spec.name, spec.grade, track,
			); err != nil {
				log.Fatal().Err(err).Str("class", spec.name).Msg("Failed to create class")
			}
			if yearID == sourceYearID {
				sourceClasses[spec.name] = id
			}
		}
	}
	fmt.Printf("Classes: %d per year\n", len(ladder))

	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
		"Hendra Gunawan", "Ika Sari", "Jamal Mirdad", "Kiki Fatmala", "Lukman Hakim",
		"Maya Septiana", "Nanda Pratama", "Oki Setiana", "Putri Dian", "Qori Maharani",
		"Rafi Ahmad", "Siska Saraswati", "Toni Setiawan", "Umi Kalsum", "Vina Panduwinata",
		"Wahyu Hidayat", "Xena Maharani", "Yudi Pratama", "Zaki Anwar", "Alifia Zahra",
	}

	created := 0
	for i, name := range names {
		classID := sourceClasses[ladder[i%len(ladder)].name]
		if _, err := pool.Exec(ctx,
			`INSERT INTO students (id, school_id, name, current_class_id) VALUES ($1, $2, $3, $4)`,
			uuid.New(), schoolID, name, classID,
		); err != nil {
			fmt.Printf("Error creating student %s: %v\n", name, err)
			continue
		}
		created++
	}
	// One unassigned student so the wizard's unassigned counter is visible.
	if _, err := pool.Exec(ctx,
		`INSERT INTO students (id, school_id, name, current_class_id) VALUES ($1, $2, $3, NULL)`,
		uuid.New(), schoolID, "Murid Tanpa Kelas",
	); err == nil {
		created++
	}
	fmt.Printf("Students: %d\n", created)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash demo password")
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO admins (id, school_id, email, name, password_hash) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), schoolID, "admin@demo.sch.id", "Demo Admin", string(hash),
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Println("\nSeed completed! Login with admin@demo.sch.id / password123")
}
