// Command seed populates a development database with demo data.
package main

import (
	"flag"
	"log"

	"atheneum/internal/config"
	"atheneum/internal/database"
	"atheneum/internal/seed"
)

func main() {
	numAuthors := flag.Int("authors", 10, "number of author accounts to create")
	numPosts := flag.Int("posts", 50, "number of posts to create across all workflow statuses")
	numQuizzes := flag.Int("quizzes", 5, "number of quizzes to create")
	clean := flag.Bool("clean", false, "delete existing data before seeding")
	preset := flag.String("preset", "", "path to a YAML preset file; overrides the random generators")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *preset != "" {
		p, err := seed.LoadPreset(*preset)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		if err := p.Apply(db); err != nil {
			log.Fatalf("Failed to apply preset: %v", err)
		}
		log.Printf("preset %s applied", *preset)
		return
	}

	if err := seed.Seed(db, seed.Options{
		NumAuthors:  *numAuthors,
		NumPosts:    *numPosts,
		NumQuizzes:  *numQuizzes,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
