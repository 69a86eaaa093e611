// Command main runs the database seeder.
package main

import (
	"flag"
	"log"

	"moeum/internal/config"
	"moeum/internal/database"
	"moeum/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	numComments := flag.Int("comments", 300, "Number of comments to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		Users:    *numUsers,
		Posts:    *numPosts,
		Comments: *numComments,
		Clean:    *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
