// Package seed provides helpers to create development and demo data.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"devconnect/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with realistic sample data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded rows. Child tables go first so foreign keys
// never block the deletes.
func (s *Seeder) ClearAll() error {
	tables := []string{"likes", "comments", "posts", "experiences", "educations", "profiles", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// Run seeds users with profiles, then a feed of posts with likes and comments.
func (s *Seeder) Run(opts Options) error {
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		users = append(users, user)

		// most users fill out a profile, some never do
		if rand.Intn(10) < 8 {
			if _, err := s.factory.CreateProfile(user); err != nil {
				return fmt.Errorf("creating profile: %w", err)
			}
		}
	}
	log.Printf("Created %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[rand.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return fmt.Errorf("creating post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Created %d posts", len(posts))

	likes, comments := 0, 0
	for _, post := range posts {
		for _, user := range pickUsers(users, rand.Intn(6)) {
			if err := s.factory.LikePost(post, user); err != nil {
				return fmt.Errorf("liking post: %w", err)
			}
			likes++
		}
		for _, user := range pickUsers(users, rand.Intn(4)) {
			if err := s.factory.CommentOnPost(post, user); err != nil {
				return fmt.Errorf("commenting on post: %w", err)
			}
			comments++
		}
	}
	log.Printf("Created %d likes, %d comments", likes, comments)

	return nil
}

// pickUsers returns up to n distinct users.
func pickUsers(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	perm := rand.Perm(len(users))
	picked := make([]*models.User, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, users[idx])
	}
	return picked
}
