// Command seed fills a development database with fake users, posts,
// comments and votes.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/observability"
	"github.com/emilythestrangee/forum/backend/internal/store"
)

// seedPassword is shared by every generated account.
const seedPassword = "password123"

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 50, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		observability.Logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := observability.InitLogger(cfg.LogLevel)

	db, err := database.New(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	s := seeder{
		users:   store.NewUserStore(db.GetDB()),
		content: store.NewContentStore(db.GetDB(), nil),
		ledger:  store.NewVoteLedger(db.GetDB(), nil),
	}
	if err := s.run(context.Background(), *numUsers, *numPosts, *maxComments); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seeding complete", "users", *numUsers, "posts", *numPosts, "password", seedPassword)
}

type seeder struct {
	users   *store.UserStore
	content *store.ContentStore
	ledger  *store.VoteLedger
}

func (s seeder) run(ctx context.Context, numUsers, numPosts, maxComments int) error {
	if numUsers <= 0 {
		return fmt.Errorf("need at least one user")
	}
	maxComments = max(maxComments, 0)

	userIDs := make([]int, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		u, err := s.users.Register(ctx, store.RegisterInput{
			Name:     gofakeit.Name(),
			Email:    fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Password: seedPassword,
		})
		if err != nil {
			return fmt.Errorf("user %d: %w", i, err)
		}
		userIDs = append(userIDs, u.ID)
	}

	pick := func() int { return userIDs[rand.IntN(len(userIDs))] }

	for i := 0; i < numPosts; i++ {
		post, err := s.content.AddPost(ctx, store.NewPost{
			AuthorID: pick(),
			Title:    gofakeit.Sentence(5),
			Content:  gofakeit.Paragraph(1, 3, 5, "\n"),
			ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		})
		if err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}

		for j := rand.IntN(maxComments + 1); j > 0; j-- {
			comment, err := s.content.AddComment(ctx, store.NewComment{
				AuthorID: pick(),
				PostID:   post.ID,
				Content:  gofakeit.Sentence(12),
			})
			if err != nil {
				return fmt.Errorf("comment on post %d: %w", post.ID, err)
			}
			if _, err := s.ledger.Vote(ctx, models.TargetComment, comment.ID, pick(), randomDirection()); err != nil {
				return err
			}
		}

		for _, voter := range rand.Perm(len(userIDs))[:rand.IntN(len(userIDs)+1)] {
			if _, err := s.ledger.Vote(ctx, models.TargetPost, post.ID, userIDs[voter], randomDirection()); err != nil {
				return err
			}
		}
	}
	return nil
}

// randomDirection favours upvotes three to one.
func randomDirection() models.Direction {
	if rand.IntN(4) == 0 {
		return models.Downvote
	}
	return models.Upvote
}
