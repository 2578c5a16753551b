package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/testutil"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

type fixture struct {
	db      *gorm.DB
	users   *UserStore
	content *ContentStore
	ledger  *VoteLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return &fixture{
		db:      db,
		users:   NewUserStore(db),
		content: NewContentStore(db, nil),
		ledger:  NewVoteLedger(db, nil),
	}
}

func (f *fixture) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Name:     "User " + username,
		Email:    username + "@example.com",
		Username: username,
		Password: "secret-password",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, authorID int, title string) *models.Post {
	t.Helper()
	p, err := f.content.AddPost(context.Background(), NewPost{
		AuthorID: authorID,
		Title:    title,
		Content:  "body of " + title,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) comment(t *testing.T, authorID, postID int, content string) *models.Comment {
	t.Helper()
	c, err := f.content.AddComment(context.Background(), NewComment{
		AuthorID: authorID,
		PostID:   postID,
		Content:  content,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
