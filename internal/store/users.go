// Package store holds the persistence-backed domain logic: credentials,
// content and the vote ledger.
package store

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/auth"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

func (in RegisterInput) normalize() RegisterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	return in
}

func (in RegisterInput) validate() error {
	switch {
	case in.Name == "":
		return models.NewValidationError("Name is required")
	case in.Username == "":
		return models.NewValidationError("Username is required")
	case in.Email == "":
		return models.NewValidationError("Email is required")
	case in.Password == "":
		return models.NewValidationError("Password is required")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return models.NewValidationError("Email is not valid")
	}
	if len(in.Password) < minPasswordLen {
		return models.NewValidationError("Password must be at least 6 characters")
	}
	if len(in.Password) > maxPasswordLen {
		return models.NewValidationError("Password must be at most 72 bytes")
	}
	return nil
}

// UserStore owns user records and credential checks.
type UserStore struct {
	db         *gorm.DB
	newShortID func() string
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db, newShortID: models.NewShortID}
}

// shortIDAttempts bounds how often Register draws a fresh short id after a
// collision on the short_user_id index.
const shortIDAttempts = 3

// Register creates a user after checking username and email are free.
func (s *UserStore) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Username: in.Username,
		Password: hashed,
	}
	for attempt := 1; ; attempt++ {
		user.ID = 0
		user.ShortUserID = s.newShortID()
		err := s.db.WithContext(ctx).Create(&user).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Lost a race with a concurrent registration.
		if dupErr := s.checkDuplicates(ctx, in.Username, in.Email); dupErr != nil {
			return nil, dupErr
		}
		// Otherwise the short id collided.
		if attempt == shortIDAttempts {
			return nil, err
		}
	}
}

func (s *UserStore) checkDuplicates(ctx context.Context, username, email string) error {
	taken, err := s.exists(ctx, "username", username)
	if err != nil {
		return err
	}
	if taken {
		return models.NewDuplicateFieldError("username")
	}
	taken, err = s.exists(ctx, "email", email)
	if err != nil {
		return err
	}
	if taken {
		return models.NewDuplicateFieldError("email")
	}
	return nil
}

// column is always one of the literals passed by this file.
func (s *UserStore) exists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where(column+" = ?", value).
		Count(&count).Error
	return count > 0, err
}

func (s *UserStore) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.exists(ctx, "username", strings.TrimSpace(username))
	return !taken, err
}

func (s *UserStore) EmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.exists(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
	return !taken, err
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// spendDummyCheck takes the same bcrypt time as a real password check.
func spendDummyCheck(password string) {
	dummyHashOnce.Do(func() { dummyHash, _ = auth.HashPassword("not-a-real-password") })
	_, _ = auth.CheckPassword(dummyHash, password)
}

// Authenticate returns the user when username and password match. Unknown
// users and wrong passwords both yield models.ErrBadCredentials.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	// bcrypt only compares the first 72 bytes, so anything longer could
	// match a stored password it does not equal.
	if len(password) > maxPasswordLen {
		spendDummyCheck(password)
		return nil, models.ErrBadCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		spendDummyCheck(password)
		return nil, models.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrBadCredentials
	}
	return &user, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	return s.profile(ctx, "id = ?", id)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return s.profile(ctx, "username = ?", strings.TrimSpace(username))
}

func (s *UserStore) profile(ctx context.Context, query string, arg any) (*models.Profile, error) {
	var profile models.Profile
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select(models.ProfileColumns).
		Where(query, arg).
		Limit(1).
		Find(&profile)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", arg)
	}
	return &profile, nil
}
