package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/app/models"
	"eshop/pkg/auth"
	"eshop/pkg/metrics"
)

// ErrUserNotFound is returned by Login for an unknown email.
var ErrUserNotFound = errors.New("user not found")

// ErrWrongPassword is returned by Login when the password does not match.
var ErrWrongPassword = errors.New("password is wrong")

// UserStore is the persistence surface UserService needs.
type UserStore interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Insert(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, name, email, passwordHash string) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateUserInput is the user-update request body. Password is
// optional: when empty the stored hash is retained unchanged.
type UpdateUserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserService implements the user operations.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// List returns all users. The password hash never serialises.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.FindAll(ctx)
}

// Get returns one user by id.
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.users.FindByID(ctx, id)
}

// Register hashes the plaintext password and persists the new user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.Insert(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, errors.Join(ErrSaveFailed, err)
	}
	return user, nil
}

// Update persists name, email, and the resolved password hash: the new
// password's hash when one was supplied, otherwise the existing stored
// hash, byte for byte.
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, in UpdateUserInput) (models.User, error) {
	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	hash := existing.PasswordHash
	if in.Password != "" {
		hash, err = auth.HashPassword(in.Password)
		if err != nil {
			return models.User{}, err
		}
	}

	return s.users.Update(ctx, id, in.Name, in.Email, hash)
}

// Login verifies credentials and issues a signed bearer token carrying
// the user's id and admin flag.
func (s *UserService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.Logins.WithLabelValues("not_found").Inc()
			return models.User{}, "", ErrUserNotFound
		}
		return models.User{}, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		metrics.Logins.WithLabelValues("wrong_password").Inc()
		return models.User{}, "", ErrWrongPassword
	}

	token, err := auth.GenerateToken(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		return models.User{}, "", err
	}

	metrics.Logins.WithLabelValues("success").Inc()
	return user, token, nil
}

// Delete removes a user by id.
func (s *UserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.users.Delete(ctx, id)
}

// Count returns the number of users.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}
