package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"eshop/app/models"
	"eshop/app/services"
	"eshop/pkg/auth"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]models.User{}}
}

func (s *fakeUserStore) FindAll(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (s *fakeUserStore) Insert(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) Update(ctx context.Context, id primitive.ObjectID, name, email, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	user.Name = name
	user.Email = email
	user.PasswordHash = passwordHash
	s.users[id] = user
	return user, nil
}

func (s *fakeUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func registerAlice(t *testing.T, svc *services.UserService) models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), services.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "sekret99",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterStoresBcryptHash(t *testing.T) {
	store := newFakeUserStore()
	svc := services.NewUserService(store)

	user := registerAlice(t, svc)

	stored, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "sekret99", stored.PasswordHash, "password must never be stored in the clear")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("sekret99")))
}

func TestLoginReturnsValidToken(t *testing.T) {
	store := newFakeUserStore()
	svc := services.NewUserService(store)
	user := registerAlice(t, svc)

	got, token, err := svc.Login(context.Background(), services.LoginInput{
		Email:    "alice@example.com",
		Password: "sekret99",
	})
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.False(t, claims.IsAdmin)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := services.NewUserService(newFakeUserStore())

	_, token, err := svc.Login(context.Background(), services.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	assert.Empty(t, token)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := services.NewUserService(store)
	registerAlice(t, svc)

	_, token, err := svc.Login(context.Background(), services.LoginInput{
		Email:    "alice@example.com",
		Password: "not-the-password",
	})
	assert.ErrorIs(t, err, services.ErrWrongPassword)
	assert.Empty(t, token)
}

// Update with an empty password keeps the stored hash untouched, so
// the user's existing credentials keep working.
func TestUpdateWithoutPasswordKeepsHash(t *testing.T) {
	store := newFakeUserStore()
	svc := services.NewUserService(store)
	user := registerAlice(t, svc)

	before, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, services.UpdateUserInput{
		Name:  "Alice Cooper",
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	after, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, "Alice Cooper", after.Name)
}

func TestUpdateWithPasswordRehashes(t *testing.T) {
	store := newFakeUserStore()
	svc := services.NewUserService(store)
	user := registerAlice(t, svc)

	before, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, services.UpdateUserInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "brand-new-pass",
	})
	require.NoError(t, err)

	after, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(after.PasswordHash), []byte("brand-new-pass")))

	_, _, err = svc.Login(context.Background(), services.LoginInput{
		Email:    "alice@example.com",
		Password: "sekret99",
	})
	assert.ErrorIs(t, err, services.ErrWrongPassword)
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := services.NewUserService(newFakeUserStore())

	_, err := svc.Update(context.Background(), primitive.NewObjectID(), services.UpdateUserInput{
		Name:  "Ghost",
		Email: "ghost@example.com",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	store := newFakeUserStore()
	svc := services.NewUserService(store)
	user := registerAlice(t, svc)

	require.NoError(t, svc.Delete(context.Background(), user.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), user.ID), models.ErrNotFound)
}

func TestUserCount(t *testing.T) {
	store := newFakeUserStore()
	svc := services.NewUserService(store)
	registerAlice(t, svc)

	n, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
