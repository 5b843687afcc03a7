package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/model"
)

type mockUserRepo struct {
	byEmail map[string]*model.User
	byID    map[uuid.UUID]*model.User
	roles   map[string]*model.Role
	avatars map[uuid.UUID][]byte
}

func newMockUserRepo() *mockUserRepo {
	customerRole := &model.Role{ID: uuid.New(), Name: model.RoleCustomer}
	return &mockUserRepo{
		byEmail: make(map[string]*model.User),
		byID:    make(map[uuid.UUID]*model.User),
		roles:   map[string]*model.Role{model.RoleCustomer: customerRole},
		avatars: make(map[uuid.UUID][]byte),
	}
}

func (m *mockUserRepo) add(user *model.User) {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.add(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.byID[id], nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.byEmail[email], nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	for email, u := range m.byEmail {
		if u.ID == user.ID && email != user.Email {
			delete(m.byEmail, email)
		}
	}
	m.add(user)
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if user, ok := m.byID[id]; ok {
		delete(m.byEmail, user.Email)
		delete(m.byID, id)
	}
	return nil
}

func (m *mockUserRepo) UpdateAvatar(_ context.Context, id uuid.UUID, avatar []byte) error {
	m.avatars[id] = avatar
	return nil
}

func (m *mockUserRepo) GetAvatar(_ context.Context, id uuid.UUID) ([]byte, error) {
	return m.avatars[id], nil
}

func (m *mockUserRepo) GetRoleByName(_ context.Context, name string) (*model.Role, error) {
	return m.roles[name], nil
}

func TestAuthService_Register(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, "customer", resp.User.Role)

	stored := repo.byEmail["jane@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.Password)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	repo.add(&model.User{ID: uuid.New(), Email: "jane@example.com"})

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	repo.add(&model.User{
		ID: uuid.New(), Email: "jane@example.com", Password: string(hashed), Role: "customer",
	})

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	repo.add(&model.User{ID: uuid.New(), Email: "jane@example.com", Password: string(hashed)})

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "jane@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(), "test-secret", time.Hour)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "nobody@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
