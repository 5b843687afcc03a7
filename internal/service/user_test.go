package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rexrel213/music-store-finally/internal/dto"
	"github.com/rexrel213/music-store-finally/internal/model"
)

func strptr(s string) *string { return &s }

func TestUserService_UpdateProfile_ChangesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.DefaultCost)
	user := &model.User{ID: uuid.New(), Email: "jane@example.com", Password: string(hashed)}
	repo.add(user)

	err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileRequest{
		Password: &dto.PasswordUpdate{OldPassword: "oldpassword", NewPassword: "newpassword"},
	})
	require.NoError(t, err)

	err = bcrypt.CompareHashAndPassword([]byte(repo.byID[user.ID].Password), []byte("newpassword"))
	assert.NoError(t, err)
}

func TestUserService_UpdateProfile_WrongOldPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.DefaultCost)
	user := &model.User{ID: uuid.New(), Email: "jane@example.com", Password: string(hashed)}
	repo.add(user)

	err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileRequest{
		Password: &dto.PasswordUpdate{OldPassword: "guess", NewPassword: "newpassword"},
	})
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestUserService_UpdateProfile_EmailTaken(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	user := &model.User{ID: uuid.New(), Email: "jane@example.com"}
	repo.add(user)
	repo.add(&model.User{ID: uuid.New(), Email: "taken@example.com"})

	err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileRequest{
		Email: strptr("taken@example.com"),
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Avatar_NotFound(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	user := &model.User{ID: uuid.New(), Email: "jane@example.com"}
	repo.add(user)

	_, err := svc.Avatar(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrAvatarNotFound)
}

func TestUserService_Avatar(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	user := &model.User{ID: uuid.New(), Email: "jane@example.com"}
	repo.add(user)
	require.NoError(t, svc.UploadAvatar(context.Background(), user.ID, []byte{0x89, 0x50}))

	data, err := svc.Avatar(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50}, data)
}
