package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

type mockUserRepo struct {
	createFn     func(ctx context.Context, user *domain.User) error
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	updateFn     func(ctx context.Context, user *domain.User) error
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	setPictureFn func(ctx context.Context, id uuid.UUID, url string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = uuid.New()
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) SetProfilePicture(ctx context.Context, id uuid.UUID, url string) error {
	if m.setPictureFn != nil {
		return m.setPictureFn(ctx, id, url)
	}
	return nil
}

func (m *mockUserRepo) SetBillingLink(ctx context.Context, id uuid.UUID, customerID, subscriptionID, plan *string) error {
	return nil
}

type mockPictureStore struct {
	uploadFn func(ctx context.Context, file io.Reader, filename string, size int64, folder string) (string, error)
	deleted  []string
}

func (m *mockPictureStore) UploadImage(ctx context.Context, file io.Reader, filename string, size int64, folder string) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, file, filename, size, folder)
	}
	return "http://files/avatars/" + filename, nil
}

func (m *mockPictureStore) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

func newTestService(repo domain.UserRepository) *UserService {
	return NewUserService(repo, &mockPictureStore{}, "test-secret", time.Hour)
}

func TestRegister_DefaultsToListener(t *testing.T) {
	var created *domain.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *domain.User) error {
			user.ID = uuid.New()
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	user, token, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "New@Example.COM ",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.RoleListener, user.Role)
	assert.Equal(t, "new@example.com", created.Email)
	assert.Equal(t, "new@example.com", created.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret")))
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "a@b.c",
		Password: "secret",
		Role:     domain.Role(9),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := newTestService(repo)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailHidesExistence(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@b.c", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestGoogleLogin_CreatesAccountOnFirstSignIn(t *testing.T) {
	var created *domain.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *domain.User) error {
			user.ID = uuid.New()
			created = user
			return nil
		},
	}
	svc := newTestService(repo)
	svc.googleTokenValidator = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Claims: map[string]interface{}{
			"email": "Singer@Example.com",
			"name":  "Singer",
		}}, nil
	}

	user, token, err := svc.GoogleLogin(context.Background(), "client-id", GoogleLoginRequest{Token: "tok"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "singer@example.com", created.Email)
	assert.Equal(t, "Singer", created.Username)
	assert.Equal(t, domain.RoleListener, user.Role)
}

func TestGoogleLogin_ExistingAccountIsNotRecreated(t *testing.T) {
	existing := &domain.User{ID: uuid.New(), Email: "singer@example.com", Role: domain.RoleArtist}
	repo := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, user *domain.User) error {
			t.Fatal("existing account should not be recreated")
			return nil
		},
	}
	svc := newTestService(repo)
	svc.googleTokenValidator = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Claims: map[string]interface{}{"email": "singer@example.com"}}, nil
	}

	user, _, err := svc.GoogleLogin(context.Background(), "client-id", GoogleLoginRequest{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
}

func TestUploadProfilePicture_StoresURLAndCleansUpOldOne(t *testing.T) {
	id := uuid.New()
	oldURL := "http://files/avatars/old.jpg"
	var storedURL string
	repo := &mockUserRepo{
		getByIDFn: func(ctx context.Context, got uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id, ProfilePictureURL: &oldURL}, nil
		},
		setPictureFn: func(ctx context.Context, got uuid.UUID, url string) error {
			storedURL = url
			return nil
		},
	}
	files := &mockPictureStore{}
	svc := NewUserService(repo, files, "test-secret", time.Hour)

	user, err := svc.UploadProfilePicture(context.Background(), id, strings.NewReader("img"), "me.jpg", 3)
	require.NoError(t, err)
	assert.Equal(t, "http://files/avatars/me.jpg", storedURL)
	require.NotNil(t, user.ProfilePictureURL)
	assert.Equal(t, storedURL, *user.ProfilePictureURL)
	assert.Equal(t, []string{oldURL}, files.deleted)
}

func TestUploadProfilePicture_DeletesBlobWhenPersistFails(t *testing.T) {
	id := uuid.New()
	repo := &mockUserRepo{
		getByIDFn: func(ctx context.Context, got uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
		setPictureFn: func(ctx context.Context, got uuid.UUID, url string) error {
			return errors.New("store down")
		},
	}
	files := &mockPictureStore{}
	svc := NewUserService(repo, files, "test-secret", time.Hour)

	_, err := svc.UploadProfilePicture(context.Background(), id, strings.NewReader("img"), "me.jpg", 3)
	require.Error(t, err)
	assert.Equal(t, []string{"http://files/avatars/me.jpg"}, files.deleted)
}

func TestUpdateProfile_RehashesPassword(t *testing.T) {
	id := uuid.New()
	repo := &mockUserRepo{
		getByIDFn: func(ctx context.Context, got uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id, Email: "a@b.c", Role: domain.RoleListener}, nil
		},
	}
	svc := newTestService(repo)

	pw := "newsecret"
	user, err := svc.UpdateProfile(context.Background(), id, UpdateProfileRequest{Password: &pw})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newsecret")))
}
