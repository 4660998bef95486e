package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/soundrift/soundrift/internal/shared/utils"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

type RegisterRequest struct {
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	Email    *string      `json:"email"`
	Username *string      `json:"username"`
	Password *string      `json:"password"`
	Role     *domain.Role `json:"role"`
}

// PictureStore is the slice of the file service identity needs.
type PictureStore interface {
	UploadImage(ctx context.Context, file io.Reader, filename string, size int64, folder string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

type UserService struct {
	repo      domain.UserRepository
	files     PictureStore
	jwtSecret string
	jwtExpiry time.Duration

	// overridable in tests
	googleTokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

func NewUserService(repo domain.UserRepository, files PictureStore, jwtSecret string, jwtExpiry time.Duration) *UserService {
	return &UserService{
		repo:                 repo,
		files:                files,
		jwtSecret:            jwtSecret,
		jwtExpiry:            jwtExpiry,
		googleTokenValidator: idtoken.Validate,
	}
}

// Register creates a new account. Role defaults to listener when unset.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, string, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, "", errors.New("email and password are required")
	}
	if req.Username == "" {
		req.Username = req.Email
	}
	if req.Role == 0 {
		req.Role = domain.RoleListener
	}
	if !req.Role.Valid() {
		return nil, "", domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, int(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, int(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GoogleLogin validates a Google ID token and signs the user in, creating an
// account on first login.
func (s *UserService) GoogleLogin(ctx context.Context, googleClientID string, req GoogleLoginRequest) (*domain.User, string, error) {
	validate := s.googleTokenValidator
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(ctx, req.Token, googleClientID)
	if err != nil {
		return nil, "", errors.New("invalid google token")
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, "", errors.New("google token missing email claim")
	}
	email = strings.ToLower(email)

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		name, _ := payload.Claims["name"].(string)
		if name == "" {
			name = email
		}
		user = &domain.User{
			Email:        email,
			Username:     name,
			PasswordHash: "",
			Role:         domain.RoleListener,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, "", err
		}
	} else if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, int(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies partial updates. A role change takes effect for new
// requests only; already-owned catalog entities keep their owner.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != "" {
		user.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.Username != nil && *req.Username != "" {
		user.Username = *req.Username
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		user.Role = *req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadProfilePicture stores the avatar and records its URL on the user row.
// The replaced picture is removed from the blob store best effort.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID uuid.UUID, file io.Reader, filename string, size int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.files.UploadImage(ctx, file, filename, size, "avatars")
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetProfilePicture(ctx, userID, url); err != nil {
		_ = s.files.Delete(ctx, url)
		return nil, err
	}

	if user.ProfilePictureURL != nil {
		_ = s.files.Delete(ctx, *user.ProfilePictureURL)
	}
	user.ProfilePictureURL = &url
	return user, nil
}

// Delete removes the account; the store cascades to everything it owns.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
