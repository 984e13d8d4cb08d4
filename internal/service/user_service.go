package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fathima-sithara/quickchat/internal/apperr"
	"github.com/fathima-sithara/quickchat/internal/auth"
	"github.com/fathima-sithara/quickchat/internal/media"
	"github.com/fathima-sithara/quickchat/internal/models"
	"github.com/fathima-sithara/quickchat/internal/repository"
)

type UserService struct {
	users    repository.UserStore
	tokens   *auth.Manager
	uploader *media.Uploader
	log      *zap.SugaredLogger
}

func NewUserService(users repository.UserStore, tokens *auth.Manager, uploader *media.Uploader, log *zap.SugaredLogger) *UserService {
	return &UserService{users: users, tokens: tokens, uploader: uploader, log: log}
}

func (s *UserService) Signup(ctx context.Context, fullName, email, password, bio string) (*models.User, string, error) {
	if fullName == "" || email == "" || password == "" || bio == "" {
		return nil, "", apperr.ErrMissingDetails
	}
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", apperr.ErrAccountExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u, err := s.users.Create(ctx, &models.User{
		FullName: strings.TrimSpace(fullName),
		Email:    email,
		Password: string(hash),
		Bio:      bio,
	})
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.ErrMissingDetails
	}
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, "", apperr.ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateProfile changes the mutable profile fields. Empty arguments leave the
// current value in place. A data-URI profilePic is uploaded to media storage.
func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName, bio, profilePic string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if fullName != "" {
		u.FullName = strings.TrimSpace(fullName)
	}
	if bio != "" {
		u.Bio = bio
	}
	if profilePic != "" {
		if s.uploader != nil && strings.HasPrefix(profilePic, "data:") {
			url, err := s.uploader.UploadDataURI(ctx, userID, profilePic)
			if err != nil {
				return nil, err
			}
			u.ProfilePic = url
		} else {
			u.ProfilePic = profilePic
		}
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
