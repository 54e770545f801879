package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/restaurant/internal/domain"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/pkg/errors"
)

// AdminKeyCost is the bcrypt cost used for admin API keys
const AdminKeyCost = 10

type adminService struct {
	repos      *repository.Repositories
	staticHash string
	logger     *zap.Logger
}

// NewAdminService creates a new admin service. staticHash, when set, is a
// bcrypt hash accepted in addition to the stored keys.
func NewAdminService(repos *repository.Repositories, staticHash string, logger *zap.Logger) *adminService {
	return &adminService{
		repos:      repos,
		staticHash: staticHash,
		logger:     logger,
	}
}

// Authenticate returns the admin key matching apiKey
func (s *adminService) Authenticate(ctx context.Context, apiKey string) (*domain.AdminKey, error) {
	if apiKey == "" {
		return nil, &errors.ErrUnauthorized{Message: "missing API key"}
	}

	if s.staticHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.staticHash), []byte(apiKey)); err == nil {
			return &domain.AdminKey{Name: "static", KeyHash: s.staticHash, IsActive: true}, nil
		}
	}

	// bcrypt hashes are salted, so every active key has to be tried
	keys, err := s.repos.AdminKey.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list admin keys", zap.Error(err))
		return nil, err
	}
	for _, key := range keys {
		if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(apiKey)); err == nil {
			return key, nil
		}
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

// CreateKey hashes apiKey and stores it under name
func (s *adminService) CreateKey(ctx context.Context, name, apiKey string) (*domain.AdminKey, error) {
	if name == "" || apiKey == "" {
		return nil, &errors.ErrValidation{Message: "name and API key are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), AdminKeyCost)
	if err != nil {
		return nil, err
	}

	key := &domain.AdminKey{
		Name:     name,
		KeyHash:  string(hash),
		IsActive: true,
	}
	if err := s.repos.AdminKey.Create(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info("Admin key created", zap.String("id", key.ID.String()), zap.String("name", name))
	return key, nil
}
