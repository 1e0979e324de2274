package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/set-night/chatdigest/internal/config"
	"github.com/set-night/chatdigest/internal/domain"
	"github.com/set-night/chatdigest/internal/repository"
)

type UserService struct {
	queries *repository.Queries
	cfg     *config.Config
}

func NewUserService(queries *repository.Queries, cfg *config.Config) *UserService {
	return &UserService{queries: queries, cfg: cfg}
}

// FindOrCreate loads the chat's user row, creating it with default
// preferences on first contact.
func (s *UserService) FindOrCreate(ctx context.Context, telegramID int64, firstName, username string) (*domain.User, error) {
	user, err := s.queries.GetUserByTelegramID(ctx, telegramID)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.queries.UpsertUser(ctx, telegramID, firstName, username)
	}
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	// Rows created before the defaults existed, or fresh ones, get the
	// configured model and budget.
	changed := false
	if user.SelectedModel == "" {
		user.SelectedModel = s.cfg.Model
		changed = true
	}
	if user.MediaBudget <= 0 {
		user.MediaBudget = s.cfg.MediaBudget
		changed = true
	}
	if !user.TimeWindow.Valid() {
		user.TimeWindow = domain.WindowAll
		changed = true
	}
	if !user.DetailLevel.Valid() {
		user.DetailLevel = domain.DetailStandard
		changed = true
	}
	if changed {
		if err := s.queries.UpdateUserSettings(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// UpdateSettings persists the preference fields of user.
func (s *UserService) UpdateSettings(ctx context.Context, user *domain.User) error {
	return s.queries.UpdateUserSettings(ctx, user)
}

// SetArchive records a newly loaded archive for the chat.
func (s *UserService) SetArchive(ctx context.Context, user *domain.User, path, name string) error {
	if err := s.queries.SetUserArchive(ctx, user.ID, path, name); err != nil {
		return err
	}
	user.ArchivePath = path
	user.ArchiveName = name
	return nil
}

// ClearArchive drops the archive reference after a fatal load failure;
// the user must re-import.
func (s *UserService) ClearArchive(ctx context.Context, user *domain.User) error {
	if err := s.queries.ClearUserArchive(ctx, user.ID); err != nil {
		return err
	}
	user.ArchivePath = ""
	user.ArchiveName = ""
	return nil
}
