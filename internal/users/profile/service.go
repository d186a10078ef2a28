// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/taibuivan/bookgod/internal/platform/apperr"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/pointer"
)

// # Service Layer

// Service orchestrates profile creation, preferences and reading history.
type Service struct {
	repository Repository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger, now: time.Now}
}

/*
Create gives a freshly registered user a profile with default preferences.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.Conflict when the profile exists
*/
func (service *Service) Create(context context.Context, userID string) error {
	profile := &Profile{
		UserID:      userID,
		Preferences: Preferences{Theme: DefaultTheme, Language: DefaultLanguage},
	}

	if err := service.repository.Create(context, profile); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return apperr.Conflict("Profile already exists")
		}
		return err
	}

	service.logger.Info("profile_created", slog.String("user_id", userID))
	return nil
}

/*
Get returns the profile with its most recent reading history.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: Hydrated profile
  - error: apperr.NotFound ("User not found") or storage failures
*/
func (service *Service) Get(context context.Context, userID string) (*Profile, error) {
	var (
		profile *Profile
		history []HistoryEntry
	)

	group, groupContext := errgroup.WithContext(context)
	group.Go(func() (err error) {
		profile, err = service.repository.FindByUserID(groupContext, userID)
		return err
	})
	group.Go(func() (err error) {
		history, err = service.repository.ListHistory(groupContext, userID, HistoryLimit)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	profile.ReadingHistory = history
	return profile, nil
}

/*
UpdatePreferences merges a partial preferences update.

Description: Theme must be light, dark or system. Language must be a
well-formed BCP 47 tag and is stored in canonical form.

Parameters:
  - context: context.Context
  - userID: string
  - patch: PreferencesPatch

Returns:
  - *Profile: Updated profile (without history)
  - error: Validation, NotFound or storage failures
*/
func (service *Service) UpdatePreferences(context context.Context, userID string, patch PreferencesPatch) (*Profile, error) {
	current, err := service.repository.FindByUserID(context, userID)
	if err != nil {
		return nil, err
	}

	prefs := current.Preferences
	validator := &validate.Validator{}

	prefs.Theme = strings.ToLower(strings.TrimSpace(pointer.Or(patch.Theme, prefs.Theme)))
	validator.OneOf(FieldTheme, prefs.Theme, ThemeLight, ThemeDark, ThemeSystem)

	if patch.Language != nil {
		tag, err := language.Parse(strings.TrimSpace(*patch.Language))
		validator.Custom(FieldLanguage, err != nil, "must be a valid language tag")
		if err == nil {
			prefs.Language = tag.String()
		}
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if prefs == current.Preferences {
		return current, nil
	}

	updated, err := service.repository.UpdatePreferences(context, userID, prefs)
	if err != nil {
		return nil, err
	}

	service.logger.Info("profile_preferences_updated", slog.String("user_id", userID))
	return updated, nil
}

/*
AddReadingHistory appends a read of bookID to the user's history.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string

Returns:
  - error: apperr.NotFound when the profile does not exist
*/
func (service *Service) AddReadingHistory(context context.Context, userID, bookID string) error {
	return service.repository.AppendHistory(context, userID, bookID, service.now())
}
