// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/bookgod/internal/platform/sanitize"
	"github.com/taibuivan/bookgod/internal/platform/validate"
	"github.com/taibuivan/bookgod/pkg/pagination"
)

type Service struct {
	repo     Repository
	promoter RolePromoter
	books    BookLister
	logger   *slog.Logger
}

func NewService(repo Repository, promoter RolePromoter, books BookLister, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		promoter: promoter,
		books:    books,
		logger:   logger,
	}
}

func normaliseProfile(profile Profile) Profile {
	return Profile{
		Name:      strings.TrimSpace(profile.Name),
		Image:     strings.TrimSpace(profile.Image),
		Bio:       strings.TrimSpace(sanitize.Text(profile.Bio)),
		Twitter:   strings.TrimSpace(profile.Twitter),
		Instagram: strings.TrimSpace(profile.Instagram),
	}
}

func validateProfile(profile Profile) error {
	validator := &validate.Validator{}

	validator.Required(FieldName, profile.Name).MaxLen(FieldName, profile.Name, MaxNameLength)
	validator.MaxLen(FieldBio, profile.Bio, MaxBioLength)

	if profile.Image != "" {
		validator.URL(FieldImage, profile.Image)
	}
	if profile.Twitter != "" {
		validator.URL(FieldTwitter, profile.Twitter)
	}
	if profile.Instagram != "" {
		validator.URL(FieldInstagram, profile.Instagram)
	}

	return validator.Err()
}

/*
Register turns the caller's account into an author.

Description: The role is granted before the author row is written. Granting
is idempotent, so a retry after a failed insert converges. The caller must
refresh their access token to pick up the new role.

Returns:
  - *Author: The created author
  - error: VALIDATION_ERROR, CONFLICT "Author already exists"
*/
func (service *Service) Register(context context.Context, userID string, profile Profile) (*Author, error) {
	profile = normaliseProfile(profile)
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if err := service.promoter.PromoteToAuthor(context, userID); err != nil {
		return nil, err
	}

	author := &Author{
		ID:        userID,
		Name:      profile.Name,
		Image:     profile.Image,
		Bio:       profile.Bio,
		Twitter:   profile.Twitter,
		Instagram: profile.Instagram,
	}

	if err := service.repo.Create(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_registered", slog.String("user_id", userID))
	return author, nil
}

func (service *Service) Get(context context.Context, id string) (*Author, error) {
	return service.repo.FindByID(context, id)
}

// GetWithBooks loads the author and their published books concurrently.
func (service *Service) GetWithBooks(context context.Context, id string) (*WithBooks, error) {
	result := &WithBooks{}
	group, groupContext := errgroup.WithContext(context)

	group.Go(func() error {
		author, err := service.repo.FindByID(groupContext, id)
		if err != nil {
			return err
		}
		result.Author = *author
		return nil
	})

	group.Go(func() error {
		books, err := service.books.ListByAuthor(groupContext, id)
		result.Books = books
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (service *Service) Update(context context.Context, userID string, profile Profile) (*Author, error) {
	profile = normaliseProfile(profile)
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	author, err := service.repo.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	author.Name = profile.Name
	author.Image = profile.Image
	author.Bio = profile.Bio
	author.Twitter = profile.Twitter
	author.Instagram = profile.Instagram

	if err := service.repo.Update(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_updated", slog.String("user_id", userID))
	return author, nil
}

func (service *Service) TopByStars(context context.Context, limit int) ([]*Ranked, error) {
	if limit < 1 {
		limit = DefaultTop
	}
	return service.repo.TopByStars(context, pagination.Clamp(limit))
}
