// Package service implements the domain rules for profiles and posts.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/validation"

	"gorm.io/gorm"
)

// ProfileService owns the rules for creating and updating profile documents
// and their embedded experience/education lists.
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

// UpsertProfileInput carries the create-or-update payload. Skills arrives as
// the raw comma-separated string from the client.
type UpsertProfileInput struct {
	UserID         uint
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GithubUsername string
	Skills         string
	Youtube        string
	Twitter        string
	Facebook       string
	Linkedin       string
	Instagram      string
}

// AddExperienceInput carries a new work history entry. Dates arrive as
// strings and are parsed before any write.
type AddExperienceInput struct {
	UserID      uint
	Title       string
	Company     string
	Location    string
	From        string
	To          string
	Current     bool
	Description string
}

// AddEducationInput carries a new schooling entry.
type AddEducationInput struct {
	UserID       uint
	School       string
	Degree       string
	FieldOfStudy string
	From         string
	To           string
	Current      bool
	Description  string
}

// NewProfileService creates a ProfileService.
func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// dateLayouts are the accepted wire formats for from/to dates.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(field, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s date %q", field, value)
}

// Upsert creates the caller's profile or partially overwrites an existing
// one. Only supplied fields change on update; validation runs before any
// write. The unique index on user_id closes the check-then-create race: a
// concurrent first-time create surfaces as a duplicate key and is retried as
// an update.
func (s *ProfileService) Upsert(ctx context.Context, in UpsertProfileInput) (*models.Profile, error) {
	var fieldErrs []models.ErrorItem
	if in.Status == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "Status is required", Param: "status"})
	}
	if in.Skills == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "Skills are required", Param: "skills"})
	}
	if len(fieldErrs) > 0 {
		return nil, models.NewValidationError(fieldErrs...)
	}

	existing, err := s.profileRepo.GetByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		profile := &models.Profile{UserID: in.UserID}
		applyProfileFields(profile, in)
		err := s.profileRepo.Create(ctx, profile)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the create race; the other writer's profile wins and we
			// apply this submission as an update.
			existing, err = s.profileRepo.GetByUserID(ctx, in.UserID)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				// The winning profile was deleted before the refetch landed.
				return nil, models.NewConflictError("Profile could not be saved, please retry")
			}
		} else if err != nil {
			return nil, err
		} else {
			return s.profileRepo.GetByUserID(ctx, in.UserID)
		}
	}

	applyProfileFields(existing, in)
	if err := s.profileRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, in.UserID)
}

// applyProfileFields overwrites only the fields the submission supplied.
func applyProfileFields(profile *models.Profile, in UpsertProfileInput) {
	if in.Company != "" {
		profile.Company = in.Company
	}
	if in.Website != "" {
		profile.Website = in.Website
	}
	if in.Location != "" {
		profile.Location = in.Location
	}
	if in.Bio != "" {
		profile.Bio = in.Bio
	}
	if in.Status != "" {
		profile.Status = in.Status
	}
	if in.GithubUsername != "" {
		profile.GithubUsername = in.GithubUsername
	}
	if in.Skills != "" {
		profile.Skills = validation.SplitSkills(in.Skills)
	}
	if in.Youtube != "" {
		profile.Social.Youtube = in.Youtube
	}
	if in.Twitter != "" {
		profile.Social.Twitter = in.Twitter
	}
	if in.Facebook != "" {
		profile.Social.Facebook = in.Facebook
	}
	if in.Linkedin != "" {
		profile.Social.Linkedin = in.Linkedin
	}
	if in.Instagram != "" {
		profile.Social.Instagram = in.Instagram
	}
}

// GetOwn returns the caller's profile.
func (s *ProfileService) GetOwn(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewNotFoundError("There is no profile for this user")
	}
	return profile, nil
}

// GetByUser returns another user's profile.
func (s *ProfileService) GetByUser(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewNotFoundError("Profile not found")
	}
	return profile, nil
}

// List returns all profiles with their owning users.
func (s *ProfileService) List(ctx context.Context) ([]*models.Profile, error) {
	return s.profileRepo.List(ctx)
}

// AddExperience prepends a work history entry to the caller's profile.
func (s *ProfileService) AddExperience(ctx context.Context, in AddExperienceInput) (*models.Profile, error) {
	var fieldErrs []models.ErrorItem
	if in.Title == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "Title is required", Param: "title"})
	}
	if in.Company == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "Company is required", Param: "company"})
	}
	if in.From == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "From date is required", Param: "from"})
	}
	if len(fieldErrs) > 0 {
		return nil, models.NewValidationError(fieldErrs...)
	}

	from, err := parseDate("from", in.From)
	if err != nil {
		return nil, models.NewValidationError(models.ErrorItem{Msg: err.Error(), Param: "from"})
	}
	var to *time.Time
	if in.To != "" {
		t, err := parseDate("to", in.To)
		if err != nil {
			return nil, models.NewValidationError(models.ErrorItem{Msg: err.Error(), Param: "to"})
		}
		to = &t
	}

	profile, err := s.GetOwn(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	exp := &models.Experience{
		ProfileID:   profile.ID,
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	if err := s.profileRepo.AddExperience(ctx, exp); err != nil {
		return nil, err
	}

	return s.GetOwn(ctx, in.UserID)
}

// RemoveExperience removes an entry by its identifier. An unknown identifier
// is reported, not silently ignored.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID uint) (*models.Profile, error) {
	profile, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	removed, err := s.profileRepo.RemoveExperience(ctx, profile.ID, expID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewNotFoundError("Experience entry not found")
	}

	return s.GetOwn(ctx, userID)
}

// AddEducation prepends a schooling entry to the caller's profile.
func (s *ProfileService) AddEducation(ctx context.Context, in AddEducationInput) (*models.Profile, error) {
	var fieldErrs []models.ErrorItem
	if in.School == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "School Name is required", Param: "school"})
	}
	if in.Degree == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "Degree is required", Param: "degree"})
	}
	if in.FieldOfStudy == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "Field of Study is required", Param: "fieldofstudy"})
	}
	if in.From == "" {
		fieldErrs = append(fieldErrs, models.ErrorItem{Msg: "From date is required", Param: "from"})
	}
	if len(fieldErrs) > 0 {
		return nil, models.NewValidationError(fieldErrs...)
	}

	from, err := parseDate("from", in.From)
	if err != nil {
		return nil, models.NewValidationError(models.ErrorItem{Msg: err.Error(), Param: "from"})
	}
	var to *time.Time
	if in.To != "" {
		t, err := parseDate("to", in.To)
		if err != nil {
			return nil, models.NewValidationError(models.ErrorItem{Msg: err.Error(), Param: "to"})
		}
		to = &t
	}

	profile, err := s.GetOwn(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	edu := &models.Education{
		ProfileID:    profile.ID,
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	if err := s.profileRepo.AddEducation(ctx, edu); err != nil {
		return nil, err
	}

	return s.GetOwn(ctx, in.UserID)
}

// RemoveEducation removes an entry by its identifier.
func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID uint) (*models.Profile, error) {
	profile, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	removed, err := s.profileRepo.RemoveEducation(ctx, profile.ID, eduID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewNotFoundError("Education entry not found")
	}

	return s.GetOwn(ctx, userID)
}

// DeleteAccount removes the caller's posts, profile, and user record.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.profileRepo.DeleteAccount(ctx, userID)
}
