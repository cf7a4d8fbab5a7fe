package server

import (
	"devconnect/internal/models"
	"devconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpsertProfileRequest is the payload for creating or updating a profile.
type UpsertProfileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"`
	GithubUsername string `json:"githubusername"`
	Skills         string `json:"skills"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// ExperienceRequest is the payload for adding a work history entry.
type ExperienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationRequest is the payload for adding a schooling entry.
type EducationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// ProfileOwner is the public projection of a profile's owning user.
type ProfileOwner struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ProfileResponse narrows the embedded user to name and avatar so profile
// reads never leak the owner's email.
type ProfileResponse struct {
	*models.Profile
	User ProfileOwner `json:"user"`
}

func newProfileResponse(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		Profile: p,
		User:    ProfileOwner{Name: p.User.Name, Avatar: p.User.Avatar},
	}
}

func newProfileList(profiles []*models.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, newProfileResponse(p))
	}
	return out
}

// UpsertProfile creates the caller's profile or overwrites the fields of an
// existing one.
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req UpsertProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(models.ErrorItem{Msg: "Invalid request body"}))
	}

	profile, err := s.profileService.Upsert(c.UserContext(), service.UpsertProfileInput{
		UserID:         userID,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		Status:         req.Status,
		GithubUsername: req.GithubUsername,
		Skills:         req.Skills,
		Youtube:        req.Youtube,
		Twitter:        req.Twitter,
		Facebook:       req.Facebook,
		Linkedin:       req.Linkedin,
		Instagram:      req.Instagram,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

// GetMyProfile returns the caller's own profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	profile, err := s.profileService.GetOwn(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

// GetProfiles lists every profile with its owner's name and avatar.
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newProfileList(profiles))
}

// GetProfileByUser returns the profile belonging to the user in the path.
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile not found"))
	}

	profile, err := s.profileService.GetByUser(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

// AddExperience prepends a work history entry to the caller's profile.
func (s *Server) AddExperience(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req ExperienceRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(models.ErrorItem{Msg: "Invalid request body"}))
	}

	profile, err := s.profileService.AddExperience(c.UserContext(), service.AddExperienceInput{
		UserID:      userID,
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

// DeleteExperience removes a work history entry by its identifier.
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	expID, err := parseID(c, "exp_id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Experience entry not found"))
	}

	profile, err := s.profileService.RemoveExperience(c.UserContext(), userID, expID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

// AddEducation prepends a schooling entry to the caller's profile.
func (s *Server) AddEducation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req EducationRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(models.ErrorItem{Msg: "Invalid request body"}))
	}

	profile, err := s.profileService.AddEducation(c.UserContext(), service.AddEducationInput{
		UserID:       userID,
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

// DeleteEducation removes a schooling entry by its identifier.
func (s *Server) DeleteEducation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	eduID, err := parseID(c, "edu_id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Education entry not found"))
	}

	profile, err := s.profileService.RemoveEducation(c.UserContext(), userID, eduID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

// DeleteAccount removes the caller's user, profile, posts, and all their
// likes and comments.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.profileService.DeleteAccount(c.UserContext(), userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"msg": "User deleted"})
}

// GetGithubRepos proxies a lookup of the five most recent public
// repositories for a GitHub username.
func (s *Server) GetGithubRepos(c *fiber.Ctx) error {
	username := c.Params("username")

	repos, err := s.githubClient.ListRepos(c.UserContext(), username)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(repos)
}
