package server

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devconnect/internal/middleware"
	"devconnect/internal/models"
	"devconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "devconnect-api"
	tokenAudience = "devconnect-client"
	tokenTTL      = 7 * 24 * time.Hour
)

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register handles user registration. On success it responds with a signed
// token, exactly like a login.
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(models.ErrorItem{Msg: "Invalid request body"}))
	}

	var items []models.ErrorItem
	if req.Name == "" {
		items = append(items, models.ErrorItem{Msg: "Name is required", Param: "name"})
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		items = append(items, models.ErrorItem{Msg: err.Error(), Param: "email"})
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		items = append(items, models.ErrorItem{Msg: err.Error(), Param: "password"})
	}
	if len(items) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(items...))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Avatar:   models.GravatarURL(req.Email),
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		// The unique index on email is the source of truth; a concurrent
		// registration with the same address surfaces here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewConflictError("User already exists"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		slog.Uint64("user_id", uint64(user.ID)))

	return c.Status(fiber.StatusOK).JSON(TokenResponse{Token: token})
}

// Login handles credential verification and token issuance.
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(models.ErrorItem{Msg: "Invalid request body"}))
	}

	var items []models.ErrorItem
	if err := validation.ValidateEmail(req.Email); err != nil {
		items = append(items, models.ErrorItem{Msg: err.Error(), Param: "email"})
	}
	if req.Password == "" {
		items = append(items, models.ErrorItem{Msg: "Password is required", Param: "password"})
	}
	if len(items) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(items...))
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	// Unknown address and wrong password produce the same response, so the
	// endpoint cannot be used to probe for registered emails.
	if user == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(models.ErrorItem{Msg: "Invalid credentials"}))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(models.ErrorItem{Msg: "Invalid credentials"}))
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{Token: token})
}

// GetCurrentUser returns the authenticated user's record, without the
// password hash.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("User not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// Logout revokes the presented token by blacklisting its JTI until expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	tokenString := c.Get(AuthHeader)
	if tokenString == "" || s.redis == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"msg": "Logged out"})
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	})
	if err == nil && token.Valid {
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			jti, _ := claims["jti"].(string)
			exp, _ := claims["exp"].(float64)
			if jti != "" {
				ttl := time.Until(time.Unix(int64(exp), 0))
				if ttl > 0 {
					if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
						middleware.Logger.Warn("failed to blacklist token", slog.Any("error", err))
					}
				}
			}
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"msg": "Logged out"})
}

func (s *Server) generateToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
