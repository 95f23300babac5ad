package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/access-service/internal/api/dto"
	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/service"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}
	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleReception
	}

	account, token, exp, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": accountView(account),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	account, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": accountView(account),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

func accountView(account *domain.Account) fiber.Map {
	return fiber.Map{
		"id":    account.ID,
		"name":  account.Name,
		"email": account.Email,
		"role":  account.Role,
	}
}
