package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/access-service/internal/api/dto"
	"github.com/spec-kit/access-service/internal/service"
)

// UsersHandler exposes account-administration endpoints.
type UsersHandler struct {
	admin *service.AdminService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(adminService *service.AdminService) *UsersHandler {
	return &UsersHandler{admin: adminService}
}

// Unlock handles PATCH /admin/users/:id/unlock.
func (h *UsersHandler) Unlock(c *fiber.Ctx) error {
	accountID := c.Params("id")
	if accountID == "" {
		return fiber.NewError(http.StatusBadRequest, "account id required")
	}

	if err := h.admin.UnlockAccount(c.Context(), accountID, actorID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "account unlocked"})
}

// UpdateStatus handles PATCH /admin/users/:id/status.
func (h *UsersHandler) UpdateStatus(c *fiber.Ctx) error {
	accountID := c.Params("id")
	if accountID == "" {
		return fiber.NewError(http.StatusBadRequest, "account id required")
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.IsActive == nil {
		return fiber.NewError(http.StatusBadRequest, "isActive required")
	}

	if err := h.admin.SetAccountStatus(c.Context(), accountID, *req.IsActive, actorID(c)); err != nil {
		return err
	}

	message := "account suspended"
	if *req.IsActive {
		message = "account activated"
	}
	return c.JSON(fiber.Map{"message": message})
}
