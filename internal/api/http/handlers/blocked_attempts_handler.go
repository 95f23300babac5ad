package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/access-service/internal/api/dto"
	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/service"
)

// BlockedAttemptsHandler exposes the per-mode audit query endpoints.
type BlockedAttemptsHandler struct {
	admin *service.AdminService
}

// NewBlockedAttemptsHandler constructs handler.
func NewBlockedAttemptsHandler(adminService *service.AdminService) *BlockedAttemptsHandler {
	return &BlockedAttemptsHandler{admin: adminService}
}

// ListMaintenance handles GET /admin/blocked-attempts/maintenance.
func (h *BlockedAttemptsHandler) ListMaintenance(c *fiber.Ctx) error {
	return h.list(c, domain.ModeMaintenance)
}

// ListSystemLock handles GET /admin/blocked-attempts/system-lock.
func (h *BlockedAttemptsHandler) ListSystemLock(c *fiber.Ctx) error {
	return h.list(c, domain.ModeSystemLock)
}

func (h *BlockedAttemptsHandler) list(c *fiber.Ctx, mode domain.Mode) error {
	limit := c.QueryInt("limit")
	days := c.QueryInt("days")

	attempts, err := h.admin.BlockedAttempts(c.Context(), mode, days, limit)
	if err != nil {
		return err
	}

	resp := dto.BlockedAttemptsResponse{
		BlockedAttempts: make([]dto.BlockedAttemptResponse, 0, len(attempts)),
	}
	for _, attempt := range attempts {
		resp.BlockedAttempts = append(resp.BlockedAttempts, dto.BlockedAttemptResponse{
			ID:          attempt.ID,
			Email:       attempt.Email,
			Role:        string(attempt.Role),
			Mode:        string(attempt.Mode),
			Reason:      attempt.Reason,
			AttemptedAt: attempt.AttemptedAt,
		})
	}
	return c.JSON(resp)
}
