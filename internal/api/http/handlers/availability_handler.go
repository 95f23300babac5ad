package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/access-service/internal/api/dto"
	"github.com/spec-kit/access-service/internal/auth"
	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/service"
)

// AvailabilityHandler exposes the global-mode admin endpoints.
type AvailabilityHandler struct {
	admin *service.AdminService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(adminService *service.AdminService) *AvailabilityHandler {
	return &AvailabilityHandler{admin: adminService}
}

// MaintenanceStatus handles GET /admin/maintenance/status.
func (h *AvailabilityHandler) MaintenanceStatus(c *fiber.Ctx) error {
	mode := h.admin.CurrentMode()
	resp := dto.MaintenanceStatusResponse{Enabled: mode.Mode == domain.ModeMaintenance}
	if resp.Enabled {
		resp.Message = mode.Reason
		resp.EstimatedDuration = mode.EstimatedDuration
		resp.ActivatedAt = timePtr(mode.ActivatedAt)
		resp.ActivatedBy = mode.ActivatedBy
	}
	return c.JSON(resp)
}

// EnableMaintenance handles POST /admin/maintenance/enable.
func (h *AvailabilityHandler) EnableMaintenance(c *fiber.Ctx) error {
	var req dto.EnableMaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Message == "" {
		return fiber.NewError(http.StatusBadRequest, "message required")
	}

	mode, err := h.admin.EnableMaintenance(c.Context(), req.Message, req.EstimatedDuration, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(maintenanceView(mode))
}

// DisableMaintenance handles POST /admin/maintenance/disable.
func (h *AvailabilityHandler) DisableMaintenance(c *fiber.Ctx) error {
	mode := h.admin.DisableMaintenance(c.Context(), actorID(c))
	return c.JSON(maintenanceView(mode))
}

// SystemLockStatus handles GET /admin/system-lock/status.
func (h *AvailabilityHandler) SystemLockStatus(c *fiber.Ctx) error {
	mode := h.admin.CurrentMode()
	resp := dto.SystemLockStatusResponse{Enabled: mode.Mode == domain.ModeSystemLock}
	if resp.Enabled {
		resp.Reason = mode.Reason
		resp.EmergencyContact = mode.EmergencyContact
		resp.ActivatedAt = timePtr(mode.ActivatedAt)
		resp.ActivatedBy = mode.ActivatedBy
	}
	return c.JSON(resp)
}

// EnableSystemLock handles POST /admin/system-lock/enable.
func (h *AvailabilityHandler) EnableSystemLock(c *fiber.Ctx) error {
	var req dto.EnableSystemLockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Reason == "" {
		return fiber.NewError(http.StatusBadRequest, "reason required")
	}

	mode, err := h.admin.EnableSystemLock(c.Context(), req.Reason, req.EmergencyContact, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(systemLockView(mode))
}

// DisableSystemLock handles POST /admin/system-lock/disable.
func (h *AvailabilityHandler) DisableSystemLock(c *fiber.Ctx) error {
	mode := h.admin.DisableSystemLock(c.Context(), actorID(c))
	return c.JSON(systemLockView(mode))
}

func maintenanceView(mode domain.AvailabilityMode) fiber.Map {
	return fiber.Map{
		"mode":              mode.Mode,
		"message":           mode.Reason,
		"estimatedDuration": mode.EstimatedDuration,
		"activatedAt":       mode.ActivatedAt,
		"activatedBy":       mode.ActivatedBy,
	}
}

func systemLockView(mode domain.AvailabilityMode) fiber.Map {
	return fiber.Map{
		"mode":             mode.Mode,
		"reason":           mode.Reason,
		"emergencyContact": mode.EmergencyContact,
		"activatedAt":      mode.ActivatedAt,
		"activatedBy":      mode.ActivatedBy,
	}
}

func actorID(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Account != nil {
		return principal.Account.ID
	}
	return ""
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
