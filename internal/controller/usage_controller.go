// FILE: internal/controller/usage_controller.go
// Controller for usage gating: pre-flight checks, recording, and status.
package controller

import (
	"errors"
	"time"

	"rentora-be/internal/dto"
	"rentora-be/internal/entity"
	"rentora-be/internal/pkg/serverutils"
	"rentora-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UsageController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler, adminMiddleware fiber.Handler)
}

type usageController struct {
	usageService service.IUsageService
}

func NewUsageController(usageService service.IUsageService) UsageController {
	return &usageController{
		usageService: usageService,
	}
}

func (c *usageController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler, adminMiddleware fiber.Handler) {
	usage := api.Group("/usage", jwtMiddleware)
	usage.Post("/check", c.CheckUsage)
	usage.Post("/record", c.RecordUsage)

	user := api.Group("/user", jwtMiddleware)
	user.Get("/usage-status", c.GetUsageStatus)

	admin := api.Group("/admin/usage", jwtMiddleware, adminMiddleware)
	admin.Get("/stats", c.GetUsageStats)
}

// CheckUsage evaluates a feature gate without consuming quota
// @Summary Check feature access
// @Tags Usage
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} dto.GateDecision
// @Router /api/usage/check [post]
func (c *usageController) CheckUsage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.CheckUsageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	decision, err := c.usageService.CheckUsage(ctx.Context(), userId, entity.Feature(req.Feature), req.Count)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage checked", decision))
}

// RecordUsage consumes quota for a feature. A denied request still returns
// the gate decision so clients can render the upgrade prompt.
func (c *usageController) RecordUsage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.RecordUsageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	req.IPAddress = ctx.IP()
	req.UserAgent = ctx.Get("User-Agent")

	decision, err := c.usageService.RecordUsage(ctx.Context(), userId, &req)
	if err != nil {
		status := serverutils.ErrorStatus(err)
		if decision != nil && status == fiber.StatusForbidden {
			return ctx.Status(status).JSON(serverutils.SuccessResponse("Quota exceeded", decision))
		}
		return ctx.Status(status).JSON(serverutils.ErrorResponse(status, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage recorded", decision))
}

// GetUsageStatus returns all feature counters vs limits for the current user
// @Summary Get usage status
// @Tags Usage
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UsageStatusResponse
// @Router /api/user/usage-status [get]
func (c *usageController) GetUsageStatus(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	status, err := c.usageService.GetUsageStatus(ctx.Context(), userId)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage status retrieved", status))
}

// GetUsageStats returns per-feature daily aggregates for the admin dashboard.
// Defaults to the last 30 days when no range is given.
func (c *usageController) GetUsageStats(ctx *fiber.Ctx) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := ctx.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := ctx.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}

	stats, err := c.usageService.GetUsageStats(ctx.Context(), from, to)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage stats retrieved", stats))
}

// currentUserId extracts the authenticated user from the JWT locals.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, errors.New("unauthorized")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid user ID")
	}
	return userId, nil
}
