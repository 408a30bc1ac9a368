// FILE: internal/controller/plan_controller.go
// Controller for the plan catalog: public pricing endpoints and admin CRUD.
package controller

import (
	"rentora-be/internal/dto"
	"rentora-be/internal/pkg/serverutils"
	"rentora-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PlanController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler, adminMiddleware fiber.Handler)
}

type planController struct {
	planService service.IPlanService
}

func NewPlanController(planService service.IPlanService) PlanController {
	return &planController{
		planService: planService,
	}
}

func (c *planController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler, adminMiddleware fiber.Handler) {
	// Public endpoints
	api.Get("/plans", c.GetVisiblePlans)
	api.Get("/plans/:slug", c.GetPlanBySlug)

	// Admin endpoints
	admin := api.Group("/admin/plans", jwtMiddleware, adminMiddleware)
	admin.Get("/", c.ListAllPlans)
	admin.Post("/", c.CreatePlan)
	admin.Put("/:id", c.UpdatePlan)
	admin.Delete("/:id", c.DeactivatePlan)
}

// GetVisiblePlans returns active, visible plans for the pricing page
// @Summary Get subscription plans
// @Tags Plans
// @Produce json
// @Success 200 {object} []dto.PlanResponse
// @Router /api/plans [get]
func (c *planController) GetVisiblePlans(ctx *fiber.Ctx) error {
	plans, err := c.planService.ListVisiblePlans(ctx.Context())
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

func (c *planController) GetPlanBySlug(ctx *fiber.Ctx) error {
	plan, err := c.planService.GetPlanBySlug(ctx.Context(), ctx.Params("slug"))
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan retrieved", plan))
}

func (c *planController) ListAllPlans(ctx *fiber.Ctx) error {
	plans, err := c.planService.ListAllPlans(ctx.Context())
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

func (c *planController) CreatePlan(ctx *fiber.Ctx) error {
	var req dto.UpsertPlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	plan, err := c.planService.CreatePlan(ctx.Context(), &req)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Plan created", plan))
}

func (c *planController) UpdatePlan(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid plan ID"))
	}

	var req dto.UpsertPlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	plan, err := c.planService.UpdatePlan(ctx.Context(), id, &req)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan updated", plan))
}

// DeactivatePlan retires a plan from sale without deleting it.
func (c *planController) DeactivatePlan(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid plan ID"))
	}

	if err := c.planService.DeactivatePlan(ctx.Context(), id); err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Plan deactivated", nil))
}
