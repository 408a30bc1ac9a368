// FILE: internal/controller/subscription_controller.go
// Controller for the subscription lifecycle: self-service endpoints, the
// payment webhook, and the admin dashboard.
package controller

import (
	"crypto/sha512"
	"fmt"
	"os"
	"strings"

	"rentora-be/internal/dto"
	"rentora-be/internal/pkg/logger"
	"rentora-be/internal/pkg/serverutils"
	"rentora-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SubscriptionController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler, adminMiddleware fiber.Handler)
}

type subscriptionController struct {
	subscriptionService service.ISubscriptionService
	logger              logger.ILogger
}

func NewSubscriptionController(subscriptionService service.ISubscriptionService, log logger.ILogger) SubscriptionController {
	return &subscriptionController{
		subscriptionService: subscriptionService,
		logger:              log,
	}
}

func (c *subscriptionController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler, adminMiddleware fiber.Handler) {
	subs := api.Group("/subscriptions", jwtMiddleware)
	subs.Post("/", c.Create)
	subs.Get("/me", c.GetMine)
	subs.Patch("/:id", c.Update)
	subs.Post("/:id/cancel", c.Cancel)
	subs.Post("/:id/reactivate", c.Reactivate)

	// Midtrans calls this server-to-server; authentication is the signature.
	api.Post("/payments/midtrans/webhook", c.HandleWebhook)

	admin := api.Group("/admin", jwtMiddleware, adminMiddleware)
	admin.Get("/dashboard/summary", c.DashboardSummary)
	admin.Get("/subscriptions/expiring-trials", c.ExpiringTrials)
}

func (c *subscriptionController) Create(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.CreateSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	sub, err := c.subscriptionService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Subscription created", sub))
}

func (c *subscriptionController) GetMine(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	sub, err := c.subscriptionService.GetActiveForUser(ctx.Context(), userId)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	if sub == nil {
		return ctx.JSON(serverutils.SuccessResponse[any]("No active subscription", nil))
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription retrieved", sub))
}

func (c *subscriptionController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid subscription ID"))
	}

	var patch dto.UpdateSubscriptionPatch
	if err := ctx.BodyParser(&patch); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	sub, err := c.subscriptionService.Update(ctx.Context(), id, &patch)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription updated", sub))
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid subscription ID"))
	}

	var req dto.CancelSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		// Empty body means cancel at period end.
		req.Immediate = false
	}

	sub, err := c.subscriptionService.Cancel(ctx.Context(), id, req.Immediate)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription cancelled", sub))
}

func (c *subscriptionController) Reactivate(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid subscription ID"))
	}

	var req dto.CreateSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		// No body: reuse the plan of the old subscription.
		req = dto.CreateSubscriptionRequest{}
	}

	sub, err := c.subscriptionService.Reactivate(ctx.Context(), id, &req)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Subscription reactivated", sub))
}

// HandleWebhook processes the Midtrans payment notification. The signature is
// SHA512(order_id + status_code + gross_amount + server_key).
func (c *subscriptionController) HandleWebhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		c.logger.Error("SubscriptionController", "MIDTRANS_SERVER_KEY not configured", nil)
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "server configuration error"))
	}

	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + serverKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))
	if req.SignatureKey != expectedSignature {
		c.logger.Warn("SubscriptionController", "Webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid signature"))
	}

	subId, err := parseWebhookOrderId(req.OrderId)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid order id format"))
	}

	switch req.TransactionStatus {
	case "capture", "settlement":
		if _, err := c.subscriptionService.Renew(ctx.Context(), subId, req.TransactionId); err != nil {
			return serverutils.HandleServiceError(ctx, err)
		}
	case "deny", "cancel", "expire":
		status := "past_due"
		if _, err := c.subscriptionService.Update(ctx.Context(), subId, &dto.UpdateSubscriptionPatch{Status: &status}); err != nil {
			return serverutils.HandleServiceError(ctx, err)
		}
	default:
		// pending and unknown statuses need no action; Midtrans retries.
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Notification processed", nil))
}

func (c *subscriptionController) DashboardSummary(ctx *fiber.Ctx) error {
	summary, err := c.subscriptionService.DashboardSummary(ctx.Context())
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard summary", summary))
}

func (c *subscriptionController) ExpiringTrials(ctx *fiber.Ctx) error {
	days := ctx.QueryInt("days", 3)
	subs, err := c.subscriptionService.ListExpiringTrials(ctx.Context(), days)
	if err != nil {
		return serverutils.HandleServiceError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Expiring trials", subs))
}

// parseWebhookOrderId accepts both plain subscription ids (checkout flow)
// and the "renew-<id>-<ts>" order ids from the charge gateway.
func parseWebhookOrderId(orderId string) (uuid.UUID, error) {
	if strings.HasPrefix(orderId, "renew-") {
		parts := strings.Split(strings.TrimPrefix(orderId, "renew-"), "-")
		// UUIDs contain dashes; rejoin all but the trailing timestamp.
		if len(parts) > 1 {
			return uuid.Parse(strings.Join(parts[:len(parts)-1], "-"))
		}
	}
	return uuid.Parse(orderId)
}
