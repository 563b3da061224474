package controller

import (
	"context"

	"cardionote-be/internal/pkg/serverutils"
	"cardionote-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Interpret(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

// assistController exposes the key-injecting provider proxies. The
// request body goes to the provider untouched and the provider's JSON
// comes back verbatim with the provider's status code; only transport
// failures produce our own error envelope.
type assistController struct {
	assistService service.IAssistService
}

func NewAssistController(assistService service.IAssistService) IAssistController {
	return &assistController{
		assistService: assistService,
	}
}

func (c *assistController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assist/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("chat", c.Chat)
	h.Post("interpret", c.Interpret)
	h.Post("search", c.Search)
}

func (c *assistController) Chat(ctx *fiber.Ctx) error {
	return c.proxy(ctx, c.assistService.Chat)
}

func (c *assistController) Interpret(ctx *fiber.Ctx) error {
	return c.proxy(ctx, c.assistService.Interpret)
}

func (c *assistController) Search(ctx *fiber.Ctx) error {
	return c.proxy(ctx, c.assistService.Search)
}

func (c *assistController) proxy(ctx *fiber.Ctx, forward func(context.Context, []byte) (*service.ProxyResult, error)) error {
	result, err := forward(ctx.Context(), ctx.Body())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(serverutils.ErrorResponseWithDetails(fiber.StatusInternalServerError, "provider request failed", err.Error()))
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Status(result.Status).Send(result.Body)
}
