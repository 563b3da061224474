package controller

import (
	"io"
	"time"

	"cardionote-be/internal/pkg/serverutils"
	"cardionote-be/internal/service"
	"cardionote-be/pkg/ecgsubmit"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IECGController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Interpret(ctx *fiber.Ctx) error
	PlanAction(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
}

type ecgController struct {
	ecgService service.IECGService
}

func NewECGController(ecgService service.IECGService) IECGController {
	return &ecgController{
		ecgService: ecgService,
	}
}

func (c *ecgController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ecg/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("analyze", c.Analyze)
	h.Get("", c.List)
	h.Post(":id/interpret", c.Interpret)
	h.Post(":id/plan", c.PlanAction)
	h.Delete(":id", c.Delete)
	h.Post(":id/select", c.Select)
}

func (c *ecgController) Analyze(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing 'file' form part")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	capturedAt := time.Now()
	if raw := ctx.FormValue("captured_at"); raw != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
			capturedAt = parsed
		}
	}

	upload := ecgsubmit.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
		CapturedAt:  capturedAt,
	}

	res, err := c.ecgService.Analyze(ctx.Context(), userId, upload)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success analyze ECG", res))
}

func (c *ecgController) List(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)

	res, err := c.ecgService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list results", res))
}

func (c *ecgController) Interpret(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid result id")
	}

	res, err := c.ecgService.Interpret(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success interpret result", res))
}

func (c *ecgController) PlanAction(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid result id")
	}

	res, err := c.ecgService.PlanAction(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success plan action", res))
}

func (c *ecgController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid result id")
	}

	if err := c.ecgService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete result", struct{}{}))
}

func (c *ecgController) Select(ctx *fiber.Ctx) error {
	userId := currentUserID(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid result id")
	}

	if err := c.ecgService.Select(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success select result", struct{}{}))
}
