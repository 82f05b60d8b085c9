package api

import (
	"context"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const allowedMethods = "GET, HEAD"

// CoverageService is the lookup logic behind the handlers.
type CoverageService interface {
	Lookup(ctx context.Context, query string) (map[string]models.Capabilities, error)
	Operators(ctx context.Context) ([]models.Operator, error)
}

type coverageRequest struct {
	Query string `validate:"required"`
}

// Handler serves the coverage endpoints.
type Handler struct {
	svc      CoverageService
	log      *slog.Logger
	validate *validator.Validate
}

func NewHandler(svc CoverageService, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log, validate: validator.New()}
}

// Coverage answers GET /api/v1/coverage?q=<address> with the 2G/3G/4G availability
// of every operator covering the address, keyed by operator name.
func (h *Handler) Coverage(c *fiber.Ctx) error {
	req := coverageRequest{Query: strings.TrimSpace(c.Query("q"))}

	if err := h.validate.Struct(&req); err != nil {
		return sendError(c, ErrMissingQuery)
	}

	result, err := h.svc.Lookup(c.UserContext(), req.Query)
	if err != nil {
		appErr := toAppError(err)
		if appErr == ErrInternalServer {
			h.log.ErrorContext(c.UserContext(), "Coverage lookup failed", "query", req.Query, "error", err)
		}
		return sendError(c, appErr)
	}

	return c.JSON(result)
}

// Operators answers GET /api/v1/operators with the known operators.
func (h *Handler) Operators(c *fiber.Ctx) error {
	ops, err := h.svc.Operators(c.UserContext())
	if err != nil {
		h.log.ErrorContext(c.UserContext(), "Failed to list operators", "error", err)
		return sendError(c, toAppError(err))
	}
	if ops == nil {
		ops = []models.Operator{}
	}

	return c.JSON(ops)
}

// Ping answers liveness checks.
func (h *Handler) Ping(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// MethodNotAllowed rejects every method but GET and HEAD.
func (h *Handler) MethodNotAllowed(c *fiber.Ctx) error {
	return sendError(c, ErrMethodNotAllowed)
}
