package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mangoesafterplay/customer-onboarding/internal/api/dto"
	"github.com/mangoesafterplay/customer-onboarding/internal/service"
	"github.com/mangoesafterplay/customer-onboarding/pkg/util"
)

// ParametersHandler exposes config flag updates on the coordinator.
type ParametersHandler struct {
	params *service.ParamsService
}

// NewParametersHandler constructs handler.
func NewParametersHandler(paramsService *service.ParamsService) *ParametersHandler {
	return &ParametersHandler{params: paramsService}
}

// Update handles PUT /parameters/:key.
func (h *ParametersHandler) Update(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return util.NewValidationError("parameter key required", nil)
	}

	var req dto.UpdateParameterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	param, err := h.params.Update(c.UserContext(), key, req.Value)
	if errors.Is(err, service.ErrParameterNotFound) {
		return util.NewNotFound("parameter", map[string]any{"key": key})
	}
	if err != nil {
		return util.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"key":   param.Key,
			"value": param.Value,
		},
	})
}
