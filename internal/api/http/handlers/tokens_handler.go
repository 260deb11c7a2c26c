package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mangoesafterplay/customer-onboarding/internal/api/dto"
	"github.com/mangoesafterplay/customer-onboarding/internal/service"
	"github.com/mangoesafterplay/customer-onboarding/pkg/util"
)

// TokensHandler exposes the token authority endpoints.
type TokensHandler struct {
	tokens *service.TokenService
}

// NewTokensHandler constructs handler.
func NewTokensHandler(tokenService *service.TokenService) *TokensHandler {
	return &TokensHandler{tokens: tokenService}
}

// Generate handles POST /tokens/generate.
func (h *TokensHandler) Generate(c *fiber.Ctx) error {
	token, err := h.tokens.Mint(c.UserContext())
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "token generated",
		"data": dto.TokenData{
			Token:     token.Token,
			CreatedAt: token.CreatedAt,
			ExpiresAt: token.ExpiresAt,
		},
	})
}

// Validate handles POST /tokens/validate. Non-valid outcomes are 200 with
// valid=false; the separate mark-used call is the authorization boundary.
func (h *TokensHandler) Validate(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	result, err := h.tokens.Validate(c.UserContext(), req.Token)
	if err != nil {
		return err
	}

	if !result.Valid {
		return c.JSON(fiber.Map{
			"success": false,
			"valid":   false,
			"message": result.Message,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"valid":   true,
		"message": result.Message,
		"data": dto.TokenData{
			Token:     result.Token.Token,
			CreatedAt: result.Token.CreatedAt,
			ExpiresAt: result.Token.ExpiresAt,
		},
	})
}

// MarkUsed handles POST /tokens/mark-used.
func (h *TokensHandler) MarkUsed(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	token, err := h.tokens.MarkUsed(c.UserContext(), req.Token)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "token marked as used",
		"data": dto.TokenConsumedData{
			ID:     token.ID,
			Token:  token.Token,
			UsedAt: token.UsedAt,
		},
	})
}

// Stats handles GET /tokens/stats.
func (h *TokensHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.tokens.Stats(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
