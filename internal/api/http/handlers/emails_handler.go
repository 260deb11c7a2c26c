package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mangoesafterplay/customer-onboarding/internal/api/dto"
	"github.com/mangoesafterplay/customer-onboarding/internal/service"
)

// EmailsHandler exposes the mailer worker's read-only outcome log.
type EmailsHandler struct {
	mailer *service.MailerService
}

// NewEmailsHandler constructs handler.
func NewEmailsHandler(mailerService *service.MailerService) *EmailsHandler {
	return &EmailsHandler{mailer: mailerService}
}

// History handles GET /emails/history.
func (h *EmailsHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	records, err := h.mailer.History(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.FromEmailRecords(records),
	})
}

// Stats handles GET /emails/stats.
func (h *EmailsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.mailer.Stats(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
