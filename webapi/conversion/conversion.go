package conversion

import (
	conversionsvc "github.com/amirasaad/convlog/pkg/service/conversion"
	"github.com/amirasaad/convlog/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers HTTP routes for the conversion log.
func Routes(app *fiber.App, conversionSvc *conversionsvc.Service) {
	app.Post("/convert", Convert(conversionSvc))
	app.Get("/history", History(conversionSvc))
	app.Delete("/history", ClearHistory(conversionSvc))
}

// Convert returns a Fiber handler that stores a conversion record.
// A record whose id is already stored replaces it; both cases answer 201 and
// the outcome field tells them apart.
// @Summary Submit a conversion
// @Description Stores a conversion record, replacing any record with the same id.
// @Tags conversions
// @Accept json
// @Produce json
// @Param request body ConvertRequest true "Conversion record"
// @Success 201 {object} ConvertResponse
// @Failure 400 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /convert [post]
func Convert(conversionSvc *conversionsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[ConvertRequest](c)
		if input == nil {
			return err // error response already written
		}
		record, err := input.ToRecord()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid conversion record", err)
		}
		outcome, err := conversionSvc.Submit(c.UserContext(), record)
		if err != nil {
			log.Errorf("Failed to store conversion %s: %v", record.ID, err)
			return common.ProblemDetailsJSON(c, "Failed to store conversion", err)
		}
		return c.Status(fiber.StatusCreated).JSON(ConvertResponse{
			Status:  "ok",
			Outcome: outcome.String(),
		})
	}
}

// History returns a Fiber handler listing the most recent conversions.
// @Summary List recent conversions
// @Description Returns at most 50 conversions, newest first.
// @Tags conversions
// @Produce json
// @Success 200 {array} RecordDTO
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /history [get]
func History(conversionSvc *conversionsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := conversionSvc.ListRecent(c.UserContext())
		if err != nil {
			log.Errorf("Failed to list conversions: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to list conversions", err)
		}
		return c.JSON(ToRecordDTOs(records))
	}
}

// ClearHistory returns a Fiber handler deleting every stored conversion.
// @Summary Clear conversion history
// @Tags conversions
// @Success 204
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /history [delete]
func ClearHistory(conversionSvc *conversionsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := conversionSvc.Clear(c.UserContext()); err != nil {
			log.Errorf("Failed to clear conversions: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to clear history", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
