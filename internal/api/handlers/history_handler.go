package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"herba-guide/internal/dto"
	"herba-guide/internal/service"
)

type HistoryHandler struct {
	predictionService *service.PredictionService
	logger            *zap.Logger
}

func NewHistoryHandler(predictionService *service.PredictionService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		predictionService: predictionService,
		logger:            logger,
	}
}

// GetHistory godoc
// @Summary Get prediction history
// @Description List the caller's past predictions, most recent first
// @Tags history
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.HistoryResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/gethistory [get]
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	records, err := h.predictionService.History(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}

	return c.JSON(dto.HistoryResponse{
		Message: "History retrieved",
		History: records,
	})
}

// SearchHistory godoc
// @Summary Search prediction history
// @Description Filter the caller's history by plant name, case-insensitively
// @Tags history
// @Produce json
// @Param plant_name query string true "Plant name substring"
// @Security Bearer
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/search_history [get]
func (h *HistoryHandler) SearchHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	plantName := c.Query("plant_name")
	if plantName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "plant_name is required",
		})
	}

	records, err := h.predictionService.SearchHistory(c.Context(), userID, plantName)
	if err != nil {
		h.logger.Error("Failed to search history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}

	return c.JSON(dto.HistoryResponse{
		Message: "History retrieved",
		History: records,
	})
}
