package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"herba-guide/internal/dto"
	"herba-guide/internal/service"
	"herba-guide/pkg/apperrors"
)

type PredictHandler struct {
	predictionService *service.PredictionService
	logger            *zap.Logger
}

func NewPredictHandler(predictionService *service.PredictionService, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{
		predictionService: predictionService,
		logger:            logger,
	}
}

// PredictImage godoc
// @Summary Identify a medicinal plant and persist the result
// @Description Classify the uploaded photo, return grouped remedy information and append it to the caller's history
// @Tags prediction
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Plant photo (jpeg or png)"
// @Security Bearer
// @Success 200 {object} dto.PredictImageResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/predict_image [post]
func (h *PredictHandler) PredictImage(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
	return h.predict(c, userID)
}

// PredictImageAnon godoc
// @Summary Identify a medicinal plant anonymously
// @Description Classify the uploaded photo and return grouped remedy information without persisting anything
// @Tags prediction
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Plant photo (jpeg or png)"
// @Success 200 {object} dto.PredictImageResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/predict_image_anon [post]
func (h *PredictHandler) PredictImageAnon(c *fiber.Ctx) error {
	return h.predict(c, "")
}

func (h *PredictHandler) predict(c *fiber.Ctx, userID string) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Photo is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open photo",
		})
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read photo",
		})
	}

	prediction, err := h.predictionService.Predict(c.Context(), service.PredictionInput{
		Data:        data,
		ContentType: file.Header.Get("Content-Type"),
		UserID:      userID,
	})
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(dto.PredictImageResponse{
		Message:    "Prediction successful",
		Prediction: *prediction,
	})
}

// renderError maps the error kind to a status code. Input and not-found
// errors carry their message; everything internal is logged with its kind and
// answered generically.
func (h *PredictHandler) renderError(c *fiber.Ctx, err error) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is not an image",
		})
	case apperrors.KindUnauthorized:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	case apperrors.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plant is not in the remedy catalog",
		})
	default:
		h.logger.Error("Prediction failed",
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}
}
