package handlers

import (
	"errors"

	"keasy-ai/internal/dto"
	"keasy-ai/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// genericFailure is the only detail exposed for infrastructure errors.
const genericFailure = "Keasy AI failed to respond."

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat godoc
// @Summary Ask Keasy AI
// @Description Turns one chat message into one answer, routed through the knowledge base or general knowledge
// @Tags keasy
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat message"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/keasy/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
		})
	}

	requestID := uuid.New().String()
	log := h.logger.With(zap.String("request_id", requestID))

	resp, err := h.chatService.ProcessMessage(c.Context(), req, nil)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "message is required",
			})
		}
		log.Error("Chat pipeline failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: genericFailure,
		})
	}

	log.Info("Chat answered",
		zap.String("mode", string(resp.Mode)),
		zap.Bool("redactions_applied", resp.RedactionsApplied),
	)
	return c.JSON(resp)
}
