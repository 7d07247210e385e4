package handler

import (
	"github.com/labstack/echo/v4"

	"foodshare/internal/usecase"
	"foodshare/pkg/errors"
	"foodshare/pkg/response"
)

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
	}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	claimID := c.Param("claimId")
	if claimID == "" {
		return response.Error(c, errors.BadRequest("Claim ID is required", nil))
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.messageUseCase.SendMessage(c.Request().Context(), callerID(c), claimID, req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *MessageHandler) GetMessages(c echo.Context) error {
	claimID := c.Param("claimId")
	if claimID == "" {
		return response.Error(c, errors.BadRequest("Claim ID is required", nil))
	}

	messages, err := h.messageUseCase.GetMessages(c.Request().Context(), callerID(c), claimID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}
