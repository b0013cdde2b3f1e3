package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chatgrid/chat-service/internal/core/ports"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	service ports.MessageService
}

func NewMessageHandler(service ports.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Post handles POST /api/message.
//
// @Summary      Post a message to a chat
// @Tags         message
// @Accept       json
// @Produce      json
// @Param        body  body      postMessageRequest  true  "Message details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/message [post]
func (h *MessageHandler) Post(c echo.Context) error {
	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.service.Post(c.Request().Context(), ctxPrincipal(c), ports.PostMessageInput{
		ChatID:          req.ChatID,
		Body:            req.Body,
		ClientMessageID: req.ClientMessageID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// Get handles GET /api/message/:id.
//
// @Summary      Get a message
// @Tags         message
// @Produce      json
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/message/{id} [get]
func (h *MessageHandler) Get(c echo.Context) error {
	msg, err := h.service.Get(c.Request().Context(), ctxPrincipal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMessageResponse(msg))
}

// Edit handles PUT /api/message.
//
// @Summary      Edit a message's body (author only)
// @Tags         message
// @Accept       json
// @Param        body  body  editMessageRequest  true  "Message edit"
// @Success      204   "edited"
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/message [put]
func (h *MessageHandler) Edit(c echo.Context) error {
	var req editMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Edit(c.Request().Context(), ctxPrincipal(c), req.ChatID, req.MessageID, req.Body); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/message.
//
// @Summary      Delete a message (author, admin or moderator)
// @Tags         message
// @Accept       json
// @Param        body  body  deleteMessageRequest  true  "Message to delete"
// @Success      204   "deleted"
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/message [delete]
func (h *MessageHandler) Delete(c echo.Context) error {
	var req deleteMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Request().Context(), ctxPrincipal(c), req.ChatID, req.MessageID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
