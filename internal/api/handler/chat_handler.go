package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

// ChatHandler handles chat lifecycle and membership endpoints. Authorization
// lives entirely in the service layer; the handler only shapes requests and
// responses.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Create handles POST /api/chat.
//
// @Summary      Create a chat
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      createChatRequest  true  "Chat details"
// @Success      201   {object}  chatResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/chat [post]
func (h *ChatHandler) Create(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	chat, err := h.service.Create(c.Request().Context(), ctxPrincipal(c), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toChatResponse(chat, nil))
}

// Get handles GET /api/chat/:id.
//
// @Summary      Get a chat with members and messages
// @Tags         chat
// @Produce      json
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  chatResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/chat/{id} [get]
func (h *ChatHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), ctxPrincipal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toChatDetailResponse(detail))
}

// Rename handles PUT /api/chat/edit.
//
// @Summary      Rename a chat
// @Tags         chat
// @Accept       json
// @Param        body  body  renameChatRequest  true  "New chat name"
// @Success      204   "renamed"
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/chat/edit [put]
func (h *ChatHandler) Rename(c echo.Context) error {
	var req renameChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Rename(c.Request().Context(), ctxPrincipal(c), req.ChatID, req.Name); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/chat.
//
// @Summary      Delete a chat and its messages
// @Tags         chat
// @Accept       json
// @Param        body  body  deleteChatRequest  true  "Chat to delete"
// @Success      204   "deleted"
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/chat [delete]
func (h *ChatHandler) Delete(c echo.Context) error {
	var req deleteChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Request().Context(), ctxPrincipal(c), req.ChatID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddMember handles PUT /api/chat.
//
// @Summary      Add a user to a chat as MEMBER
// @Tags         chat
// @Accept       json
// @Param        body  body  addMemberRequest  true  "Chat and user"
// @Success      204   "added"
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/chat [put]
func (h *ChatHandler) AddMember(c echo.Context) error {
	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AddMember(c.Request().Context(), ctxPrincipal(c), req.ChatID, req.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveMember handles DELETE /api/chat/user.
//
// @Summary      Remove a user from a chat
// @Tags         chat
// @Accept       json
// @Param        body  body  removeMemberRequest  true  "Chat and user"
// @Success      204   "removed"
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/chat/user [delete]
func (h *ChatHandler) RemoveMember(c echo.Context) error {
	var req removeMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.RemoveMember(c.Request().Context(), ctxPrincipal(c), req.ChatID, req.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReassignRole handles PUT /api/chat/role.
//
// @Summary      Change a member's role
// @Tags         chat
// @Accept       json
// @Param        body  body  reassignRoleRequest  true  "Chat, user and new role"
// @Success      204   "reassigned"
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/chat/role [put]
func (h *ChatHandler) ReassignRole(c echo.Context) error {
	var req reassignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.service.ReassignRole(c.Request().Context(), ctxPrincipal(c), req.ChatID, req.UserID, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
