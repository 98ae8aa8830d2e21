package handlers

import (
	"net/http"
	"strings"

	"carmarket-backend/internal/api/middleware"
	"carmarket-backend/internal/services"
	"carmarket-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ChatHandler struct {
	chatService ChatAPI
	validator   *validator.Validate
}

func NewChatHandler(chatService ChatAPI) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validator:   validator.New(),
	}
}

// CreateSession opens a conversation. Signed-in users own the session;
// anonymous buyers may chat too.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var owner *string
	if userID, ok := middleware.UserID(c); ok {
		owner = &userID
	}

	session, err := h.chatService.CreateSession(c.Request.Context(), owner)
	if err != nil {
		respondError(c, "Failed to create chat session", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Chat session created", session)
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.chatService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Chat session not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Chat session retrieved", session)
}

// SendMessage runs one conversational turn
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req services.TurnInput
	if !bindJSON(c, h.validator, &req) {
		return
	}

	if strings.TrimSpace(req.Content) == "" && (req.TranscriptText == nil || strings.TrimSpace(*req.TranscriptText) == "") {
		utils.ErrorResponse(c, http.StatusBadRequest, "Message content is required", nil)
		return
	}

	result, err := h.chatService.ProcessTurn(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "Failed to process message", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Message processed", result)
}
