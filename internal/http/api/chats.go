package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finbot-app/finbot/internal/chat"
	"github.com/finbot-app/finbot/internal/models"
	"github.com/gin-gonic/gin"
)

// ChatHandler serves chat persistence and the history-derived insight
// endpoints. Every route requires a resolved session.
type ChatHandler struct {
	svc *chat.Service
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// saveChatRequest captures one chat save payload.
type saveChatRequest struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Messages  []models.Message `json:"messages"`
	Model     string           `json:"model"`
	Region    string           `json:"region"`
	CreatedAt *time.Time       `json:"createdAt"`
}

// chatResponse is the wire projection of one chat document.
type chatResponse struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Messages  []models.Message `json:"messages"`
	Model     string           `json:"model"`
	Region    string           `json:"region"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func toChatResponse(doc *models.Chat) (chatResponse, error) {
	messages, errDecode := models.DecodeMessages(doc.Messages)
	if errDecode != nil {
		return chatResponse{}, errDecode
	}
	return chatResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Messages:  messages,
		Model:     doc.Model,
		Region:    doc.Region,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Save upserts one chat for the caller.
func (h *ChatHandler) Save(c *gin.Context) {
	var req saveChatRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	chatID, errSave := h.svc.SaveChat(c.Request.Context(), currentUserID(c), chat.SaveInput{
		ID:        req.ID,
		Title:     req.Title,
		Messages:  req.Messages,
		Model:     req.Model,
		Region:    req.Region,
		CreatedAt: req.CreatedAt,
	})
	if errSave != nil {
		if errors.Is(errSave, chat.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errSave.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save chat failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chatId": chatID})
}

// List returns the caller's chats, most recently updated first. An
// optional q parameter filters by title, case-insensitively.
func (h *ChatHandler) List(c *gin.Context) {
	chats, errList := h.svc.SearchUserChats(c.Request.Context(), currentUserID(c), c.Query("q"))
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list chats failed"})
		return
	}

	out := make([]chatResponse, 0, len(chats))
	for i := range chats {
		resp, errConvert := toChatResponse(&chats[i])
		if errConvert != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list chats failed"})
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chats": out})
}

// Get returns one chat by primary or client id.
func (h *ChatHandler) Get(c *gin.Context) {
	doc, errGet := h.svc.GetChatByID(c.Request.Context(), currentUserID(c), c.Param("id"))
	if errGet != nil {
		if errors.Is(errGet, chat.ErrNotFoundOrUnauthorized) {
			c.JSON(http.StatusNotFound, gin.H{"error": errGet.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get chat failed"})
		return
	}
	resp, errConvert := toChatResponse(doc)
	if errConvert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get chat failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chat": resp})
}

// Delete removes one chat. Absent and not-owned collapse into the same
// response.
func (h *ChatHandler) Delete(c *gin.Context) {
	if errDelete := h.svc.DeleteChat(c.Request.Context(), currentUserID(c), c.Param("id")); errDelete != nil {
		if errors.Is(errDelete, chat.ErrNotFoundOrUnauthorized) {
			c.JSON(http.StatusNotFound, gin.H{"error": errDelete.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete chat failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// limitParam parses the optional limit query parameter.
func limitParam(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, errParse := strconv.Atoi(raw)
	if errParse != nil || limit <= 0 {
		return fallback
	}
	return limit
}

// FrequentQueries returns the caller's most repeated questions.
func (h *ChatHandler) FrequentQueries(c *gin.Context) {
	queries, errQueries := h.svc.GetFrequentQueries(c.Request.Context(), currentUserID(c), limitParam(c, 4))
	if errQueries != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get frequent queries failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "queries": queries})
}

// Suggestions returns personalized follow-up prompts.
func (h *ChatHandler) Suggestions(c *gin.Context) {
	suggestions, errSuggest := h.svc.GetPersonalizedSuggestions(c.Request.Context(), currentUserID(c), limitParam(c, 4))
	if errSuggest != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get suggestions failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "suggestions": suggestions})
}
