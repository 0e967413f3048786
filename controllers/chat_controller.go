package controllers

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"HavenGo/config"
	"HavenGo/models"
	"HavenGo/services"
	"HavenGo/store"
	"HavenGo/utils"
)

type ChatController struct {
	chatService *services.ChatService
	syncService *services.SyncService
	local       *store.LocalStore
	wg          sync.WaitGroup
}

func NewChatController(chatService *services.ChatService, syncService *services.SyncService, local *store.LocalStore) *ChatController {
	return &ChatController{
		chatService: chatService,
		syncService: syncService,
		local:       local,
	}
}

// SendMessage handles one user turn: the message is durable locally before
// the LLM is even called, the reply streams to the client, and the assistant
// turn plus the conversation preview are persisted after the stream ends.
func (cc *ChatController) SendMessage(ctx *gin.Context) {
	var chatRequest models.ChatRequest
	if err := ctx.ShouldBindJSON(&chatRequest); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	now := time.Now().UnixMilli()

	var conversation models.Conversation
	if chatRequest.ConversationID == "" {
		conversation = models.Conversation{
			ID:        utils.GenerateID(),
			Title:     services.BuildTitle(chatRequest.Message),
			CreatedAt: now,
		}
	} else {
		var err error
		conversation, err = cc.local.GetConversation(chatRequest.ConversationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		if err != nil {
			config.Logger.Errorw("conversation lookup failed", "error", err, "id", chatRequest.ConversationID)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
			return
		}
	}

	// Prior turns, read before the new message is appended.
	history, err := cc.local.ListMessages(conversation.ID)
	if err != nil {
		config.Logger.Errorw("history load failed", "error", err, "conversationId", conversation.ID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load message history"})
		return
	}

	userMessage := models.ChatMessage{
		ID:             utils.GenerateID(),
		ConversationID: conversation.ID,
		Role:           models.RoleUser,
		Content:        chatRequest.Message,
		CreatedAt:      now,
	}
	if err := cc.syncService.SaveMessage(&userMessage); err != nil {
		config.Logger.Errorw("user message save failed", "error", err, "conversationId", conversation.ID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Conversation-Id", conversation.ID)
	ctx.Header("X-Accel-Buffering", "no")

	stream := cc.chatService.GenerateCompanionResponse(ctx.Request.Context(), history, chatRequest.Message)

	var fullResponse strings.Builder
	for chunk := range stream {
		if _, err := ctx.Writer.Write([]byte(chunk)); err != nil {
			config.Logger.Warnw("stream write failed", "error", err, "conversationId", conversation.ID)
			// Keep consuming so the producer can finish and close the channel.
			for range stream {
			}
			break
		}
		ctx.Writer.Flush()
		fullResponse.WriteString(chunk)
	}

	// Persist the assistant turn and the preview off the request path.
	cc.wg.Add(1)
	go func() {
		defer cc.wg.Done()

		reply := fullResponse.String()
		repliedAt := time.Now().UnixMilli()

		assistantMessage := models.ChatMessage{
			ID:             utils.GenerateID(),
			ConversationID: conversation.ID,
			Role:           models.RoleAssistant,
			Content:        reply,
			CreatedAt:      repliedAt,
		}
		if err := cc.syncService.SaveMessage(&assistantMessage); err != nil {
			config.Logger.Errorw("assistant message save failed", "error", err, "conversationId", conversation.ID)
		}

		// Mutating the preview re-marks the conversation unsynced.
		conversation.LastMessage = services.BuildTitle(reply)
		conversation.LastMessageAt = repliedAt
		if err := cc.syncService.SaveConversation(&conversation); err != nil {
			config.Logger.Errorw("conversation update failed", "error", err, "id", conversation.ID)
		}
	}()
}

// GetConversations lists conversation summaries, newest activity first.
func (cc *ChatController) GetConversations(ctx *gin.Context) {
	conversations, err := cc.syncService.LoadConversations(ctx.Request.Context())
	if err != nil {
		config.Logger.Errorw("conversation list failed", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": conversations})
}

// GetMessages lists a conversation's turns oldest-first.
func (cc *ChatController) GetMessages(ctx *gin.Context) {
	conversationID := ctx.Param("id")
	messages, err := cc.syncService.LoadMessages(ctx.Request.Context(), conversationID)
	if err != nil {
		config.Logger.Errorw("message list failed", "error", err, "conversationId", conversationID)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": messages})
}

// DeleteConversation removes a thread and its messages.
func (cc *ChatController) DeleteConversation(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := cc.syncService.DeleteConversation(id); err != nil {
		config.Logger.Errorw("conversation delete failed", "error", err, "id", id)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete conversation"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "conversation deleted"})
}

// Wait drains post-stream persistence goroutines at shutdown.
func (cc *ChatController) Wait() {
	cc.wg.Wait()
}
