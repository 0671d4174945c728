package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"apptdesk/models"
	"apptdesk/services/booking"
	"apptdesk/services/speech"
	"apptdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	assistant   ChatAssistant
	transcriber speech.Transcriber
	journal     Analyzer
	language    string
	prepare     func(ctx context.Context, r io.Reader) ([]byte, error)
	logger      *zap.Logger
}

// Chat handles one text message from the web chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	if h.assistant == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "assistant is not configured", "set GEMINI_API_KEY")
		return
	}
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	resp, err := h.assistant.ProcessMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.respondChatError(c, "/api/chat", err, req.Message)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) ResetSession(c *gin.Context) {
	if h.assistant == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "assistant is not configured", "set GEMINI_API_KEY")
		return
	}
	sessionID := c.Param("sessionID")
	if err := h.assistant.ResetSession(c.Request.Context(), sessionID); err != nil {
		getLogger(c, h.logger).Error("Failed to reset session", zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to reset session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "reset": true})
}

// Voice accepts a multipart "audio" upload, transcribes it and runs the transcript
// through the assistant.
func (h *ChatHandler) Voice(c *gin.Context) {
	if h.assistant == nil || h.transcriber == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "voice is not configured",
			"set GEMINI_API_KEY and GOOGLE_SERVICE_ACCOUNT_FILE")
		return
	}
	language := c.DefaultPostForm("language", h.language)
	sessionID := c.PostForm("session_id")

	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	audio, err := h.prepare(ctx, file)
	if err != nil {
		switch {
		case errors.Is(err, speech.ErrAudioTooBig):
			utils.JSONError(c, http.StatusRequestEntityTooLarge, "audio file too large", err.Error())
		default:
			utils.JSONError(c, http.StatusBadRequest, "audio conversion failed", err.Error())
		}
		return
	}

	transcript, err := h.transcriber.Transcribe(ctx, audio, language)
	if err != nil {
		if errors.Is(err, speech.ErrNoSpeech) {
			utils.JSONError(c, http.StatusUnprocessableEntity, "no speech detected", err.Error())
			return
		}
		getLogger(c, h.logger).Error("Transcription failed", zap.Error(err))
		if h.journal != nil {
			h.journal.RecordError("/api/voice", err, "")
		}
		utils.JSONError(c, http.StatusBadGateway, "speech recognition failed", err.Error())
		return
	}

	resp, err := h.assistant.ProcessMessage(ctx, sessionID, transcript)
	if err != nil {
		h.respondChatError(c, "/api/voice", err, transcript)
		return
	}
	resp.Transcript = transcript
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) respondChatError(c *gin.Context, endpoint string, err error, message string) {
	if errors.Is(err, booking.ErrValidation) {
		utils.JSONError(c, http.StatusBadRequest, "invalid message", err.Error())
		return
	}
	getLogger(c, h.logger).Error("Chat processing failed", zap.String("endpoint", endpoint), zap.Error(err))
	if h.journal != nil {
		h.journal.RecordError(endpoint, err, message)
	}
	utils.JSONError(c, http.StatusInternalServerError, "failed to process message", err.Error())
}
