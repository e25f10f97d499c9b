package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/zevarhq/zevar/internal/services"
	"github.com/zevarhq/zevar/internal/storage"
)

// maxAudioBytes bounds one uploaded recording.
const maxAudioBytes = 15 << 20

type VoiceHandler struct {
	transcriber services.Transcriber
	store       *storage.ObjectStore
	logger      *zap.Logger
}

// NewVoiceHandler creates the voice endpoint. store may be nil; archival is
// then skipped entirely.
func NewVoiceHandler(transcriber services.Transcriber, store *storage.ObjectStore, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{transcriber: transcriber, store: store, logger: logger}
}

// HandleTranscribe handles POST /api/voice/transcriptions
// @Summary Transcribe a voice recording
// @Description Convert an uploaded recording to text; the text is not sent as a chat message
// @Tags voice
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio recording"
// @Success 200 {object} models.Transcription
// @Failure 400 {object} map[string]string
// @Router /voice/transcriptions [post]
func (h *VoiceHandler) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read audio: "+err.Error())
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "audio file is empty")
		return
	}

	format := audioFormat(header.Filename)
	userID := UserID(r.Context())

	// Archive first so a failed transcription can still be retried from the
	// stored recording. Failures here never block the user.
	if h.store != nil {
		if url, err := h.store.SaveRecording(r.Context(), userID, data, format); err != nil {
			h.logger.Warn("failed to archive recording", zap.Error(err))
		} else {
			h.logger.Debug("recording archived", zap.String("url", url))
		}
	}

	result, err := h.transcriber.Transcribe(r.Context(), data, format)
	if err != nil {
		h.logger.Error("transcription failed", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func audioFormat(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "wav", "mp3", "ogg", "webm", "m4a", "flac":
		return ext
	default:
		return "wav"
	}
}
