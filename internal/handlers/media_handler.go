package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/blinkedin/backend/internal/models"
)

// MediaStore is the upload collaborator surface.
type MediaStore interface {
	Save(filename string, r io.Reader) (string, error)
}

// maxUploadBytes caps a single media upload.
const maxUploadBytes = 16 << 20

// MediaHandler accepts photo/audio uploads for an order's room. The stored
// reference is sent into the room as a media message on the uploader's behalf.
type MediaHandler struct {
	Store  MediaStore
	Chat   ChatService
	Logger *slog.Logger
}

// Upload handles POST /v1/orders/{id}/media: multipart form with a `file`
// part and a `type` field (photo or audio).
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p, orderID, ok := principalAndID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, `{"error":"invalid multipart form"}`, http.StatusBadRequest)
		return
	}
	msgType := models.MessageType(r.FormValue("type"))
	if msgType != models.MessagePhoto && msgType != models.MessageAudio {
		http.Error(w, `{"error":"type must be photo or audio"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"missing file"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	ref, err := h.Store.Save(header.Filename, file)
	if err != nil {
		h.Logger.Error("save upload", "order_id", orderID, "error", err)
		http.Error(w, `{"error":"upload failed"}`, http.StatusInternalServerError)
		return
	}

	m, err := h.Chat.Send(r.Context(), p, orderID, ref, msgType)
	if err != nil {
		writeErr(w, h.Logger, err, "send media message")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
