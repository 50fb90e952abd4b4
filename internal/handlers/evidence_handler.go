package handlers

import (
	"fmt"
	"strings"
	"time"

	"dropcars/internal/utils"
	"dropcars/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EvidenceHandler struct {
	store storage.EvidenceStore
}

func NewEvidenceHandler(store storage.EvidenceStore) *EvidenceHandler {
	return &EvidenceHandler{
		store: store,
	}
}

// Upload stores an odometer photo and returns the evidence key to attach
// to a start- or end-trip request.
func (h *EvidenceHandler) Upload(c *gin.Context) {
	driverID, ok := currentUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("evidence")
	if err != nil {
		utils.BadRequestResponse(c, "evidence file is required")
		return
	}
	defer file.Close()

	if header.Size > utils.MaxEvidenceSize {
		utils.BadRequestResponse(c, "evidence file exceeds the size limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.BadRequestResponse(c, "evidence must be an image")
		return
	}

	key := evidenceKey(assignmentID, driverID, header.Filename)
	if _, err := h.store.Upload(c.Request.Context(), key, contentType, file, header.Size); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Evidence uploaded successfully", gin.H{"evidence_key": key})
}

// GetURL returns a short-lived download URL for a stored evidence object
func (h *EvidenceHandler) GetURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		utils.BadRequestResponse(c, "key is required")
		return
	}

	url, err := h.store.PresignURL(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Evidence URL generated successfully", gin.H{"url": url})
}

func evidenceKey(assignmentID, driverID primitive.ObjectID, filename string) string {
	name := strings.ReplaceAll(filename, "/", "_")
	return fmt.Sprintf("evidence/%s/%s/%d_%s", assignmentID.Hex(), driverID.Hex(), time.Now().UnixNano(), name)
}
