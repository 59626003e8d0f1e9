package handlers

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	attachments *services.AttachmentService
}

func NewAttachmentHandler(attachments *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// RequestUpload handles POST /api/v1/attachments.
func (h *AttachmentHandler) RequestUpload(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input services.RequestUploadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "file_name, content_type and size_bytes are required")
		return
	}

	ticket, err := h.attachments.RequestUpload(c.Request.Context(), user, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Created(c, "Upload ticket issued", ticket)
}

type linkAttachmentRequest struct {
	TopicID *uint `json:"topic_id"`
	ReplyID *uint `json:"reply_id"`
}

// Link handles POST /api/v1/attachments/:id/link.
func (h *AttachmentHandler) Link(c *gin.Context) {
	user := middleware.CurrentUser(c)

	attachmentID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid attachment id")
		return
	}

	var req linkAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "topic_id or reply_id is required")
		return
	}

	switch {
	case req.TopicID != nil && req.ReplyID == nil:
		err = h.attachments.AttachToTopic(c.Request.Context(), user, attachmentID, *req.TopicID)
	case req.ReplyID != nil && req.TopicID == nil:
		err = h.attachments.AttachToReply(c.Request.Context(), user, attachmentID, *req.ReplyID)
	default:
		utils.BadRequest(c, "exactly one of topic_id or reply_id is required")
		return
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

// Download handles GET /api/v1/attachments/:id/download.
func (h *AttachmentHandler) Download(c *gin.Context) {
	user := middleware.CurrentUser(c)

	attachmentID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid attachment id")
		return
	}

	url, err := h.attachments.DownloadURL(c.Request.Context(), user, attachmentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, gin.H{"download_url": url})
}

// ListForTopic handles GET /api/v1/topics/:id/attachments.
func (h *AttachmentHandler) ListForTopic(c *gin.Context) {
	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	attachments, err := h.attachments.ListForTopic(c.Request.Context(), middleware.CurrentOrganizationID(c), topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, attachments)
}

// Delete handles DELETE /api/v1/attachments/:id.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	attachmentID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid attachment id")
		return
	}

	if err := h.attachments.Delete(c.Request.Context(), user, attachmentID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}
