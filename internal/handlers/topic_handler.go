package handlers

import (
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/middleware"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TopicHandler serves topics, their reply threads and the best-answer
// selection.
type TopicHandler struct {
	topics      *services.TopicService
	bestAnswers *services.BestAnswerService
	engagement  *services.EngagementService
}

func NewTopicHandler(topics *services.TopicService, bestAnswers *services.BestAnswerService, engagement *services.EngagementService) *TopicHandler {
	return &TopicHandler{
		topics:      topics,
		bestAnswers: bestAnswers,
		engagement:  engagement,
	}
}

// Create handles POST /api/v1/topics.
func (h *TopicHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input services.CreateTopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "category_id, title and body are required")
		return
	}

	topic, err := h.topics.CreateTopic(c.Request.Context(), user, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Created(c, "Topic created", topic)
}

// List handles GET /api/v1/topics.
func (h *TopicHandler) List(c *gin.Context) {
	orgID := middleware.CurrentOrganizationID(c)
	page, limit := utils.ParsePagination(c)

	filter := services.TopicFilter{
		CategorySlug: c.Query("category"),
		Tag:          c.Query("tag"),
		Sort:         c.DefaultQuery("sort", "newest"),
		Page:         page,
		Limit:        limit,
	}
	if authorID, err := utils.ParseUintQuery(c, "author_id"); err == nil {
		filter.AuthorID = authorID
	}

	topics, total, err := h.topics.ListTopics(c.Request.Context(), orgID, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Paginated(c, topics, page, limit, total)
}

// Get handles GET /api/v1/topics/:id. Every successful fetch records
// a view event, anonymous or not.
func (h *TopicHandler) Get(c *gin.Context) {
	orgID := middleware.CurrentOrganizationID(c)

	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	topic, err := h.topics.GetTopic(c.Request.Context(), orgID, topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.engagement.RecordView(c.Request.Context(), orgID, topic.ID,
		middleware.CurrentUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		_ = c.Error(err)
	} else {
		topic.ViewCount++
	}

	utils.OK(c, topic)
}

// Delete handles DELETE /api/v1/topics/:id.
func (h *TopicHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	if err := h.topics.SoftDeleteTopic(c.Request.Context(), user, topicID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

// CreateReply handles POST /api/v1/topics/:id/replies.
func (h *TopicHandler) CreateReply(c *gin.Context) {
	user := middleware.CurrentUser(c)

	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	var input services.CreateReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(c, "content is required")
		return
	}

	reply, err := h.topics.CreateReply(c.Request.Context(), user, topicID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Created(c, "Reply created", toReplyResponse(reply))
}

// ListReplies handles GET /api/v1/topics/:id/replies.
func (h *TopicHandler) ListReplies(c *gin.Context) {
	orgID := middleware.CurrentOrganizationID(c)

	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	replies, err := h.topics.ListReplies(c.Request.Context(), orgID, topicID, c.DefaultQuery("order", "oldest"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, toReplyResponses(replies))
}

type editReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

// EditReply handles PUT /api/v1/replies/:id.
func (h *TopicHandler) EditReply(c *gin.Context) {
	user := middleware.CurrentUser(c)

	replyID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid reply id")
		return
	}

	var req editReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "content is required")
		return
	}

	reply, err := h.topics.EditReply(c.Request.Context(), user, replyID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, toReplyResponse(reply))
}

// DeleteReply handles DELETE /api/v1/replies/:id.
func (h *TopicHandler) DeleteReply(c *gin.Context) {
	user := middleware.CurrentUser(c)

	replyID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid reply id")
		return
	}

	if err := h.topics.SoftDeleteReply(c.Request.Context(), user, replyID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.NoContent(c)
}

type markBestAnswerRequest struct {
	ReplyID uint `json:"reply_id" binding:"required"`
}

// MarkBestAnswer handles PUT /api/v1/topics/:id/best-answer.
func (h *TopicHandler) MarkBestAnswer(c *gin.Context) {
	user := middleware.CurrentUser(c)

	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	var req markBestAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "reply_id is required")
		return
	}

	topic, err := h.bestAnswers.Mark(c.Request.Context(), user, topicID, req.ReplyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, topic)
}

// UnmarkBestAnswer handles DELETE /api/v1/topics/:id/best-answer.
func (h *TopicHandler) UnmarkBestAnswer(c *gin.Context) {
	user := middleware.CurrentUser(c)

	topicID, err := utils.ParseUintParam(c, "id")
	if err != nil {
		utils.BadRequest(c, "Invalid topic id")
		return
	}

	topic, err := h.bestAnswers.Unmark(c.Request.Context(), user, topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.OK(c, topic)
}
