package handlers

import (
	"errors"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// handleServiceError translates the service error taxonomy into HTTP
// responses. Anything unrecognized is a 500 with the detail kept out
// of the response body.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrTopicLocked),
		errors.Is(err, services.ErrInvitationExpired):
		utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTopicDeleted):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrVerificationNeeded):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrQuotaExceeded):
		utils.Forbidden(c, err.Error())
	default:
		_ = c.Error(err)
		utils.InternalServerError(c, "An unexpected error occurred")
	}
}

// ReplyResponse is the wire shape of a reply. Deleted replies keep
// their position in the thread but expose no content or author.
type ReplyResponse struct {
	ID            uint         `json:"id"`
	TopicID       uint         `json:"topic_id"`
	ParentReplyID *uint        `json:"parent_reply_id,omitempty"`
	Depth         int          `json:"depth"`
	Content       string       `json:"content"`
	AuthorID      *uint        `json:"author_id,omitempty"`
	Author        *models.User `json:"author,omitempty"`
	IsBestAnswer  bool         `json:"is_best_answer"`
	IsDeleted     bool         `json:"is_deleted"`
	LikeCount     int          `json:"like_count"`
	ChildCount    int          `json:"child_reply_count"`
	EditedAt      *time.Time   `json:"edited_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func toReplyResponse(reply *models.ForumReply) ReplyResponse {
	resp := ReplyResponse{
		ID:            reply.ID,
		TopicID:       reply.TopicID,
		ParentReplyID: reply.ParentReplyID,
		Depth:         reply.Depth,
		IsBestAnswer:  reply.IsBestAnswer,
		IsDeleted:     reply.IsDeleted,
		LikeCount:     reply.LikeCount,
		ChildCount:    reply.ChildReplyCount,
		CreatedAt:     reply.CreatedAt,
	}

	if reply.IsDeleted {
		resp.Content = "[deleted]"
		return resp
	}

	authorID := reply.AuthorID
	resp.Content = reply.Content
	resp.AuthorID = &authorID
	if reply.Author.ID != 0 {
		resp.Author = &reply.Author
	}
	resp.EditedAt = reply.EditedAt
	return resp
}

func toReplyResponses(replies []models.ForumReply) []ReplyResponse {
	out := make([]ReplyResponse, 0, len(replies))
	for i := range replies {
		out = append(out, toReplyResponse(&replies[i]))
	}
	return out
}
