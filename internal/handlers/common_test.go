package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ErrValidation, http.StatusBadRequest},
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"topic deleted", services.ErrTopicDeleted, http.StatusNotFound},
		{"permission denied", services.ErrPermissionDenied, http.StatusForbidden},
		{"verification needed", services.ErrVerificationNeeded, http.StatusForbidden},
		{"quota exceeded", services.ErrQuotaExceeded, http.StatusForbidden},
		{"conflict", services.ErrConflict, http.StatusConflict},
		{"topic locked", services.ErrTopicLocked, http.StatusConflict},
		{"invitation expired", services.ErrInvitationExpired, http.StatusConflict},
		{"unrecognized", errors.New("driver: connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			// Services wrap sentinels with detail; the mapping must
			// survive the wrapping.
			handleServiceError(c, fmt.Errorf("%w: detail", tc.err))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestToReplyResponseMasksDeleted(t *testing.T) {
	edited := time.Now().UTC()
	reply := models.ForumReply{
		ID:       12,
		TopicID:  3,
		AuthorID: 7,
		Content:  "original content",
		EditedAt: &edited,
		Author:   models.User{ID: 7, FirstName: "Test"},
	}

	live := toReplyResponse(&reply)
	assert.Equal(t, "original content", live.Content)
	require.NotNil(t, live.AuthorID)
	assert.EqualValues(t, 7, *live.AuthorID)
	require.NotNil(t, live.Author)
	assert.NotNil(t, live.EditedAt)

	reply.IsDeleted = true
	masked := toReplyResponse(&reply)
	assert.Equal(t, "[deleted]", masked.Content)
	assert.Nil(t, masked.AuthorID)
	assert.Nil(t, masked.Author)
	assert.Nil(t, masked.EditedAt)
	// Thread shape survives: position fields stay intact.
	assert.EqualValues(t, 12, masked.ID)
	assert.EqualValues(t, 3, masked.TopicID)
}
