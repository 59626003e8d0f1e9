package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/mocks"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttachmentService(env *testEnv) (*services.AttachmentService, *mocks.MockBlobStore) {
	blobs := mocks.NewMockBlobStore()
	return services.NewAttachmentService(env.db, blobs, 25), blobs
}

func TestRequestUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, blobs := newAttachmentService(env)

	org := env.createOrganization(t, "acme")
	user := env.createUser(t, org, "user@acme.example", models.RoleMember, false)

	ticket, err := attachments.RequestUpload(ctx, user, services.RequestUploadInput{
		FileName:    "vibration-report.pdf",
		ContentType: "application/pdf",
		SizeBytes:   1024,
	})
	require.NoError(t, err)
	assert.Equal(t, "vibration-report.pdf", ticket.Attachment.FileName)
	assert.Equal(t, org.ID, ticket.Attachment.OrganizationID)
	assert.Contains(t, ticket.Attachment.StorageKey, fmt.Sprintf("org-%d/", org.ID))
	assert.Contains(t, ticket.UploadURL, "https://blobs.test/upload/")
	require.Len(t, blobs.PresignUploadCalls, 1)

	// Path components in the client-supplied name are stripped.
	ticket, err = attachments.RequestUpload(ctx, user, services.RequestUploadInput{
		FileName:    "../../etc/passwd.png",
		ContentType: "image/png",
		SizeBytes:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, "passwd.png", ticket.Attachment.FileName)
}

func TestRequestUploadValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, _ := newAttachmentService(env)

	org := env.createOrganization(t, "acme")
	user := env.createUser(t, org, "user@acme.example", models.RoleMember, false)

	cases := []struct {
		name  string
		input services.RequestUploadInput
	}{
		{"executable", services.RequestUploadInput{FileName: "tool.exe", ContentType: "application/x-msdownload", SizeBytes: 10}},
		{"oversized", services.RequestUploadInput{FileName: "big.zip", ContentType: "application/zip", SizeBytes: 26 * 1024 * 1024}},
		{"zero bytes", services.RequestUploadInput{FileName: "empty.txt", ContentType: "text/plain", SizeBytes: 0}},
		{"no name", services.RequestUploadInput{FileName: "   ", ContentType: "text/plain", SizeBytes: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := attachments.RequestUpload(ctx, user, tc.input)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestAttachToTopic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, _ := newAttachmentService(env)

	org := env.createOrganization(t, "acme")
	uploader := env.createUser(t, org, "uploader@acme.example", models.RoleMember, false)
	other := env.createUser(t, org, "other@acme.example", models.RoleMember, false)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, uploader, category, "Topic with attachment")

	ticket, err := attachments.RequestUpload(ctx, uploader, services.RequestUploadInput{
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   2048,
	})
	require.NoError(t, err)

	// Only the uploader links, and only once.
	err = attachments.AttachToTopic(ctx, other, ticket.Attachment.ID, topic.ID)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	require.NoError(t, attachments.AttachToTopic(ctx, uploader, ticket.Attachment.ID, topic.ID))

	err = attachments.AttachToTopic(ctx, uploader, ticket.Attachment.ID, topic.ID)
	assert.ErrorIs(t, err, services.ErrConflict)

	listed, err := attachments.ListForTopic(ctx, org.ID, topic.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, ticket.Attachment.ID, listed[0].ID)
}

func TestAttachToMissingTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, _ := newAttachmentService(env)

	org := env.createOrganization(t, "acme")
	uploader := env.createUser(t, org, "uploader@acme.example", models.RoleMember, false)

	ticket, err := attachments.RequestUpload(ctx, uploader, services.RequestUploadInput{
		FileName:    "notes.txt",
		ContentType: "text/plain",
		SizeBytes:   100,
	})
	require.NoError(t, err)

	err = attachments.AttachToTopic(ctx, uploader, ticket.Attachment.ID, 9999)
	assert.ErrorIs(t, err, services.ErrNotFound)

	err = attachments.AttachToReply(ctx, uploader, ticket.Attachment.ID, 9999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDownloadURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, blobs := newAttachmentService(env)

	orgA := env.createOrganization(t, "alpha")
	orgB := env.createOrganization(t, "beta")
	uploader := env.createUser(t, orgA, "uploader@alpha.example", models.RoleMember, false)
	outsider := env.createUser(t, orgB, "outsider@beta.example", models.RoleMember, false)

	ticket, err := attachments.RequestUpload(ctx, uploader, services.RequestUploadInput{
		FileName:    "layout.pdf",
		ContentType: "application/pdf",
		SizeBytes:   4096,
	})
	require.NoError(t, err)

	url, err := attachments.DownloadURL(ctx, uploader, ticket.Attachment.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "https://blobs.test/download/")
	require.Len(t, blobs.PresignDownloadCalls, 1)

	// Other tenants cannot even learn the attachment exists.
	_, err = attachments.DownloadURL(ctx, outsider, ticket.Attachment.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteAttachment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, blobs := newAttachmentService(env)

	org := env.createOrganization(t, "acme")
	uploader := env.createUser(t, org, "uploader@acme.example", models.RoleMember, false)
	other := env.createUser(t, org, "other@acme.example", models.RoleMember, false)
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)

	first, err := attachments.RequestUpload(ctx, uploader, services.RequestUploadInput{
		FileName:    "a.png",
		ContentType: "image/png",
		SizeBytes:   100,
	})
	require.NoError(t, err)
	second, err := attachments.RequestUpload(ctx, uploader, services.RequestUploadInput{
		FileName:    "b.png",
		ContentType: "image/png",
		SizeBytes:   100,
	})
	require.NoError(t, err)

	err = attachments.Delete(ctx, other, first.Attachment.ID)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	require.NoError(t, attachments.Delete(ctx, uploader, first.Attachment.ID))
	require.NoError(t, attachments.Delete(ctx, admin, second.Attachment.ID))
	assert.Len(t, blobs.DeleteCalls, 2)

	_, err = attachments.DownloadURL(ctx, uploader, first.Attachment.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteAttachmentSurvivesBlobFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, blobs := newAttachmentService(env)

	org := env.createOrganization(t, "acme")
	uploader := env.createUser(t, org, "uploader@acme.example", models.RoleMember, false)

	ticket, err := attachments.RequestUpload(ctx, uploader, services.RequestUploadInput{
		FileName:    "c.png",
		ContentType: "image/png",
		SizeBytes:   100,
	})
	require.NoError(t, err)

	// A failing blob store must not block the metadata delete.
	blobs.ShouldError = true
	require.NoError(t, attachments.Delete(ctx, uploader, ticket.Attachment.ID))
	assert.Len(t, blobs.DeleteCalls, 1)

	_, err = attachments.DownloadURL(ctx, uploader, ticket.Attachment.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
