package storage

import (
	"context"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NoticePrefix is the key prefix under which notice PDFs are stored.
const NoticePrefix = "notices/"

// PresignedRequest is a signed URL a client can use directly against the bucket.
type PresignedRequest struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileStorage mints signed URLs for notice files and removes them.
type FileStorage interface {
	PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (*PresignedRequest, error)
	PresignDownload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error)
	Delete(ctx context.Context, key string) error
}

// OrganisationPrefix is the key prefix of every file uploaded by one organisation.
func OrganisationPrefix(organisationID uint) string {
	return NoticePrefix + strconv.FormatUint(uint64(organisationID), 10) + "/"
}

// NewObjectKey returns a fresh key for a file uploaded by an organisation, keeping its extension.
func NewObjectKey(organisationID uint, fileName string) string {
	return OrganisationPrefix(organisationID) + uuid.NewString() + strings.ToLower(path.Ext(fileName))
}

// OwnedBy reports whether key was issued to the organisation.
func OwnedBy(key string, organisationID uint) bool {
	return strings.HasPrefix(key, OrganisationPrefix(organisationID)) && !strings.Contains(key, "..")
}
