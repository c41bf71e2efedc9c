package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfflineStorage() FileStorage {
	client := s3.New(s3.Options{
		Region:       "ap-southeast-2",
		Credentials:  credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		BaseEndpoint: aws.String("http://localhost:4566"),
		UsePathStyle: true,
	})
	return NewS3FileStorageFromClient(client, "notices-bucket")
}

func TestNewObjectKey(t *testing.T) {
	a := NewObjectKey(9, "Lift Maintenance.PDF")
	b := NewObjectKey(9, "Lift Maintenance.PDF")

	assert.True(t, strings.HasPrefix(a, "notices/9/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.NotEqual(t, a, b)
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(a, OrganisationPrefix(9)), ".pdf"), 36)
}

func TestOwnedBy(t *testing.T) {
	key := NewObjectKey(9, "lift.pdf")

	assert.True(t, OwnedBy(key, 9))
	assert.False(t, OwnedBy(key, 90), "prefixes must not match on a shared leading digit")
	assert.False(t, OwnedBy(key, 7))
	assert.False(t, OwnedBy("notices/abc.pdf", 9))
	assert.False(t, OwnedBy("notices/9/../7/abc.pdf", 9))
}

func TestPresignUpload(t *testing.T) {
	req, err := newOfflineStorage().PresignUpload(context.Background(), "notices/abc.pdf", "application/pdf", 60*time.Second)
	require.NoError(t, err)

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "/notices-bucket/notices/abc.pdf", u.Path)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, "notices/abc.pdf", req.Key)
}

func TestPresignDownload(t *testing.T) {
	req, err := newOfflineStorage().PresignDownload(context.Background(), "notices/abc.pdf", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), req.ExpiresAt, 5*time.Second)
}
