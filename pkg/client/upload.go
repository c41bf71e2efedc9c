package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// LargeFileBytes is the size above which an upload is flagged. Larger files
// are still uploaded.
const LargeFileBytes = 1 << 20

// ErrFileRequired is returned by UploadNotice when no file content is given.
var ErrFileRequired = errors.New("File is required")

// File is a document to upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NoticeMeta describes the notice created for an uploaded file.
type NoticeMeta struct {
	Title             string
	BuildingComplexID uint
	StartDate         *time.Time
	EndDate           *time.Time
	Status            NoticeStatus
}

// UploadResult is the created notice plus any warning raised on the way.
type UploadResult struct {
	Notice  *Notice
	Warning string
}

type presignResponse struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Method string `json:"method"`
}

type createNoticeRequest struct {
	Title             string     `json:"title"`
	FileName          string     `json:"fileName"`
	FileKey           string     `json:"fileKey"`
	FileSize          int64      `json:"fileSize"`
	FileType          string     `json:"fileType"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	Status            string     `json:"status,omitempty"`
	BuildingComplexID uint       `json:"buildingComplexId"`
}

// UploadNotice asks for a signed upload URL, PUTs the file to it and records the notice.
func (c *Client) UploadNotice(ctx context.Context, file *File, meta NoticeMeta) (*UploadResult, error) {
	if file == nil || len(file.Data) == 0 {
		return nil, ErrFileRequired
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	result := &UploadResult{}
	if len(file.Data) > LargeFileBytes {
		result.Warning = fmt.Sprintf("%s is %.1f MB, larger than the recommended 1 MB", file.Name, float64(len(file.Data))/(1<<20))
		c.logger.Warn("uploading large notice file",
			zap.String("file", file.Name),
			zap.Int("bytes", len(file.Data)))
	}

	var presigned presignResponse
	err := c.call(ctx, c.http.R().SetBody(map[string]string{"fileName": file.Name, "fileType": contentType}),
		resty.MethodPost, "/upload/presign", &presigned)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	if err := c.putObject(ctx, presigned.URL, contentType, file.Data); err != nil {
		return nil, err
	}

	var notice Notice
	err = c.call(ctx, c.http.R().SetBody(createNoticeRequest{
		Title:             meta.Title,
		FileName:          file.Name,
		FileKey:           presigned.Key,
		FileSize:          int64(len(file.Data)),
		FileType:          contentType,
		StartDate:         meta.StartDate,
		EndDate:           meta.EndDate,
		Status:            string(meta.Status),
		BuildingComplexID: meta.BuildingComplexID,
	}), resty.MethodPost, "/notices", &notice)
	if err != nil {
		return nil, fmt.Errorf("create notice: %w", err)
	}

	result.Notice = &notice
	return result, nil
}

// putObject sends the file straight to object storage. The signed URL carries
// its own credentials, so the session token is not sent.
func (c *Client) putObject(ctx context.Context, url, contentType string, data []byte) error {
	resp, err := resty.New().
		SetTimeout(2*time.Minute).
		R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(url)
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("upload file: unexpected status %d", resp.StatusCode())
	}
	return nil
}
