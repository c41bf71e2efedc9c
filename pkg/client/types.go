package client

import "time"

// NoticeStatus is the publication state of a notice.
type NoticeStatus string

const (
	NoticeStatusDraft     NoticeStatus = "draft"
	NoticeStatusPublished NoticeStatus = "published"
	NoticeStatusArchived  NoticeStatus = "archived"
)

// Notice is a notice as the API returns it. DownloadURL is signed and short-lived.
type Notice struct {
	ID                uint         `json:"id"`
	Title             string       `json:"title"`
	FileName          string       `json:"fileName"`
	FileSize          int64        `json:"fileSize"`
	FileType          string       `json:"fileType"`
	DownloadURL       string       `json:"uploadUrl"`
	StartDate         *time.Time   `json:"startDate"`
	EndDate           *time.Time   `json:"endDate"`
	Status            NoticeStatus `json:"status"`
	AuthorID          uint         `json:"authorId"`
	BuildingComplexID uint         `json:"buildingComplexId"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Page is one page of a cursor listing; NextCursor is nil on the last page.
type Page[T any] struct {
	Items      []T   `json:"items"`
	NextCursor *uint `json:"nextCursor"`
}
