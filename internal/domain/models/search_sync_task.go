package models

import "time"

type SearchSyncOperation string

const (
	SearchSyncUpsert SearchSyncOperation = "upsert"
	SearchSyncDelete SearchSyncOperation = "delete"
)

// SearchSyncTask is an outbox row: a pending change to push to the hosted search index.
// It is written in the same transaction as the notice change it describes.
type SearchSyncTask struct {
	BaseModel
	NoticeID      uint                `gorm:"index;not null" json:"noticeId"`
	Operation     SearchSyncOperation `gorm:"type:varchar(10);not null" json:"operation"`
	Attempts      int                 `gorm:"not null;default:0" json:"attempts"`
	LastError     string              `gorm:"type:varchar(500)" json:"lastError"`
	NextAttemptAt time.Time           `gorm:"index" json:"nextAttemptAt"`
}

func NewSearchSyncTask(noticeID uint, op SearchSyncOperation) *SearchSyncTask {
	return &SearchSyncTask{
		NoticeID:      noticeID,
		Operation:     op,
		NextAttemptAt: time.Now(),
	}
}
