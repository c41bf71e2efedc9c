package models

import (
	"errors"
	"fmt"
)

type NoticeStatus string

const (
	NoticeStatusDraft     NoticeStatus = "draft"
	NoticeStatusPublished NoticeStatus = "published"
	NoticeStatusArchived  NoticeStatus = "archived"
)

var (
	ErrInvalidNoticeStatus = errors.New("invalid notice status")
	ErrIllegalTransition   = errors.New("illegal notice status transition")
)

// noticeTransitions lists, for each status, the statuses a notice may move to.
var noticeTransitions = map[NoticeStatus][]NoticeStatus{
	NoticeStatusDraft:     {NoticeStatusPublished, NoticeStatusArchived},
	NoticeStatusPublished: {NoticeStatusDraft, NoticeStatusArchived},
	NoticeStatusArchived:  {NoticeStatusDraft, NoticeStatusPublished},
}

// ParseNoticeStatus converts s into a NoticeStatus, rejecting anything outside the enum.
func ParseNoticeStatus(s string) (NoticeStatus, error) {
	status := NoticeStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidNoticeStatus, s)
	}
	return status, nil
}

func (s NoticeStatus) Valid() bool {
	_, ok := noticeTransitions[s]
	return ok
}

func (s NoticeStatus) String() string {
	return string(s)
}

// CheckTransition returns nil when a notice in status from may be moved to status to.
// Moving to the current status is allowed and is a no-op for callers.
func CheckTransition(from, to NoticeStatus) error {
	if !from.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidNoticeStatus, from)
	}
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidNoticeStatus, to)
	}
	if from == to {
		return nil
	}
	for _, next := range noticeTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
