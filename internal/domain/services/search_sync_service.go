package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/infrastructure/config"
	"noticeboard-http-service/internal/infrastructure/search"
)

const (
	searchSyncBatchSize   = 50
	searchSyncBaseBackoff = 30 * time.Second
	searchSyncMaxBackoff  = time.Hour
	maxLastErrorLength    = 500
)

// InterfaceSearchSyncService drains the search outbox.
type InterfaceSearchSyncService interface {
	Run(ctx context.Context)
	ProcessDue(ctx context.Context) (int, error)
}

type SearchSyncService struct {
	DB       *gorm.DB
	Index    search.Index
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewSearchSyncService(db *gorm.DB, cfg *config.Config, index search.Index, logger *zap.Logger) InterfaceSearchSyncService {
	return &SearchSyncService{
		DB:       db,
		Index:    index,
		interval: cfg.SearchSyncInterval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run processes due tasks every interval until ctx is cancelled.
func (s *SearchSyncService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("search sync worker started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("search sync worker stopped")
			return
		case <-ticker.C:
			if n, err := s.ProcessDue(ctx); err != nil {
				s.logger.Error("search sync pass failed", zap.Error(err))
			} else if n > 0 {
				s.logger.Info("search sync pass finished", zap.Int("synced", n))
			}
		}
	}
}

// ProcessDue applies one batch of due tasks and returns how many succeeded.
func (s *SearchSyncService) ProcessDue(ctx context.Context) (int, error) {
	var tasks []models.SearchSyncTask
	err := s.DB.WithContext(ctx).
		Where("next_attempt_at <= ?", s.now()).
		Order("id").
		Limit(searchSyncBatchSize).
		Find(&tasks).Error
	if err != nil {
		return 0, fmt.Errorf("load search sync tasks: %w", err)
	}

	synced := 0
	for i := range tasks {
		task := &tasks[i]
		if err := s.apply(ctx, task); err != nil {
			s.reschedule(ctx, task, err)
			continue
		}
		if err := s.DB.WithContext(ctx).Delete(&models.SearchSyncTask{}, task.ID).Error; err != nil {
			return synced, fmt.Errorf("clear search sync task %d: %w", task.ID, err)
		}
		synced++
	}
	return synced, nil
}

func (s *SearchSyncService) apply(ctx context.Context, task *models.SearchSyncTask) error {
	switch task.Operation {
	case models.SearchSyncDelete:
		return s.Index.DeleteNotice(ctx, task.NoticeID)
	case models.SearchSyncUpsert:
		var notice models.Notice
		err := s.DB.WithContext(ctx).Preload("BuildingComplex").First(&notice, task.NoticeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted since; its delete task removes the record.
			return nil
		}
		if err != nil {
			return err
		}
		var organisationID uint
		if notice.BuildingComplex != nil {
			organisationID = notice.BuildingComplex.OrganisationID
		}
		return s.Index.SaveNotice(ctx, NoticeDocumentFor(&notice, organisationID))
	default:
		return fmt.Errorf("unknown search sync operation %q", task.Operation)
	}
}

func (s *SearchSyncService) reschedule(ctx context.Context, task *models.SearchSyncTask, cause error) {
	attempts := task.Attempts + 1
	lastError := cause.Error()
	if len(lastError) > maxLastErrorLength {
		lastError = lastError[:maxLastErrorLength]
	}
	next := s.now().Add(SearchSyncBackoff(attempts))

	s.logger.Warn("search sync task failed",
		zap.Uint("task_id", task.ID),
		zap.Uint("notice_id", task.NoticeID),
		zap.Int("attempts", attempts),
		zap.Time("next_attempt_at", next),
		zap.Error(cause))

	err := s.DB.WithContext(ctx).Model(task).Updates(map[string]interface{}{
		"attempts":        attempts,
		"last_error":      lastError,
		"next_attempt_at": next,
	}).Error
	if err != nil {
		s.logger.Error("failed to reschedule search sync task", zap.Uint("task_id", task.ID), zap.Error(err))
	}
}

// SearchSyncBackoff doubles from 30s per failed attempt, capped at one hour.
func SearchSyncBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	backoff := searchSyncBaseBackoff
	for i := 1; i < attempts; i++ {
		backoff *= 2
		if backoff >= searchSyncMaxBackoff {
			return searchSyncMaxBackoff
		}
	}
	return backoff
}

// NoticeDocumentFor builds the index record of a notice.
func NoticeDocumentFor(notice *models.Notice, organisationID uint) search.NoticeDocument {
	return search.NoticeDocument{
		ObjectID:          search.ObjectIDFor(notice.ID),
		Title:             notice.Title,
		FileName:          notice.FileName,
		Status:            string(notice.Status),
		BuildingComplexID: notice.BuildingComplexID,
		OrganisationID:    organisationID,
		CreatedAt:         notice.CreatedAt.Unix(),
	}
}
