package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/infrastructure/config"
	"noticeboard-http-service/internal/infrastructure/email"
	"noticeboard-http-service/internal/infrastructure/mqtt"
	"noticeboard-http-service/internal/infrastructure/search"
	"noticeboard-http-service/internal/infrastructure/storage"
)

// Default page sizes of the three notice listings.
const (
	DefaultNoticeListLimit     = 10
	DefaultInfiniteNoticeLimit = 8
	DefaultArchivedNoticeLimit = 10
	DefaultNoticeSearchLimit   = 20
)

// InterfaceNoticeService covers the notice.* procedures.
type InterfaceNoticeService interface {
	CreateNotice(ctx context.Context, author *models.User, input CreateNoticeInput) (*models.Notice, error)
	ListNotices(ctx context.Context, caller *models.User, q NoticeListQuery) (*models.CursorPage[models.Notice], error)
	InfiniteListNotices(ctx context.Context, q InfiniteNoticeQuery) (*models.CursorPage[models.Notice], error)
	ListArchivedNotices(ctx context.Context, caller *models.User, q NoticeListQuery) (*models.CursorPage[models.Notice], error)
	GetNotice(ctx context.Context, caller *models.User, id uint) (*models.Notice, error)
	UpdateStatus(ctx context.Context, caller *models.User, id uint, status models.NoticeStatus) (*models.Notice, error)
	ArchiveNotice(ctx context.Context, caller *models.User, id uint) (*models.Notice, error)
	DeleteNotice(ctx context.Context, caller *models.User, id uint) error
	SearchNotices(ctx context.Context, caller *models.User, buildingComplexID uint, query string, limit int) ([]search.NoticeDocument, error)
}

type CreateNoticeInput struct {
	Title             string     `json:"title" binding:"required,min=1,max=200"`
	FileName          string     `json:"fileName" binding:"required,max=255"`
	FileKey           string     `json:"fileKey" binding:"required,max=255"`
	FileSize          int64      `json:"fileSize" binding:"min=0"`
	FileType          string     `json:"fileType" binding:"required,max=100"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	Status            string     `json:"status" binding:"omitempty,oneof=draft published archived"`
	BuildingComplexID uint       `json:"buildingComplexId" binding:"required,min=1"`
}

// NoticeListQuery drives notice.list and notice.archived. Without a building
// complex the listing spans every complex of the caller's organisation.
type NoticeListQuery struct {
	models.CursorQuery
	BuildingComplexID *uint  `form:"buildingComplexId" binding:"omitempty,min=1"`
	Status            string `form:"status" binding:"omitempty,oneof=draft published"`
}

// InfiniteNoticeQuery drives the public board listing.
type InfiniteNoticeQuery struct {
	models.CursorQuery
	BuildingComplexID uint `form:"buildingComplexId" binding:"required,min=1"`
}

// NoticeServiceDeps are the collaborators of NoticeService besides the database.
type NoticeServiceDeps struct {
	Storage   storage.FileStorage
	Index     search.Index
	Cache     InterfaceCacheService
	Publisher mqtt.Publisher
	Mailer    email.Sender
	Users     InterfaceUserService
}

// NoticeService owns the notice lifecycle. A change is committed together with
// a search outbox row, then the index, response cache, display clients and
// subscribers are updated best-effort; the outbox row is removed once the index
// accepted the change, otherwise the sync worker retries it.
type NoticeService struct {
	DB     *gorm.DB
	Config *config.Config
	NoticeServiceDeps
	logger *zap.Logger
	now    func() time.Time
}

func NewNoticeService(db *gorm.DB, cfg *config.Config, deps NoticeServiceDeps, logger *zap.Logger) InterfaceNoticeService {
	return &NoticeService{
		DB:                db,
		Config:            cfg,
		NoticeServiceDeps: deps,
		logger:            logger,
		now:               time.Now,
	}
}

// 1 CreateNotice records an uploaded PDF as a notice of one building complex.
func (s *NoticeService) CreateNotice(ctx context.Context, author *models.User, input CreateNoticeInput) (*models.Notice, error) {
	if input.FileType != s.Config.AllowedUploadFormat || !strings.HasPrefix(input.FileKey, storage.NoticePrefix) {
		return nil, ErrInvalidNoticeFile
	}
	if input.StartDate != nil && input.EndDate != nil && input.StartDate.After(*input.EndDate) {
		return nil, ErrInvalidDateRange
	}
	status := models.NoticeStatusDraft
	if input.Status != "" {
		parsed, err := models.ParseNoticeStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	bc, err := s.ownedBuildingComplex(ctx, author, input.BuildingComplexID)
	if err != nil {
		return nil, err
	}
	if !storage.OwnedBy(input.FileKey, bc.OrganisationID) {
		return nil, ErrInvalidNoticeFile
	}

	if input.FileSize > s.Config.MaxUploadSizeBytes {
		s.logger.Warn("notice file exceeds the recommended size",
			zap.String("key", input.FileKey),
			zap.Int64("size", input.FileSize),
			zap.Int64("limit", s.Config.MaxUploadSizeBytes))
	}

	notice := &models.Notice{
		Title:             strings.TrimSpace(input.Title),
		FileName:          input.FileName,
		FileKey:           input.FileKey,
		FileSize:          input.FileSize,
		FileType:          input.FileType,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		Status:            status,
		AuthorID:          author.ID,
		BuildingComplexID: bc.ID,
	}

	var task *models.SearchSyncTask
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notice).Error; err != nil {
			return fmt.Errorf("create notice: %w", err)
		}
		task = models.NewSearchSyncTask(notice.ID, models.SearchSyncUpsert)
		return tx.Create(task).Error
	})
	if err != nil {
		// The uploaded object would otherwise be orphaned.
		s.removeUnreferencedFile(ctx, input.FileKey)
		return nil, err
	}

	s.logger.Info("notice created",
		zap.Uint("notice_id", notice.ID),
		zap.Uint("building_complex_id", bc.ID),
		zap.String("status", string(status)))

	s.syncIndex(ctx, task, func() error {
		return s.Index.SaveNotice(ctx, NoticeDocumentFor(notice, bc.OrganisationID))
	})
	s.afterChange(ctx, notice, mqtt.EventNoticeCreated)
	if status == models.NoticeStatusPublished {
		s.notifySubscribers(ctx, notice, bc)
	}

	s.signDownloadURL(ctx, notice)
	return notice, nil
}

// 2 ListNotices lists draft and published notices, newest first.
func (s *NoticeService) ListNotices(ctx context.Context, caller *models.User, q NoticeListQuery) (*models.CursorPage[models.Notice], error) {
	scope, err := s.scopedNotices(ctx, caller, q.BuildingComplexID)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, scope, func(db *gorm.DB) *gorm.DB {
		if q.Status != "" {
			return db.Where("notices.status = ?", q.Status)
		}
		return db.Where("notices.status <> ?", models.NoticeStatusArchived)
	}, q.CursorQuery.WithDefaultLimit(DefaultNoticeListLimit))
}

// 3 InfiniteListNotices lists the notices a building's occupants currently see.
func (s *NoticeService) InfiniteListNotices(ctx context.Context, q InfiniteNoticeQuery) (*models.CursorPage[models.Notice], error) {
	now := s.now()
	scope := s.DB.WithContext(ctx).Model(&models.Notice{}).
		Where("notices.building_complex_id = ?", q.BuildingComplexID)
	return s.page(ctx, scope, func(db *gorm.DB) *gorm.DB {
		return db.Where("notices.status = ?", models.NoticeStatusPublished).
			Where("(notices.start_date IS NULL OR notices.start_date <= ?)", now).
			Where("(notices.end_date IS NULL OR notices.end_date >= ?)", now)
	}, q.CursorQuery.WithDefaultLimit(DefaultInfiniteNoticeLimit))
}

// 4 ListArchivedNotices lists archived notices, newest first.
func (s *NoticeService) ListArchivedNotices(ctx context.Context, caller *models.User, q NoticeListQuery) (*models.CursorPage[models.Notice], error) {
	scope, err := s.scopedNotices(ctx, caller, q.BuildingComplexID)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, scope, func(db *gorm.DB) *gorm.DB {
		return db.Where("notices.status = ?", models.NoticeStatusArchived)
	}, q.CursorQuery.WithDefaultLimit(DefaultArchivedNoticeLimit))
}

// 5 GetNotice returns one notice with a fresh download URL.
func (s *NoticeService) GetNotice(ctx context.Context, caller *models.User, id uint) (*models.Notice, error) {
	notice, err := s.ownedNotice(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	s.signDownloadURL(ctx, notice)
	return notice, nil
}

// 6 UpdateStatus moves a notice to status. Requesting the current status changes nothing.
func (s *NoticeService) UpdateStatus(ctx context.Context, caller *models.User, id uint, status models.NoticeStatus) (*models.Notice, error) {
	notice, err := s.ownedNotice(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := models.CheckTransition(notice.Status, status); err != nil {
		return nil, err
	}
	if notice.Status == status {
		s.signDownloadURL(ctx, notice)
		return notice, nil
	}

	previous := notice.Status
	var task *models.SearchSyncTask
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Notice{}).
			Where("id = ?", notice.ID).
			Update("status", status).Error
		if err != nil {
			return fmt.Errorf("update notice %d status: %w", id, err)
		}
		task = models.NewSearchSyncTask(notice.ID, models.SearchSyncUpsert)
		return tx.Create(task).Error
	})
	if err != nil {
		return nil, err
	}
	notice.Status = status

	s.logger.Info("notice status changed",
		zap.Uint("notice_id", notice.ID),
		zap.String("from", string(previous)),
		zap.String("status", string(status)))

	s.syncIndex(ctx, task, func() error {
		return s.Index.UpdateNoticeStatus(ctx, notice.ID, string(status))
	})
	s.afterChange(ctx, notice, mqtt.EventNoticeStatusChanged)
	if status == models.NoticeStatusPublished {
		s.notifySubscribers(ctx, notice, notice.BuildingComplex)
	}

	s.signDownloadURL(ctx, notice)
	return notice, nil
}

// 7 ArchiveNotice is UpdateStatus to archived.
func (s *NoticeService) ArchiveNotice(ctx context.Context, caller *models.User, id uint) (*models.Notice, error) {
	return s.UpdateStatus(ctx, caller, id, models.NoticeStatusArchived)
}

// 8 DeleteNotice removes the notice row, its index record and its file.
func (s *NoticeService) DeleteNotice(ctx context.Context, caller *models.User, id uint) error {
	notice, err := s.ownedNotice(ctx, caller, id)
	if err != nil {
		return err
	}

	var task *models.SearchSyncTask
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Notice{}, notice.ID).Error; err != nil {
			return fmt.Errorf("delete notice %d: %w", id, err)
		}
		task = models.NewSearchSyncTask(notice.ID, models.SearchSyncDelete)
		return tx.Create(task).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info("notice deleted", zap.Uint("notice_id", notice.ID))

	s.syncIndex(ctx, task, func() error {
		return s.Index.DeleteNotice(ctx, notice.ID)
	})
	s.removeUnreferencedFile(ctx, notice.FileKey)
	s.afterChange(ctx, notice, mqtt.EventNoticeDeleted)
	return nil
}

// 9 SearchNotices queries the hosted index within one building complex.
func (s *NoticeService) SearchNotices(ctx context.Context, caller *models.User, buildingComplexID uint, query string, limit int) ([]search.NoticeDocument, error) {
	if _, err := s.ownedBuildingComplex(ctx, caller, buildingComplexID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > models.MaxPageLimit {
		limit = DefaultNoticeSearchLimit
	}
	return s.Index.Search(ctx, buildingComplexID, strings.TrimSpace(query), limit)
}

// page runs the cursor algorithm over the filtered scope: newest first,
// strictly after the cursor row, limit+1 rows fetched to detect a further
// page. The cursor row must belong to scope; filter may have since excluded it.
func (s *NoticeService) page(ctx context.Context, scope *gorm.DB, filter func(*gorm.DB) *gorm.DB, q models.CursorQuery) (*models.CursorPage[models.Notice], error) {
	scope = scope.Session(&gorm.Session{})
	db := filter(scope)
	if q.Cursor != nil {
		var anchor models.Notice
		err := scope.
			Select("notices.id", "notices.created_at").
			Where("notices.id = ?", *q.Cursor).
			Take(&anchor).Error
		if err != nil {
			return nil, notFound(err, ErrInvalidCursor)
		}
		db = db.Where("((notices.created_at < ?) OR (notices.created_at = ? AND notices.id < ?))",
			anchor.CreatedAt, anchor.CreatedAt, anchor.ID)
	}

	var rows []models.Notice
	err := db.Order("notices.created_at DESC").
		Order("notices.id DESC").
		Limit(q.Limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}

	page := models.NewCursorPage(rows, q.Limit, func(n models.Notice) uint { return n.ID })
	for i := range page.Items {
		s.signDownloadURL(ctx, &page.Items[i])
	}
	return page, nil
}

// scopedNotices restricts notices to one owned complex, or to every complex of the caller's organisation.
func (s *NoticeService) scopedNotices(ctx context.Context, caller *models.User, buildingComplexID *uint) (*gorm.DB, error) {
	db := s.DB.WithContext(ctx).Model(&models.Notice{})
	if buildingComplexID != nil {
		bc, err := s.ownedBuildingComplex(ctx, caller, *buildingComplexID)
		if err != nil {
			return nil, err
		}
		return db.Where("notices.building_complex_id = ?", bc.ID), nil
	}

	if caller == nil || caller.OrganisationID == nil {
		return nil, ErrOrganisationRequired
	}
	owned := s.DB.Model(&models.BuildingComplex{}).
		Select("id").
		Where("organisation_id = ?", *caller.OrganisationID)
	return db.Where("notices.building_complex_id IN (?)", owned), nil
}

func (s *NoticeService) ownedBuildingComplex(ctx context.Context, caller *models.User, id uint) (*models.BuildingComplex, error) {
	var bc models.BuildingComplex
	if err := s.DB.WithContext(ctx).First(&bc, id).Error; err != nil {
		return nil, notFound(err, ErrBuildingComplexNotFound)
	}
	if err := CheckOrganisationAccess(caller, bc.OrganisationID); err != nil {
		return nil, err
	}
	return &bc, nil
}

func (s *NoticeService) ownedNotice(ctx context.Context, caller *models.User, id uint) (*models.Notice, error) {
	var notice models.Notice
	err := s.DB.WithContext(ctx).
		Preload("BuildingComplex").
		First(&notice, id).Error
	if err != nil {
		return nil, notFound(err, ErrNoticeNotFound)
	}
	if notice.BuildingComplex == nil {
		return nil, ErrBuildingComplexNotFound
	}
	if err := CheckOrganisationAccess(caller, notice.BuildingComplex.OrganisationID); err != nil {
		return nil, err
	}
	return &notice, nil
}

// removeUnreferencedFile deletes the stored object behind key unless a notice
// row still points at it.
func (s *NoticeService) removeUnreferencedFile(ctx context.Context, key string) {
	var refs int64
	err := s.DB.WithContext(ctx).Model(&models.Notice{}).
		Where("file_key = ?", key).
		Count(&refs).Error
	if err != nil {
		s.logger.Warn("failed to check notice file references", zap.String("key", key), zap.Error(err))
		return
	}
	if refs > 0 {
		s.logger.Info("notice file still referenced, keeping it", zap.String("key", key), zap.Int64("references", refs))
		return
	}
	if err := s.Storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete notice file", zap.String("key", key), zap.Error(err))
	}
}

// signDownloadURL fills UploadURL; a storage failure leaves it empty.
func (s *NoticeService) signDownloadURL(ctx context.Context, notice *models.Notice) {
	req, err := s.Storage.PresignDownload(ctx, notice.FileKey, s.Config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("failed to sign notice download URL", zap.Uint("notice_id", notice.ID), zap.Error(err))
		notice.UploadURL = ""
		return
	}
	notice.UploadURL = req.URL
}

// syncIndex applies a change to the index right away and clears its outbox row on success.
func (s *NoticeService) syncIndex(ctx context.Context, task *models.SearchSyncTask, apply func() error) {
	if err := apply(); err != nil {
		s.logger.Warn("search index update deferred to sync worker",
			zap.Uint("notice_id", task.NoticeID),
			zap.String("operation", string(task.Operation)),
			zap.Error(err))
		return
	}
	if err := s.DB.WithContext(ctx).Delete(&models.SearchSyncTask{}, task.ID).Error; err != nil {
		s.logger.Warn("failed to clear search sync task", zap.Uint("task_id", task.ID), zap.Error(err))
	}
}

// afterChange drops cached notice responses and tells display clients.
func (s *NoticeService) afterChange(ctx context.Context, notice *models.Notice, eventType string) {
	if err := s.Cache.InvalidateTag(ctx, CacheTagNotices); err != nil {
		s.logger.Warn("failed to invalidate notice cache", zap.Uint("notice_id", notice.ID), zap.Error(err))
	}

	now := s.now().UnixMilli()
	events := []struct {
		topic   string
		payload interface{}
	}{
		{s.Publisher.NoticeTopic(notice.BuildingComplexID), mqtt.NoticeEvent{
			Type:              eventType,
			NoticeID:          notice.ID,
			BuildingComplexID: notice.BuildingComplexID,
			Status:            string(notice.Status),
			Timestamp:         now,
		}},
		{s.Publisher.InvalidateTopic(), mqtt.InvalidateEvent{
			Tags:      []string{CacheTagNotices},
			Timestamp: now,
		}},
	}
	for _, e := range events {
		if err := s.Publisher.Publish(e.topic, e.payload); err != nil {
			s.logger.Warn("failed to publish notice event", zap.String("topic", e.topic), zap.Error(err))
		}
	}
}

// notifySubscribers emails the organisation's users that a notice went live.
func (s *NoticeService) notifySubscribers(ctx context.Context, notice *models.Notice, bc *models.BuildingComplex) {
	if bc == nil {
		return
	}
	recipients, err := s.Users.ListEmailsByOrganisation(ctx, bc.OrganisationID)
	if err != nil {
		s.logger.Warn("failed to load notice subscribers", zap.Uint("notice_id", notice.ID), zap.Error(err))
		return
	}
	if len(recipients) == 0 {
		return
	}

	link := strings.TrimSuffix(s.Config.PublicBaseURL, "/") + fmt.Sprintf("/board/%d", bc.ID)
	_, err = s.Mailer.Send(ctx, email.Message{
		To:      recipients,
		Subject: fmt.Sprintf("New notice at %s: %s", bc.Name, notice.Title),
		Text:    fmt.Sprintf("A new notice \"%s\" has been published for %s.\n\nView the noticeboard: %s\n", notice.Title, bc.Name, link),
	})
	if err != nil && !errors.Is(err, email.ErrNoRecipients) {
		s.logger.Warn("failed to email notice subscribers", zap.Uint("notice_id", notice.ID), zap.Error(err))
	}
}
