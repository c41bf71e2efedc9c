package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/infrastructure/config"
	"noticeboard-http-service/internal/infrastructure/email"
	"noticeboard-http-service/internal/infrastructure/mqtt"
	"noticeboard-http-service/internal/infrastructure/search"
	"noticeboard-http-service/internal/infrastructure/storage"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:        "a-very-long-session-secret",
		SessionTTL:          time.Hour,
		PublicBaseURL:       "https://notices.example.com",
		UploadURLExpiry:     60 * time.Second,
		DownloadURLExpiry:   3600 * time.Second,
		MaxUploadSizeBytes:  1 << 20,
		AllowedUploadFormat: "application/pdf",
		SearchSyncInterval:  time.Second,
		MQTTTopicPrefix:     "nb",
	}
}

func uintPtr(v uint) *uint { return &v }

func orgUser(id, organisationID uint) *models.User {
	return &models.User{BaseModel: models.BaseModel{ID: id}, Email: "manager@example.com", OrganisationID: uintPtr(organisationID)}
}

var errBoom = errors.New("boom")

type fakeStorage struct {
	mu        sync.Mutex
	deleted   []string
	signed    []string
	signErr   error
	deleteErr error
}

func (f *fakeStorage) PresignUpload(_ context.Context, key, _ string, expires time.Duration) (*storage.PresignedRequest, error) {
	return &storage.PresignedRequest{URL: "https://bucket.example.com/" + key + "?upload", Key: key, Method: "PUT", ExpiresAt: time.Now().Add(expires)}, nil
}

func (f *fakeStorage) PresignDownload(_ context.Context, key string, expires time.Duration) (*storage.PresignedRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return nil, f.signErr
	}
	f.signed = append(f.signed, key)
	return &storage.PresignedRequest{URL: "https://bucket.example.com/" + key + "?signed", Key: key, Method: "GET", ExpiresAt: time.Now().Add(expires)}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

type fakeIndex struct {
	err      error
	saved    []search.NoticeDocument
	statuses map[uint]string
	deleted  []uint
	hits     []search.NoticeDocument
}

func (f *fakeIndex) SaveNotice(_ context.Context, doc search.NoticeDocument) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, doc)
	return nil
}

func (f *fakeIndex) UpdateNoticeStatus(_ context.Context, noticeID uint, status string) error {
	if f.err != nil {
		return f.err
	}
	if f.statuses == nil {
		f.statuses = map[uint]string{}
	}
	f.statuses[noticeID] = status
	return nil
}

func (f *fakeIndex) DeleteNotice(_ context.Context, noticeID uint) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, noticeID)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ uint, _ string, _ int) ([]search.NoticeDocument, error) {
	return f.hits, f.err
}

type fakeCache struct {
	*MemoryCacheService
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{MemoryCacheService: NewMemoryCacheService()}
}

func (f *fakeCache) InvalidateTag(ctx context.Context, tag string) error {
	f.invalidated = append(f.invalidated, tag)
	return f.MemoryCacheService.InvalidateTag(ctx, tag)
}

type publishedEvent struct {
	topic   string
	payload interface{}
}

type fakePublisher struct {
	mqtt.Topics
	events []publishedEvent
}

func (f *fakePublisher) Publish(topic string, payload interface{}) error {
	f.events = append(f.events, publishedEvent{topic: topic, payload: payload})
	return nil
}

func (f *fakePublisher) Close() {}

type fakeMailer struct {
	sent []email.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg email.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg_1", nil
}

type fakeUsers struct {
	InterfaceUserService
	emails []string
}

func (f *fakeUsers) ListEmailsByOrganisation(context.Context, uint) ([]string, error) {
	return f.emails, nil
}

type noticeFixture struct {
	service   *NoticeService
	mock      sqlmock.Sqlmock
	storage   *fakeStorage
	index     *fakeIndex
	cache     *fakeCache
	publisher *fakePublisher
	mailer    *fakeMailer
}

func newNoticeFixture(t *testing.T) *noticeFixture {
	t.Helper()
	db, mock := newMockDB(t)
	f := &noticeFixture{
		mock:      mock,
		storage:   &fakeStorage{},
		index:     &fakeIndex{},
		cache:     newFakeCache(),
		publisher: &fakePublisher{Topics: mqtt.Topics{Prefix: "nb"}},
		mailer:    &fakeMailer{},
	}
	f.service = NewNoticeService(db, testConfig(), NoticeServiceDeps{
		Storage:   f.storage,
		Index:     f.index,
		Cache:     f.cache,
		Publisher: f.publisher,
		Mailer:    f.mailer,
		Users:     &fakeUsers{emails: []string{"resident@example.com"}},
	}, zap.NewNop()).(*NoticeService)
	f.service.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return f
}

var noticeColumns = []string{"id", "title", "file_name", "file_key", "file_size", "file_type", "start_date", "end_date", "status", "author_id", "building_complex_id", "created_at", "updated_at"}

func noticeRow(rows *sqlmock.Rows, id uint, status models.NoticeStatus, buildingComplexID uint, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(id, fmt.Sprintf("Notice %d", id), "notice.pdf", fmt.Sprintf("notices/key-%d.pdf", id),
		1024, "application/pdf", nil, nil, string(status), 1, buildingComplexID, createdAt, createdAt)
}

var buildingComplexColumns = []string{"id", "name", "type", "total_occupancies", "organisation_id", "created_at", "updated_at"}

func buildingComplexRows(id, organisationID uint) *sqlmock.Rows {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(buildingComplexColumns).AddRow(id, "Harbour View", "residential", 120, organisationID, now, now)
}
