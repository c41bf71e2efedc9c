package benchmark

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"noticeboard-http-service/internal/app/routes"
	"noticeboard-http-service/internal/domain/models"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
	"noticeboard-http-service/internal/infrastructure/config"
)

type feedStub struct {
	services.InterfaceNoticeService
	calls atomic.Int64
}

func (f *feedStub) InfiniteListNotices(_ context.Context, q services.InfiniteNoticeQuery) (*models.CursorPage[models.Notice], error) {
	f.calls.Add(1)
	items := make([]models.Notice, 0, 8)
	for i := uint(8); i > 0; i-- {
		items = append(items, models.Notice{
			BaseModel:         models.BaseModel{ID: i},
			Title:             fmt.Sprintf("Notice %d", i),
			Status:            models.NoticeStatusPublished,
			BuildingComplexID: q.BuildingComplexID,
		})
	}
	return &models.CursorPage[models.Notice]{Items: items}, nil
}

func newRouter(tb testing.TB) (*gin.Engine, *feedStub) {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, _, err := sqlmock.New()
	require.NoError(tb, err)
	tb.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(tb, err)

	cfg := &config.Config{EnvType: "LOCAL", JWTSecretKey: "a-very-long-session-secret", SessionTTL: time.Hour}
	sc := container.NewServiceContainer(db, cfg, container.Infrastructure{}, zap.NewNop())
	feed := &feedStub{}
	sc.Register(container.ServiceNotice, feed)
	return routes.SetupRouter(sc), feed
}

func TestPublicFeedUnderLoad(t *testing.T) {
	router, feed := newRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	b := NewAPIBenchmark(srv.URL+"/api", 10, 60, "")
	result := b.RunGET(context.Background(), "/notices/infinite?buildingComplexId=3")
	t.Log(result.Summary())

	assert.Empty(t, result.Errors)
	// The public group allows a burst of 20 per client IP.
	assert.GreaterOrEqual(t, result.StatusCodes[http.StatusOK], 20)
	assert.Positive(t, result.StatusCodes[http.StatusTooManyRequests])
	assert.Equal(t, result.TotalRequests, result.SuccessCount+result.FailureCount)
	assert.Less(t, feed.calls.Load(), int64(result.SuccessCount), "cached responses should not reach the service")
	assert.Positive(t, result.CacheHits)
}

func TestProtectedRouteRejectsAnonymousLoad(t *testing.T) {
	router, _ := newRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	b := NewAPIBenchmark(srv.URL+"/api/", 5, 10, "")
	result := b.RunGET(context.Background(), "/notices")

	assert.Equal(t, 10, result.StatusCodes[http.StatusUnauthorized])
	assert.Zero(t, result.SuccessRate())
	assert.Contains(t, result.Summary(), "401: 10")
}

func BenchmarkInfiniteFeed(b *testing.B) {
	router, _ := newRouter(b)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/notices/infinite?buildingComplexId=3", nil)
		// Spread clients so the per-IP limiter does not dominate.
		req.RemoteAddr = fmt.Sprintf("10.%d.%d.%d:4000", i>>16&0xff, i>>8&0xff, i&0xff)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}
