package container

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/infrastructure/config"
	"noticeboard-http-service/internal/infrastructure/email"
	"noticeboard-http-service/internal/infrastructure/mqtt"
	"noticeboard-http-service/internal/infrastructure/search"
	"noticeboard-http-service/internal/infrastructure/storage"
)

// Service names accepted by GetService.
const (
	ServiceConfig          = "config"
	ServiceDB              = "db"
	ServiceLogger          = "logger"
	ServiceStorage         = "storage"
	ServiceSearchIndex     = "search_index"
	ServiceEmail           = "email"
	ServiceMQTT            = "mqtt"
	ServiceCache           = "cache"
	ServiceJWT             = "jwt"
	ServiceUser            = "user"
	ServiceOrganisation    = "organisation"
	ServiceBilling         = "billing"
	ServiceBuildingComplex = "building_complex"
	ServiceNotice          = "notice"
	ServiceSearchSync      = "search_sync"
	ServiceExport          = "export"
)

// Infrastructure are the external adapters built in main.
type Infrastructure struct {
	Storage   storage.FileStorage
	Index     search.Index
	Mailer    email.Sender
	Publisher mqtt.Publisher
	Cache     services.InterfaceCacheService
}

// ServiceContainer wires every service once and hands them to controllers by name.
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	logger *zap.Logger
	infra  Infrastructure

	services map[string]interface{}
	mu       sync.RWMutex
}

func NewServiceContainer(db *gorm.DB, cfg *config.Config, infra Infrastructure, logger *zap.Logger) *ServiceContainer {
	if db == nil {
		panic("service container: database is nil")
	}
	if cfg == nil {
		panic("service container: config is nil")
	}
	if infra.Cache == nil {
		infra.Cache = services.NewMemoryCacheService()
	}
	if infra.Publisher == nil {
		infra.Publisher = mqtt.NopPublisher{Topics: mqtt.Topics{Prefix: cfg.MQTTTopicPrefix}}
	}

	c := &ServiceContainer{
		db:       db,
		config:   cfg,
		logger:   logger,
		infra:    infra,
		services: make(map[string]interface{}),
	}
	c.initializeServices()
	return c
}

func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	userService := services.NewUserService(c.db, c.config, c.logger)

	c.services[ServiceConfig] = c.config
	c.services[ServiceDB] = c.db
	c.services[ServiceLogger] = c.logger
	c.services[ServiceStorage] = c.infra.Storage
	c.services[ServiceSearchIndex] = c.infra.Index
	c.services[ServiceEmail] = c.infra.Mailer
	c.services[ServiceMQTT] = c.infra.Publisher
	c.services[ServiceCache] = c.infra.Cache

	c.services[ServiceUser] = userService
	c.services[ServiceJWT] = services.NewJWTService(c.config, userService, c.logger)
	c.services[ServiceOrganisation] = services.NewOrganisationService(c.db, c.config, c.logger)
	c.services[ServiceBilling] = services.NewBillingService(c.db, c.config, c.logger)
	c.services[ServiceBuildingComplex] = services.NewBuildingComplexService(c.db, c.config, c.logger)
	c.services[ServiceNotice] = services.NewNoticeService(c.db, c.config, services.NoticeServiceDeps{
		Storage:   c.infra.Storage,
		Index:     c.infra.Index,
		Cache:     c.infra.Cache,
		Publisher: c.infra.Publisher,
		Mailer:    c.infra.Mailer,
		Users:     userService,
	}, c.logger)
	c.services[ServiceSearchSync] = services.NewSearchSyncService(c.db, c.config, c.infra.Index, c.logger)
	c.services[ServiceExport] = services.NewExportService(c.db, c.logger)
}

// GetService returns the named service, or nil for an unknown name.
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.services[name]
}

// Register replaces a service, used by tests to inject fakes.
func (c *ServiceContainer) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// PurgeCache drops every cached response, for when the rows they were built
// from no longer exist.
func (c *ServiceContainer) PurgeCache(ctx context.Context) error {
	cache, ok := c.GetService(ServiceCache).(services.InterfaceCacheService)
	if !ok {
		return nil
	}
	return cache.Purge(ctx)
}

func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

func (c *ServiceContainer) Config() *config.Config {
	return c.config
}

func (c *ServiceContainer) Logger() *zap.Logger {
	return c.logger
}
