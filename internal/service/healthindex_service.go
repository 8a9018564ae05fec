package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"healthindex/internal/cache"
	"healthindex/internal/common/database"
	mqttcommon "healthindex/internal/common/mqtt"
	rediscommon "healthindex/internal/common/redis"
	"healthindex/internal/config"
	"healthindex/internal/healthdata"
	httpapi "healthindex/internal/http"
	"healthindex/internal/repository"
	"healthindex/internal/seeder"
	"healthindex/internal/taxonomy"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// HealthIndexService healthindex 服务
type HealthIndexService struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttcommon.Client

	repo       repository.TaxonomyRepository
	seeder     *seeder.Seeder
	taxonomy   *TaxonomyService
	collector  *healthdata.Collector
	router     *httpapi.Router
	server     *Server
	lastResult *seeder.SeedResult
}

// NewHealthIndexService 创建服务
// 数据库 / Redis 不可用时回退到内存实现；目录校验失败直接返回错误
func NewHealthIndexService(cfg *config.Config, logger *zap.Logger) (*HealthIndexService, error) {
	catalog, err := loadCatalog(cfg.Taxonomy.CatalogPath)
	if err != nil {
		return nil, err
	}

	s := &HealthIndexService{config: cfg, logger: logger}

	// Repository
	s.repo = repository.NewMemoryTaxonomyRepo()
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(context.Background(), &cfg.Database)
		if err != nil {
			logger.Warn("Database unavailable, using in-memory taxonomy repository", zap.Error(err))
		} else {
			pgRepo := repository.NewPostgresTaxonomyRepository(db, logger)
			if err := pgRepo.EnsureSchema(context.Background()); err != nil {
				_ = database.Close(db)
				return nil, fmt.Errorf("failed to ensure taxonomy schema: %w", err)
			}
			s.db = db
			s.repo = pgRepo
		}
	}

	// Redis（缓存 + 事件流）
	var kv cache.KVStore = cache.NewMemoryKVStore()
	var publisher seeder.EventPublisher
	if cfg.RedisEnabled {
		client, err := rediscommon.Connect(context.Background(), &cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		} else {
			s.redisClient = client
			kv = cache.NewRedisKVStore(client)
			publisher = rediscommon.NewStreamPublisher(client, cfg.Taxonomy.EventStream)
		}
	}

	// MQTT（快照推送，可选）
	var snapshotPublisher healthdata.SnapshotPublisher
	if cfg.MQTT.Enabled {
		client, err := mqttcommon.NewClient(&cfg.MQTT.MQTTConfig)
		if err != nil {
			logger.Warn("MQTT unavailable, snapshot publishing disabled", zap.Error(err))
		} else {
			s.mqttClient = client
			snapshotPublisher = healthdata.NewMQTTPublisher(client, cfg.MQTT.Topic)
		}
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		s.closeClients()
		return nil, err
	}

	s.seeder = seeder.NewSeeder(s.repo, catalog, publisher, logger)
	s.taxonomy = NewTaxonomyService(s.repo, cache.NewTaxonomyCache(kv, cfg.Taxonomy.CacheTTL, logger), logger)
	s.collector = healthdata.NewCollector(provider, snapshotPublisher, logger)

	s.router = httpapi.NewRouter(logger)
	s.router.RegisterHealthzRoute()
	s.router.RegisterTaxonomyRoutes(httpapi.NewTaxonomyHandler(s.taxonomy, logger))
	s.router.RegisterHealthRoutes(httpapi.NewHealthHandler(s.collector, cache.NewHealthIndexStore(kv), logger))
	s.server = NewServer(cfg.HTTP.Addr, s.router, logger)

	return s, nil
}

// Bootstrap 种子 + 预热缓存；种子失败时返回错误（服务不应继续）
func (s *HealthIndexService) Bootstrap(ctx context.Context) error {
	result, err := s.seeder.SeedIfNeeded(ctx)
	if err != nil {
		return fmt.Errorf("taxonomy seeding failed: %w", err)
	}
	s.lastResult = result

	if err := s.taxonomy.Warm(ctx); err != nil {
		s.logger.Warn("Failed to warm taxonomy cache", zap.Error(err))
	}
	return nil
}

// Start 启动服务（阻塞直到 HTTP server 关闭）
func (s *HealthIndexService) Start(ctx context.Context) error {
	s.logger.Info("Starting healthindex service",
		zap.Bool("database", s.db != nil),
		zap.Bool("redis", s.redisClient != nil),
		zap.Bool("mqtt", s.mqttClient != nil),
		zap.String("health_provider", s.config.Health.Provider),
	)

	if err := s.Bootstrap(ctx); err != nil {
		return err
	}

	go s.collector.Run(ctx, s.config.Health.RefreshInterval)

	if err := s.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop 停止服务
func (s *HealthIndexService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping healthindex service")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	var errs []error
	if err := s.server.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}
	errs = append(errs, s.closeClients())
	return errors.Join(errs...)
}

// Handler 路由（测试使用）
func (s *HealthIndexService) Handler() http.Handler {
	return s.router
}

// Taxonomy 目录读取服务
func (s *HealthIndexService) Taxonomy() *TaxonomyService {
	return s.taxonomy
}

// SeedResult 最近一次 Bootstrap 的种子结果
func (s *HealthIndexService) SeedResult() *seeder.SeedResult {
	return s.lastResult
}

func (s *HealthIndexService) closeClients() error {
	var errs []error
	if s.mqttClient != nil {
		s.mqttClient.Close()
	}
	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func loadCatalog(path string) (*taxonomy.Catalog, error) {
	var (
		catalog *taxonomy.Catalog
		err     error
	)
	if path == "" {
		catalog, err = taxonomy.DefaultCatalog()
	} else {
		catalog, err = taxonomy.LoadCatalogFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy catalog: %w", err)
	}
	return catalog, nil
}

func newProvider(cfg *config.Config, logger *zap.Logger) (healthdata.Provider, error) {
	switch cfg.Health.Provider {
	case "mock":
		return healthdata.NewMockProvider(cfg.Health.MockDelay, time.Now().UnixNano()), nil
	case "http":
		return healthdata.NewHTTPProvider(cfg.Health.ProviderURL, cfg.Health.ProviderTimeout, cfg.Health.ProviderRPS, logger), nil
	default:
		return nil, fmt.Errorf("unsupported health provider: %s", cfg.Health.Provider)
	}
}
