package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "healthindex/internal/common/config"
)

// Config healthindex 服务配置
type Config struct {
	HTTP struct {
		Addr string
	}

	// DBEnabled=false 或连接失败时回退到内存 repository
	DBEnabled bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	MQTT struct {
		Enabled bool
		commoncfg.MQTTConfig
		Topic string
	}

	Taxonomy struct {
		CatalogPath string        // 可选：覆盖内置 catalog.yaml
		EventStream string        // 种子完成事件的 Redis Stream
		CacheTTL    time.Duration // 0 表示不过期
	}

	Health struct {
		Provider        string // "mock" | "http"
		ProviderURL     string
		ProviderTimeout time.Duration
		ProviderRPS     float64 // 0 表示不限速
		RefreshInterval time.Duration
		MockDelay       time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "healthindex"
	cfg.Database.SSLMode = "disable"
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "healthindex"
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "healthindex/snapshot")

	cfg.Taxonomy.CatalogPath = getEnv("TAXONOMY_CATALOG_PATH", "")
	cfg.Taxonomy.EventStream = getEnv("TAXONOMY_EVENT_STREAM", "taxonomy:events")
	cfg.Taxonomy.CacheTTL = time.Duration(parseInt(getEnv("TAXONOMY_CACHE_TTL", "0"), 0)) * time.Second

	cfg.Health.Provider = getEnv("HEALTH_PROVIDER", "mock")
	cfg.Health.ProviderURL = getEnv("HEALTH_PROVIDER_URL", "http://localhost:9090")
	cfg.Health.ProviderTimeout = positiveSeconds(getEnv("HEALTH_PROVIDER_TIMEOUT", "10"), 10)
	cfg.Health.ProviderRPS = parseFloat(getEnv("HEALTH_PROVIDER_RPS", "5"), 5)
	cfg.Health.RefreshInterval = positiveSeconds(getEnv("HEALTH_REFRESH_INTERVAL", "300"), 300)
	cfg.Health.MockDelay = time.Duration(parseInt(getEnv("HEALTH_MOCK_DELAY_MS", "500"), 500)) * time.Millisecond

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// positiveSeconds 解析秒数，非法或 <=0 时使用默认值
func positiveSeconds(s string, def int) time.Duration {
	v := parseInt(s, def)
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}
