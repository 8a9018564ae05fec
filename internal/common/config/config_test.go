package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db.local",
		Port:     5433,
		User:     "hi",
		Password: "secret",
		Database: "healthindex",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=db.local port=5433 user=hi password=secret dbname=healthindex sslmode=disable",
		c.GetDSN())
}

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "pg")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_NAME", "hi_test")
	t.Setenv("TEST_DB_MAX_CONNS", "not-a-number")

	c := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", MaxConns: 4}
	c.LoadFromEnv("TEST_DB")

	assert.Equal(t, "pg", c.Host)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, "hi_test", c.Database)
	// 未设置的变量保持原值
	assert.Equal(t, "postgres", c.User)
	// 非法数字忽略
	assert.Equal(t, 4, c.MaxConns)
}

func TestRedisConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("X_REDIS_ADDR", "redis:6380")
	t.Setenv("X_REDIS_DB", "3")

	c := RedisConfig{Addr: "localhost:6379"}
	c.LoadFromEnv("X_REDIS")

	assert.Equal(t, "redis:6380", c.Addr)
	assert.Equal(t, 3, c.DB)
	assert.Empty(t, c.Password)
}

func TestMQTTConfig_LoadFromEnv_QoSBounds(t *testing.T) {
	t.Setenv("M_QOS", "7")
	c := MQTTConfig{QoS: 1}
	c.LoadFromEnv("M")
	assert.Equal(t, byte(1), c.QoS)

	t.Setenv("M_QOS", "2")
	c.LoadFromEnv("M")
	assert.Equal(t, byte(2), c.QoS)
}
