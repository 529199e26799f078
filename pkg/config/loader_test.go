package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatYAML = `
port: "8082"
mongo:
  host: mongo
  port: 27017
  user: ${TEST_MONGO_USER}
  database: chat
redis:
  redis_db: 2
  addr: redis:6379
kafka:
  brokers: ["kafka:9092"]
  topic: chat.messages
chat:
  ping_interval: 20s
  send_buffer: 64
`

// 測試 ReadConfig 讀取 yaml 並替換環境變數
func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_service.yaml"), []byte(chatYAML), 0o644))
	t.Setenv("TEST_MONGO_USER", "chat_user")

	cfg, err := ReadConfig[Chat]("chat_service", dir)
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "chat_user", cfg.MongoSQL.User)
	assert.Equal(t, 27017, cfg.MongoSQL.Port)
	assert.Equal(t, 2, cfg.Redis.RedisDB)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 20*time.Second, cfg.Settings.PingInterval)
	assert.Equal(t, 64, cfg.Settings.SendBuffer)
}

// 測試找不到設定檔
func TestReadConfig_Missing(t *testing.T) {
	_, err := ReadConfig[Chat]("nothing_here", t.TempDir())
	assert.Error(t, err)
}

func TestChatSettings_WithDefaults(t *testing.T) {
	s := ChatSettings{PingInterval: 10 * time.Second}.WithDefaults()

	assert.Equal(t, 10*time.Second, s.PingInterval)
	assert.Equal(t, 20*time.Second, s.PongWait)
	assert.Equal(t, 128, s.SendBuffer)
	assert.Equal(t, 8, s.BroadcastConcurrency)
	assert.Equal(t, 15*time.Minute, s.ExportURLExpiry)
}

func TestRetryDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, RetryDuration(3))
	assert.Equal(t, time.Second, RetryDuration(0))
}
