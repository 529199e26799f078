package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port          string         `mapstructure:"port"`
	MongoSQL      DatabaseConfig `mapstructure:"mongo"`
	Redis         RedisConfig    `mapstructure:"redis"`
	PostgreSQL    DatabaseConfig `mapstructure:"pg"`
	RabbitMQ      RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka         KafkaConfig    `mapstructure:"kafka"`
	MinIO         MinIOConfig    `mapstructure:"minio"`
	MemberService ServiceConfig  `mapstructure:"member"`
	JWT           JWTConfig      `mapstructure:"jwt"`
	Settings      ChatSettings   `mapstructure:"chat"`
}

// ServiceConfig definition service port & name
type ServiceConfig struct {
	Port string `mapstructure:"service_port"`
	Name string `mapstructure:"service_name"`
}

// RedisConfig definition redis setting
// Addr 有值時直連單機 redis，否則走 sentinel (.env)
type RedisConfig struct {
	RedisDB int    `mapstructure:"redis_db"`
	Addr    string `mapstructure:"addr"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	URL           string `mapstructure:"url"`
	StatusQueue   string `mapstructure:"status_queue"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// JWTConfig definition jwt secret
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// ChatSettings tuning of the messaging core
type ChatSettings struct {
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
	PingInterval         time.Duration `mapstructure:"ping_interval"`
	PongWait             time.Duration `mapstructure:"pong_wait"`
	SendBuffer           int           `mapstructure:"send_buffer"`
	InboxSize            int           `mapstructure:"inbox_size"`
	BroadcastConcurrency int           `mapstructure:"broadcast_concurrency"`
	ExportURLExpiry      time.Duration `mapstructure:"export_url_expiry"`
}

// WithDefaults fill zero values
func (s ChatSettings) WithDefaults() ChatSettings {
	if s.CacheTTL <= 0 {
		s.CacheTTL = 30 * time.Minute
	}
	if s.PingInterval <= 0 {
		s.PingInterval = 30 * time.Second
	}
	if s.PongWait <= s.PingInterval {
		s.PongWait = 2 * s.PingInterval
	}
	if s.SendBuffer <= 0 {
		s.SendBuffer = 128
	}
	if s.InboxSize <= 0 {
		s.InboxSize = 32
	}
	if s.BroadcastConcurrency <= 0 {
		s.BroadcastConcurrency = 8
	}
	if s.ExportURLExpiry <= 0 {
		s.ExportURLExpiry = 15 * time.Minute
	}
	return s
}

// RetryDuration yaml 的 retry_interval 以秒為單位
func RetryDuration(seconds int) time.Duration {
	if seconds <= 0 {
		return time.Second
	}
	return time.Duration(seconds) * time.Second
}
