package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env         string `mapstructure:"env"`
	Port        string `mapstructure:"port"`
	BodyLimitMB int    `mapstructure:"body_limit_mb"`
	RatePerMin  int    `mapstructure:"rate_per_minute"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "mongo" or "memory"
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	TopicMessageSent string   `mapstructure:"topic_message_sent"`
}

type S3Config struct {
	Region     string `mapstructure:"region"`
	Bucket     string `mapstructure:"bucket"`
	PublicRead bool   `mapstructure:"public_read"`
}

type WSConfig struct {
	PingIntervalSeconds  int   `mapstructure:"ping_interval_seconds"`
	WriteDeadlineSeconds int   `mapstructure:"write_deadline_seconds"`
	MaxMessageSizeBytes  int64 `mapstructure:"max_message_size_bytes"`
}

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	JWT   JWTConfig   `mapstructure:"jwt"`
	Store StoreConfig `mapstructure:"store"`
	Mongo MongoConfig `mapstructure:"mongo"`
	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	S3    S3Config    `mapstructure:"s3"`
	WS    WSConfig    `mapstructure:"ws"`

	// derived
	JWTTTL        time.Duration
	PingInterval  time.Duration
	WriteDeadline time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if c.App.Port == "" {
		c.App.Port = "5000"
	}
	if c.App.BodyLimitMB == 0 {
		c.App.BodyLimitMB = 15
	}
	if c.App.RatePerMin == 0 {
		c.App.RatePerMin = 300
	}
	if c.JWT.TTLHours == 0 {
		c.JWT.TTLHours = 24 * 7
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "mongo"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "qc"
	}
	if c.Kafka.TopicMessageSent == "" {
		c.Kafka.TopicMessageSent = "message.sent"
	}
	if c.WS.PingIntervalSeconds == 0 {
		c.WS.PingIntervalSeconds = 25
	}
	if c.WS.WriteDeadlineSeconds == 0 {
		c.WS.WriteDeadlineSeconds = 10
	}
	if c.WS.MaxMessageSizeBytes == 0 {
		c.WS.MaxMessageSizeBytes = 65536
	}

	c.JWTTTL = time.Duration(c.JWT.TTLHours) * time.Hour
	c.PingInterval = time.Duration(c.WS.PingIntervalSeconds) * time.Second
	c.WriteDeadline = time.Duration(c.WS.WriteDeadlineSeconds) * time.Second
	return &c, nil
}
