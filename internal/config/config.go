package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaCfg struct {
	Brokers       []string `mapstructure:"brokers"`
	DeliveryTopic string   `mapstructure:"delivery_topic"`
}

type JwtCfg struct {
	Alg           string `mapstructure:"alg"`
	Secret        string `mapstructure:"secret"`
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type WsCfg struct {
	PingIntervalSeconds int `mapstructure:"ping_interval_seconds"`
	PongWaitSeconds     int `mapstructure:"pong_wait_seconds"`
	SendBufferSize      int `mapstructure:"send_buffer_size"`
	RateLimitPerSec     int `mapstructure:"rate_limit_per_sec"`
}

type Config struct {
	Development bool      `mapstructure:"development"`
	Server      ServerCfg `mapstructure:"server"`
	Mongo       MongoCfg  `mapstructure:"mongo"`
	Redis       RedisCfg  `mapstructure:"redis"`
	Kafka       KafkaCfg  `mapstructure:"kafka"`
	JWT         JwtCfg    `mapstructure:"jwt"`
	WS          WsCfg     `mapstructure:"ws"`

	// Derived
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
	PongWait     time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "hireloop")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.alg", "HS256")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.public_key_path", "")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.delivery_topic", "notification-deliveries")
	v.SetDefault("development", false)
	v.SetDefault("ws.ping_interval_seconds", 25)
	v.SetDefault("ws.pong_wait_seconds", 60)
	v.SetDefault("ws.send_buffer_size", 256)
	v.SetDefault("ws.rate_limit_per_sec", 10)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// missing file is fine, env vars and defaults still apply
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.PingInterval = time.Duration(cfg.WS.PingIntervalSeconds) * time.Second
	cfg.PongWait = time.Duration(cfg.WS.PongWaitSeconds) * time.Second
	return &cfg, nil
}
