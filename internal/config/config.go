package config

import (
	"time"

	"github.com/spf13/viper"
	pkgconfig "github.com/weiawesome/wes-io-party/pkg/config"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Redis     RedisConfig
	Room      RoomConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type RedisConfig struct {
	Enabled     bool
	Address     string
	Password    string
	DB          int
	KeyPrefix   string        `mapstructure:"key_prefix"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

type RoomConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	EvictionGrace     time.Duration `mapstructure:"eviction_grace"`
	JanitorInterval   time.Duration `mapstructure:"janitor_interval"`
	VBrowserHost      string        `mapstructure:"vbrowser_host"`
	VBrowserUser      string        `mapstructure:"vbrowser_user"`
	VBrowserPass      string        `mapstructure:"vbrowser_pass"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8095)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	// Must fit the largest accepted payload (chat text, 64 KiB) plus
	// envelope overhead.
	v.SetDefault("websocket.max_message_size", 131072)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "party")
	v.SetDefault("redis.snapshot_ttl", "0")
	v.SetDefault("room.heartbeat_interval", "1s")
	v.SetDefault("room.eviction_grace", "5m")
	v.SetDefault("room.janitor_interval", "1m")
	v.SetDefault("room.vbrowser_host", "")
	v.SetDefault("room.vbrowser_user", "admin")
	v.SetDefault("room.vbrowser_pass", "neko")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("room.vbrowser_host", "VBROWSER_HOST")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Redis.SnapshotTTL = parseDuration(v, "redis.snapshot_ttl", 0)
	cfg.Room.HeartbeatInterval = parseDuration(v, "room.heartbeat_interval", time.Second)
	cfg.Room.EvictionGrace = parseDuration(v, "room.eviction_grace", 5*time.Minute)
	cfg.Room.JanitorInterval = parseDuration(v, "room.janitor_interval", time.Minute)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
