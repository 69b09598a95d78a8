package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 房间策略配置
type GameConfig struct {
	MinPlayers      int `yaml:"min_players"`       // 开局最少人数
	MaxPlayers      int `yaml:"max_players"`       // 房间容量
	GracePeriod     int `yaml:"grace_period"`      // 掉线保留座位时间（秒）
	RoomIdleTimeout int `yaml:"room_idle_timeout"` // 大厅房间闲置超时（分钟）
}

// GracePeriodDuration 返回掉线保留时长
func (c *GameConfig) GracePeriodDuration() time.Duration {
	return time.Duration(c.GracePeriod) * time.Second
}

// RoomIdleTimeoutDuration 返回房间闲置超时时长
func (c *GameConfig) RoomIdleTimeoutDuration() time.Duration {
	return time.Duration(c.RoomIdleTimeout) * time.Minute
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 填充默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 1780
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = 2
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = 4
	}
	if c.Game.GracePeriod == 0 {
		c.Game.GracePeriod = 30
	}
	if c.Game.RoomIdleTimeout == 0 {
		c.Game.RoomIdleTimeout = 10
	}
}
