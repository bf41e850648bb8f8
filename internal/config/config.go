package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "UNDERCOVER"

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// 生成加入二维码时使用的对外地址，为空时根据请求推断
	PublicURL string `mapstructure:"public_url"`
	// 前端静态文件目录，为空时不提供
	StaticDir string `mapstructure:"static_dir"`

	RoomIdleTimeout time.Duration `mapstructure:"room_idle_timeout"`
	RevealGrace     time.Duration `mapstructure:"reveal_grace"`
	SpyChanceWindow time.Duration `mapstructure:"spy_chance_window"`
	TurnUnit        time.Duration `mapstructure:"turn_unit"`

	// 每条连接每秒允许的消息数
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

func Defaults() AppConfig {
	return AppConfig{
		Host:            "0.0.0.0",
		Port:            3000,
		LogLevel:        "info",
		RoomIdleTimeout: 2 * time.Hour,
		RevealGrace:     3 * time.Second,
		SpyChanceWindow: 15 * time.Second,
		TurnUnit:        time.Second,
		RateLimit:       10,
		RateBurst:       20,
	}
}

func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("端口必须在 1-65535 之间: %d", c.Port)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("未知的日志级别: %q", c.LogLevel)
	}

	if c.TurnUnit <= 0 || c.SpyChanceWindow <= 0 || c.RevealGrace < 0 {
		return errors.New("回合计时配置必须为正数")
	}

	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("rate_limit 和 rate_burst 必须为正数")
	}

	return nil
}

// 配置键与命令行参数的对应关系，参数名使用连字符
var keys = []string{
	"host",
	"port",
	"log_level",
	"public_url",
	"static_dir",
	"room_idle_timeout",
	"reveal_grace",
	"spy_chance_window",
	"turn_unit",
	"rate_limit",
	"rate_burst",
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// BindFlags 注册所有配置项对应的命令行参数
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()

	fs.String("config", "", "配置文件路径，默认读取当前目录下的 app_config.json")
	fs.String("env-file", ".env", "启动前加载的 .env 文件")

	fs.StringP("host", "H", d.Host, "监听地址 (env: UNDERCOVER_HOST)")
	fs.IntP("port", "p", d.Port, "监听端口 (env: UNDERCOVER_PORT)")
	fs.String("log-level", d.LogLevel, "日志级别 debug|info|warn|error (env: UNDERCOVER_LOG_LEVEL)")
	fs.String("public-url", d.PublicURL, "对外访问地址，用于生成加入链接 (env: UNDERCOVER_PUBLIC_URL)")
	fs.String("static-dir", d.StaticDir, "前端静态文件目录 (env: UNDERCOVER_STATIC_DIR)")
	fs.Duration("room-idle-timeout", d.RoomIdleTimeout, "房间空闲多久后被关闭 (env: UNDERCOVER_ROOM_IDLE_TIMEOUT)")
	fs.Duration("reveal-grace", d.RevealGrace, "揭示身份阶段的额外时长 (env: UNDERCOVER_REVEAL_GRACE)")
	fs.Duration("spy-chance-window", d.SpyChanceWindow, "卧底猜词的时间窗口 (env: UNDERCOVER_SPY_CHANCE_WINDOW)")
	fs.Duration("turn-unit", d.TurnUnit, "回合时长的计时单位 (env: UNDERCOVER_TURN_UNIT)")
	fs.Float64("rate-limit", d.RateLimit, "每条连接每秒允许的消息数 (env: UNDERCOVER_RATE_LIMIT)")
	fs.Int("rate-burst", d.RateBurst, "每条连接允许的突发消息数 (env: UNDERCOVER_RATE_BURST)")
}

// Load 按 命令行参数 > 环境变量 > 配置文件 > 默认值 的优先级加载配置
func Load(fs *pflag.FlagSet) (*AppConfig, error) {
	envFile, _ := fs.GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("加载 %s 失败: %w", envFile, err)
		}
	}

	v := viper.New()

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		if f := fs.Lookup(flagName(key)); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("绑定参数 %s 失败: %w", f.Name, err)
			}
		}
		_ = v.BindEnv(key)
	}

	d := Defaults()
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("public_url", d.PublicURL)
	v.SetDefault("static_dir", d.StaticDir)
	v.SetDefault("room_idle_timeout", d.RoomIdleTimeout)
	v.SetDefault("reveal_grace", d.RevealGrace)
	v.SetDefault("spy_chance_window", d.SpyChanceWindow)
	v.SetDefault("turn_unit", d.TurnUnit)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("rate_burst", d.RateBurst)

	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("app_config")
		v.AddConfigPath(".")
	}
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// 未指定配置文件时允许默认文件不存在
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("加载配置失败: %w", err)
		}
	}

	var cfg AppConfig

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	return &cfg, nil
}
