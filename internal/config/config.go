package config

import (
	"fmt"
	"strings"

	"github.com/mara-shop/internal/cart"
	"github.com/mara-shop/internal/constants"
	"github.com/mara-shop/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Cart     CartConfig     `mapstructure:"cart"`
	Session  SessionConfig  `mapstructure:"session"`
	Order    OrderConfig    `mapstructure:"order"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	// ProductTTLSeconds 商品查询缓存时长，0 表示不缓存
	ProductTTLSeconds int `mapstructure:"product_ttl_seconds"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CartConfig 购物车配置
type CartConfig struct {
	Store                 string `mapstructure:"store"` // memory / redis / database
	FreeShippingThreshold string `mapstructure:"free_shipping_threshold"`
	ShippingFee           string `mapstructure:"shipping_fee"`
	TaxRate               string `mapstructure:"tax_rate"`
	EnforceStock          bool   `mapstructure:"enforce_stock"`
	SessionCacheSize      int    `mapstructure:"session_cache_size"`
	RedisTTLHours         int    `mapstructure:"redis_ttl_hours"`
	// SnapshotRetentionDays 数据库快照保留天数，0 表示不清理
	SnapshotRetentionDays int `mapstructure:"snapshot_retention_days"`
}

// ToPricing 解析金额配置
func (c CartConfig) ToPricing() (cart.Pricing, error) {
	pricing := cart.DefaultPricing()
	fields := []struct {
		name  string
		raw   string
		apply func(decimal.Decimal)
	}{
		{"cart.free_shipping_threshold", c.FreeShippingThreshold, func(d decimal.Decimal) { pricing.FreeShippingThreshold = d }},
		{"cart.shipping_fee", c.ShippingFee, func(d decimal.Decimal) { pricing.ShippingFee = d }},
		{"cart.tax_rate", c.TaxRate, func(d decimal.Decimal) { pricing.TaxRate = d }},
	}
	for _, field := range fields {
		raw := strings.TrimSpace(field.raw)
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return cart.Pricing{}, fmt.Errorf("invalid %s %q: %w", field.name, raw, err)
		}
		field.apply(value)
	}
	if err := pricing.Validate(); err != nil {
		return cart.Pricing{}, err
	}
	return pricing, nil
}

// SessionConfig 购物车会话令牌配置
type SessionConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
	Issuer   string `mapstructure:"issuer"`
}

// OrderConfig 订单配置
type OrderConfig struct {
	CheckoutRateLimit RateLimitConfig `mapstructure:"checkout_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// AdminConfig 后台接口配置
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	cfg, err := LoadWith(viper.New(), ".", "./", "../", "./etc")
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

// LoadWith 使用指定 viper 实例与搜索路径加载配置
func LoadWith(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	setDefaults(v)

	// 环境变量支持（例如 cart.tax_rate -> CART_TAX_RATE）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Cart.Store = strings.ToLower(strings.TrimSpace(cfg.Cart.Store))
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/mara.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "mara")
	v.SetDefault("redis.product_ttl_seconds", 60)
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		constants.QueueDefault:  10,
		constants.QueueCritical: 5,
	})
	v.SetDefault("cart.store", constants.CartStoreDatabase)
	v.SetDefault("cart.free_shipping_threshold", "100")
	v.SetDefault("cart.shipping_fee", "10")
	v.SetDefault("cart.tax_rate", "0.08")
	v.SetDefault("cart.enforce_stock", false)
	v.SetDefault("cart.session_cache_size", 1024)
	v.SetDefault("cart.redis_ttl_hours", 720)
	v.SetDefault("cart.snapshot_retention_days", 30)
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.ttl_hours", 720)
	v.SetDefault("session.issuer", "mara-shop")
	v.SetDefault("order.checkout_rate_limit.window_seconds", 60)
	v.SetDefault("order.checkout_rate_limit.max_requests", 10)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		constants.HeaderCartSession,
		constants.HeaderAdminKey,
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("admin.api_key", "")
}
