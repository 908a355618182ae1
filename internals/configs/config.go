package configs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		log.Println("🚀 Running in production, using system ENV")
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system ENV")
	} else {
		log.Println("✅ .env file loaded!")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// =======================
// TYPED CONFIG
// =======================

type Config struct {
	Port          string `mapstructure:"PORT"`
	Env           string `mapstructure:"APP_ENV"`
	AppURL        string `mapstructure:"APP_URL"`
	AdminBasePath string `mapstructure:"ADMIN_BASE_PATH"`

	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBAutoMigrate  bool   `mapstructure:"DB_AUTO_MIGRATE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AuthCookieName string `mapstructure:"AUTH_COOKIE_NAME"`
	AuthJWTExpires string `mapstructure:"AUTH_JWT_EXPIRES"`
	CookieDomain   string `mapstructure:"COOKIE_DOMAIN"`
	CookieSecure   bool   `mapstructure:"COOKIE_SECURE"`
	CorsOrigins    string `mapstructure:"CORS_ORIGINS"`
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	PaystackSecretKey string `mapstructure:"PAYSTACK_SECRET_KEY"`

	EmailHost          string `mapstructure:"EMAIL_HOST"`
	EmailPort          int    `mapstructure:"EMAIL_PORT"`
	EmailUser          string `mapstructure:"EMAIL_USER"`
	EmailPassword      string `mapstructure:"EMAIL_PASSWORD"`
	EmailSecure        bool   `mapstructure:"EMAIL_SECURE"`
	EmailFrom          string `mapstructure:"EMAIL_FROM"`
	EmailRatePerMinute int    `mapstructure:"EMAIL_RATE_PER_MINUTE"`
	SupportEmail       string `mapstructure:"SUPPORT_EMAIL"`

	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	UploadMaxBytes int64  `mapstructure:"UPLOAD_MAX_BYTES"`

	ImportMaxRows   int `mapstructure:"IMPORT_CSV_MAX_ROWS"`
	ImportBatchSize int `mapstructure:"IMPORT_BATCH_SIZE"`

	MembershipIDPrefix string `mapstructure:"MEMBERSHIP_ID_PREFIX"`
	RenewalWindowDays  int    `mapstructure:"RENEWAL_WINDOW_DAYS"`
	ExpirySweepCron    string `mapstructure:"EXPIRY_SWEEP_CRON"`

	AdminSeedEmail    string `mapstructure:"ADMIN_SEED_EMAIL"`
	AdminSeedPassword string `mapstructure:"ADMIN_SEED_PASSWORD"`
	AdminSeedName     string `mapstructure:"ADMIN_SEED_NAME"`
	AdminSeedFile     string `mapstructure:"ADMIN_SEED_FILE"`
}

var defaults = map[string]any{
	"PORT":                  "3000",
	"APP_ENV":               "development",
	"APP_URL":               "http://localhost:5173",
	"ADMIN_BASE_PATH":       "/admin",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "",
	"DB_PASSWORD":           "",
	"DB_NAME":               "",
	"DB_SSLMODE":            "disable",
	"DB_MAX_OPEN_CONNS":     20,
	"DB_MAX_IDLE_CONNS":     10,
	"DB_AUTO_MIGRATE":       true,
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"JWT_SECRET":            "",
	"AUTH_COOKIE_NAME":      "chefs_admin_token",
	"AUTH_JWT_EXPIRES":      "1d",
	"COOKIE_DOMAIN":         "",
	"COOKIE_SECURE":         false,
	"CORS_ORIGINS":          "http://localhost:5173",
	"TRUSTED_PROXIES":       "",
	"PAYSTACK_SECRET_KEY":   "",
	"EMAIL_HOST":            "",
	"EMAIL_PORT":            587,
	"EMAIL_USER":            "",
	"EMAIL_PASSWORD":        "",
	"EMAIL_SECURE":          false,
	"EMAIL_FROM":            "no-reply@chefsghana.com",
	"EMAIL_RATE_PER_MINUTE": 60,
	"SUPPORT_EMAIL":         "support@chefsghana.com",
	"UPLOAD_DIR":            "uploads",
	"UPLOAD_MAX_BYTES":      5 << 20,
	"IMPORT_CSV_MAX_ROWS":   20000,
	"IMPORT_BATCH_SIZE":     500,
	"MEMBERSHIP_ID_PREFIX":  "CAG",
	"RENEWAL_WINDOW_DAYS":   30,
	"EXPIRY_SWEEP_CRON":     "15 0 * * *",
	"ADMIN_SEED_EMAIL":      "",
	"ADMIN_SEED_PASSWORD":   "",
	"ADMIN_SEED_NAME":       "Administrator",
	"ADMIN_SEED_FILE":       "",
}

// Load builds Config from the environment. Call LoadEnv first so .env values are visible.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}
	if cfg.DBName == "" || cfg.DBUser == "" {
		return nil, errors.New("config: DB_NAME and DB_USER must be set")
	}
	if cfg.ImportMaxRows <= 0 {
		cfg.ImportMaxRows = 20000
	}
	if cfg.ImportBatchSize <= 0 {
		cfg.ImportBatchSize = 500
	}
	if cfg.RenewalWindowDays < 0 {
		cfg.RenewalWindowDays = 0
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DSN for both GORM and the migration runner.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=membership",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) CorsOriginList() []string {
	return splitList(c.CorsOrigins)
}

// TrustedProxyList holds the IPs/CIDRs allowed to set X-Forwarded-For. Empty means none.
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SessionTTL parses AUTH_JWT_EXPIRES ("30s", "15m", "12h", "1d"). Falls back to one day.
func (c *Config) SessionTTL() time.Duration {
	return ParseTTL(c.AuthJWTExpires, 24*time.Hour)
}

// ParseTTL accepts <n>s|m|h|d.
func ParseTTL(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if len(raw) < 2 {
		return fallback
	}
	n, err := strconv.Atoi(raw[:len(raw)-1])
	if err != nil || n <= 0 {
		return fallback
	}
	switch raw[len(raw)-1] {
	case 's':
		return time.Duration(n) * time.Second
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	}
	return fallback
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(production bool) gormLogger.Interface {
	level := gormLogger.Info
	if production {
		level = gormLogger.Warn
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && !errors.Is(err, gormLogger.ErrRecordNotFound):
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
