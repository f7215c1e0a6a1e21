// config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"absopds/models"
)

const (
	DefaultPort              = 3010
	DefaultABSURL            = "http://localhost:3000"
	DefaultPageSize          = 20
	DefaultParallelThreshold = 5000
	DefaultTokenCacheTTL     = 600
	DefaultCatalogTitle      = "Audiobookshelf OPDS"
)

var globalConfig *Config

// SetGlobalConfig устанавливает глобальную конфигурацию
func SetGlobalConfig(cfg *Config) {
	globalConfig = cfg
}

// GetConfig возвращает глобальную конфигурацию
func GetConfig() *Config {
	return globalConfig
}

// Config структура для хранения конфигурации приложения
type Config struct {
	Debug             bool    `ini:"debug"`
	Port              int     `ini:"port"`
	ABSURL            string  `ini:"abs_url"`
	OPDSUsers         string  `ini:"opds_users"` // "имя:ключ:пароль,..."
	ShowAudiobooks    bool    `ini:"show_audiobooks"`
	ShowCharCards     bool    `ini:"show_char_cards"`
	NoAuth            bool    `ini:"opds_no_auth"`
	NoAuthUsername    string  `ini:"abs_noauth_username"`
	NoAuthPassword    string  `ini:"abs_noauth_password"`
	PageSize          int     `ini:"opds_page_size"`
	ParallelThreshold int     `ini:"parallel_threshold"`
	ParallelWorkers   int     `ini:"parallel_workers"`
	ItemsCacheTTL     int     `ini:"items_cache_ttl"` // секунды, 0 = кэш выключен
	TokenCacheTTL     int     `ini:"token_cache_ttl"` // секунды
	LanguagesDir      string  `ini:"languages_dir"`
	RateLimitRPS      float64 `ini:"rate_limit_rps"` // 0 = без ограничений
	RateLimitBurst    int     `ini:"rate_limit_burst"`
	CatalogTitle      string  `ini:"catalog_title"`

	users []models.InternalUser
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Port:              DefaultPort,
		ABSURL:            DefaultABSURL,
		PageSize:          DefaultPageSize,
		ParallelThreshold: DefaultParallelThreshold,
		ParallelWorkers:   runtime.GOMAXPROCS(0),
		TokenCacheTTL:     DefaultTokenCacheTTL,
		LanguagesDir:      "languages",
		RateLimitBurst:    20,
		CatalogTitle:      DefaultCatalogTitle,
	}
}

// LoadConfig загружает конфигурацию из INI-файла. Отсутствие файла не
// считается ошибкой: используются настройки по умолчанию.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Info("Файл конфигурации не найден, использую настройки по умолчанию", "path", configPath)
		return cfg, nil
	}

	iniCfg, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки файла конфигурации %s: %w", configPath, err)
	}

	section := iniCfg.Section("")

	readString := func(key string, defaultValue string) string {
		if value := section.Key(key).String(); value != "" {
			return value
		}
		return defaultValue
	}
	readInt := func(key string, defaultValue int) int {
		if value, err := section.Key(key).Int(); err == nil {
			return value
		}
		return defaultValue
	}
	readFloat := func(key string, defaultValue float64) float64 {
		if value, err := section.Key(key).Float64(); err == nil {
			return value
		}
		return defaultValue
	}
	readBool := func(key string, defaultValue bool) bool {
		if value, err := section.Key(key).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg.Debug = readBool("debug", cfg.Debug)
	cfg.Port = readInt("port", cfg.Port)
	cfg.ABSURL = readString("abs_url", cfg.ABSURL)
	cfg.OPDSUsers = readString("opds_users", cfg.OPDSUsers)
	cfg.ShowAudiobooks = readBool("show_audiobooks", cfg.ShowAudiobooks)
	cfg.ShowCharCards = readBool("show_char_cards", cfg.ShowCharCards)
	cfg.NoAuth = readBool("opds_no_auth", cfg.NoAuth)
	cfg.NoAuthUsername = readString("abs_noauth_username", cfg.NoAuthUsername)
	cfg.NoAuthPassword = readString("abs_noauth_password", cfg.NoAuthPassword)
	cfg.PageSize = readInt("opds_page_size", cfg.PageSize)
	cfg.ParallelThreshold = readInt("parallel_threshold", cfg.ParallelThreshold)
	cfg.ParallelWorkers = readInt("parallel_workers", cfg.ParallelWorkers)
	cfg.ItemsCacheTTL = readInt("items_cache_ttl", cfg.ItemsCacheTTL)
	cfg.TokenCacheTTL = readInt("token_cache_ttl", cfg.TokenCacheTTL)
	cfg.LanguagesDir = readString("languages_dir", cfg.LanguagesDir)
	cfg.RateLimitRPS = readFloat("rate_limit_rps", cfg.RateLimitRPS)
	cfg.RateLimitBurst = readInt("rate_limit_burst", cfg.RateLimitBurst)
	cfg.CatalogTitle = readString("catalog_title", cfg.CatalogTitle)

	return cfg, nil
}

// LoadEnvFile загружает переменные окружения из .env-файлов, если они есть.
// Уже заданные переменные не перезаписываются.
func LoadEnvFile(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Warn("Не удалось прочитать файл окружения", "path", p, "err", err)
		}
	}
}

// ApplyEnv переопределяет настройки значениями переменных окружения
func (c *Config) ApplyEnv() {
	envString := func(key string, target *string) {
		if v, ok := os.LookupEnv(key); ok {
			*target = v
		}
	}
	envInt := func(key string, target *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				log.Warn("Некорректное числовое значение переменной", "key", key, "value", v)
				return
			}
			*target = n
		}
	}
	envFloat := func(key string, target *float64) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				log.Warn("Некорректное числовое значение переменной", "key", key, "value", v)
				return
			}
			*target = n
		}
	}
	envBool := func(key string, target *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				log.Warn("Некорректное логическое значение переменной", "key", key, "value", v)
				return
			}
			*target = b
		}
	}

	envBool("DEBUG", &c.Debug)
	envInt("PORT", &c.Port)
	envString("ABS_URL", &c.ABSURL)
	envString("OPDS_USERS", &c.OPDSUsers)
	envBool("SHOW_AUDIOBOOKS", &c.ShowAudiobooks)
	envBool("SHOW_CHAR_CARDS", &c.ShowCharCards)
	envBool("OPDS_NO_AUTH", &c.NoAuth)
	envString("ABS_NOAUTH_USERNAME", &c.NoAuthUsername)
	envString("ABS_NOAUTH_PASSWORD", &c.NoAuthPassword)
	envInt("OPDS_PAGE_SIZE", &c.PageSize)
	envInt("PARALLEL_THRESHOLD", &c.ParallelThreshold)
	envInt("PARALLEL_WORKERS", &c.ParallelWorkers)
	envInt("ITEMS_CACHE_TTL", &c.ItemsCacheTTL)
	envInt("TOKEN_CACHE_TTL", &c.TokenCacheTTL)
	envString("LANGUAGES_DIR", &c.LanguagesDir)
	envFloat("RATE_LIMIT_RPS", &c.RateLimitRPS)
	envInt("RATE_LIMIT_BURST", &c.RateLimitBurst)
	envString("CATALOG_TITLE", &c.CatalogTitle)
}

// ParseUsers разбирает список внутренних пользователей. Некорректные
// записи пропускаются с предупреждением.
func (c *Config) ParseUsers() []models.InternalUser {
	var users []models.InternalUser
	for i, raw := range strings.Split(c.OPDSUsers, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			log.Warn("Некорректная запись пользователя в opds_users, пропускаю", "index", i+1)
			continue
		}
		users = append(users, models.InternalUser{
			Name:     parts[0],
			APIKey:   parts[1],
			Password: parts[2],
		})
	}
	c.users = users
	return users
}

// Users возвращает внутренних пользователей, разобранных ParseUsers
func (c *Config) Users() []models.InternalUser {
	return c.users
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("некорректный порт: %d (должен быть от 1 до 65535)", c.Port)
	}

	c.ABSURL = strings.TrimRight(strings.TrimSpace(c.ABSURL), "/")
	if c.ABSURL == "" {
		return errors.New("адрес сервера Audiobookshelf (abs_url) не может быть пустым")
	}
	u, err := url.Parse(c.ABSURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("некорректный адрес сервера Audiobookshelf: %s", c.ABSURL)
	}

	if c.NoAuth && (c.NoAuthUsername == "" || c.NoAuthPassword == "") {
		return errors.New("opds_no_auth включен, но abs_noauth_username или abs_noauth_password не заданы")
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("некорректный размер страницы: %d", c.PageSize)
	}

	if c.ParallelWorkers <= 0 {
		c.ParallelWorkers = runtime.GOMAXPROCS(0)
	}
	if c.ItemsCacheTTL < 0 {
		log.Warn("Отрицательное значение items_cache_ttl, кэш выключен", "value", c.ItemsCacheTTL)
		c.ItemsCacheTTL = 0
	}
	if c.TokenCacheTTL <= 0 {
		c.TokenCacheTTL = DefaultTokenCacheTTL
	}
	if c.RateLimitRPS < 0 {
		c.RateLimitRPS = 0
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = max(1, int(c.RateLimitRPS))
	}
	if c.CatalogTitle == "" {
		c.CatalogTitle = DefaultCatalogTitle
	}

	return nil
}

// ItemsCacheDuration время жизни кэша записей
func (c *Config) ItemsCacheDuration() time.Duration {
	return time.Duration(c.ItemsCacheTTL) * time.Second
}

// TokenCacheDuration время жизни токенов
func (c *Config) TokenCacheDuration() time.Duration {
	return time.Duration(c.TokenCacheTTL) * time.Second
}

// String возвращает строковое представление конфигурации без секретов
func (c *Config) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Debug: %t\n", c.Debug)
	fmt.Fprintf(&sb, "Port: %d\n", c.Port)
	fmt.Fprintf(&sb, "ABSURL: %s\n", c.ABSURL)
	fmt.Fprintf(&sb, "OPDSUsers: %s\n", maskUsers(c.OPDSUsers))
	fmt.Fprintf(&sb, "ShowAudiobooks: %t\n", c.ShowAudiobooks)
	fmt.Fprintf(&sb, "ShowCharCards: %t\n", c.ShowCharCards)
	fmt.Fprintf(&sb, "NoAuth: %t\n", c.NoAuth)
	fmt.Fprintf(&sb, "NoAuthUsername: %s\n", c.NoAuthUsername)
	fmt.Fprintf(&sb, "NoAuthPassword: %s\n", mask(c.NoAuthPassword))
	fmt.Fprintf(&sb, "PageSize: %d\n", c.PageSize)
	fmt.Fprintf(&sb, "ParallelThreshold: %d\n", c.ParallelThreshold)
	fmt.Fprintf(&sb, "ParallelWorkers: %d\n", c.ParallelWorkers)
	fmt.Fprintf(&sb, "ItemsCacheTTL: %d\n", c.ItemsCacheTTL)
	fmt.Fprintf(&sb, "TokenCacheTTL: %d\n", c.TokenCacheTTL)
	fmt.Fprintf(&sb, "LanguagesDir: %s\n", c.LanguagesDir)
	fmt.Fprintf(&sb, "RateLimit: %g rps, burst %d\n", c.RateLimitRPS, c.RateLimitBurst)
	fmt.Fprintf(&sb, "CatalogTitle: %s\n", c.CatalogTitle)
	return sb.String()
}

func mask(secret string) string {
	if secret == "" {
		return "(не задан)"
	}
	return "(скрыт)"
}

// maskUsers оставляет в списке пользователей только имена
func maskUsers(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "(не заданы)"
	}
	var names []string
	for _, entry := range strings.Split(raw, ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(entry), ":")
		if name != "" {
			names = append(names, name+":***")
		}
	}
	return strings.Join(names, ",")
}
