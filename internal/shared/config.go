package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rs/zerolog/log"

	"safari_reviews/internal/domain"
)

// History backends.
const (
	HistorySQLite = "sqlite"
	HistoryMySQL  = "mysql"
	HistoryRedis  = "redis"
	HistoryNone   = "none"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	MarkupPath  string
	LocalesDir  string
	DefaultLang string

	// Host page overrides; empty keeps what the page's data attributes say.
	Section domain.SectionConfig

	GSheetBase  string
	FeedRPS     int
	FeedTimeout time.Duration

	HistoryBackend string
	SQLitePath     string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration

	ForwardMaxInFlight int
	ForwardTimeout     time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MarkupPath:  env("MARKUP_PATH", "web/index.html"),
		LocalesDir:  env("LOCALES_DIR", ""),
		DefaultLang: env("DEFAULT_LANG", "en"),
		Section: domain.SectionConfig{
			ReviewsSource: os.Getenv("REVIEWS_SOURCE"),
			SheetID:       os.Getenv("GSHEET_ID"),
			SheetName:     os.Getenv("GSHEET_SHEET"),
			ReviewMode:    os.Getenv("REVIEW_MODE"),
			ReviewURL:     os.Getenv("REVIEW_URL"),
			Form: domain.FormMapping{
				URL:     os.Getenv("GFORM_URL"),
				Rating:  os.Getenv("GFORM_RATING"),
				Name:    os.Getenv("GFORM_NAME"),
				Email:   os.Getenv("GFORM_EMAIL"),
				Title:   os.Getenv("GFORM_TITLE"),
				Text:    os.Getenv("GFORM_TEXT"),
				Consent: os.Getenv("GFORM_CONSENT"),
			},
		},
		GSheetBase:         env("GSHEET_BASE_URL", "https://docs.google.com/spreadsheets/d"),
		FeedRPS:            atoi("FEED_RPS", 2),
		FeedTimeout:        time.Duration(atoi("FEED_TIMEOUT_SECONDS", 20)) * time.Second,
		HistoryBackend:     strings.ToLower(env("HISTORY_BACKEND", HistorySQLite)),
		SQLitePath:         env("SQLITE_PATH", "data/reviews.db"),
		MySQLDSN:           env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:          env("REDIS_ADDR", ""),
		RedisPass:          env("REDIS_PASSWORD", ""),
		RedisDB:            atoi("REDIS_DB", 0),
		CacheTTL:           time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		ForwardMaxInFlight: atoi("FORWARD_MAX_INFLIGHT", 4),
		ForwardTimeout:     time.Duration(atoi("FORWARD_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	if err := c.Validate(); err != nil {
		log.Warn().Err(err).Msg("configuration has invalid values")
	}
	return c
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.DefaultLang, validation.Required, validation.Length(2, 5)),
		validation.Field(&c.HistoryBackend, validation.In(HistorySQLite, HistoryMySQL, HistoryRedis, HistoryNone)),
		validation.Field(&c.SQLitePath, validation.When(c.HistoryBackend == HistorySQLite, validation.Required)),
		validation.Field(&c.MySQLDSN, validation.When(c.HistoryBackend == HistoryMySQL, validation.Required)),
		validation.Field(&c.RedisAddr, validation.When(c.HistoryBackend == HistoryRedis, validation.Required)),
		validation.Field(&c.GSheetBase, validation.Required, is.URL),
		validation.Field(&c.FeedRPS, validation.Min(1)),
		validation.Field(&c.ForwardMaxInFlight, validation.Min(1)),
	)
}

// MergeSection merges the host page's configuration with the env overrides.
// Non-empty env values win field by field.
func (c Config) MergeSection(page domain.SectionConfig) domain.SectionConfig {
	o := c.Section
	pick := func(over, base string) string {
		if over != "" {
			return over
		}
		return base
	}
	return domain.SectionConfig{
		ReviewsSource: strings.ToLower(pick(o.ReviewsSource, page.ReviewsSource)),
		SheetID:       pick(o.SheetID, page.SheetID),
		SheetName:     pick(o.SheetName, page.SheetName),
		ReviewMode:    pick(o.ReviewMode, page.ReviewMode),
		ReviewURL:     pick(o.ReviewURL, page.ReviewURL),
		Form: domain.FormMapping{
			URL:     pick(o.Form.URL, page.Form.URL),
			Rating:  pick(o.Form.Rating, page.Form.Rating),
			Name:    pick(o.Form.Name, page.Form.Name),
			Email:   pick(o.Form.Email, page.Form.Email),
			Title:   pick(o.Form.Title, page.Form.Title),
			Text:    pick(o.Form.Text, page.Form.Text),
			Consent: pick(o.Form.Consent, page.Form.Consent),
		},
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
