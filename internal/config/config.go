package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultNewsFeeds lists the RSS sources polled when NEWS_FEEDS is unset.
var DefaultNewsFeeds = []NewsFeed{
	{Name: "venturebeat", URL: "https://venturebeat.com/category/ai/feed/"},
	{Name: "techcrunch", URL: "https://techcrunch.com/tag/artificial-intelligence/feed/"},
	{Name: "wired", URL: "https://www.wired.com/feed/rss"},
	{Name: "mit_tech_review", URL: "https://www.technologyreview.com/feed/"},
	{Name: "ai_news", URL: "https://artificialintelligence-news.com/feed/"},
}

// NewsFeed names a single RSS source.
type NewsFeed struct {
	Name string
	URL  string
}

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	LogLevel          string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	CORSAllowOrigins  string
	AIProvider        string
	AIModel           string
	AITemperature     float64
	AIMaxTokens       int
	AITimeout         time.Duration
	AIRateLimitMax    int
	AIRateLimitWindow time.Duration
	GeminiAPIKey      string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	OllamaURL         string
	NewsFeeds         []NewsFeed
	NewsCacheTTL      time.Duration
	NewsHTTPTimeout   time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODECOACH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CodeCoach API")
	v.SetDefault("app.env", "development")
	v.SetDefault("port", "8000")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.rate_limit.max", 30)
	v.SetDefault("ai.rate_limit.window", "1m")
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("news.cache_ttl", "1h")
	v.SetDefault("news.http_timeout", "10s")

	aiTimeout, err := parseDuration(v, "ai.timeout")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "ai.rate_limit.window")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "news.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	newsTimeout, err := parseDuration(v, "news.http_timeout")
	if err != nil {
		return Config{}, err
	}

	feeds, err := ParseNewsFeeds(v.GetString("news.feeds"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("port"),
		LogLevel:          strings.ToLower(v.GetString("log.level")),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		CORSAllowOrigins:  v.GetString("cors.allow_origins"),
		AIProvider:        strings.ToLower(v.GetString("ai.provider")),
		AIModel:           v.GetString("ai.model"),
		AITemperature:     v.GetFloat64("ai.temperature"),
		AIMaxTokens:       v.GetInt("ai.max_tokens"),
		AITimeout:         aiTimeout,
		AIRateLimitMax:    v.GetInt("ai.rate_limit.max"),
		AIRateLimitWindow: rateWindow,
		GeminiAPIKey:      v.GetString("gemini_api_key"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		AnthropicAPIKey:   v.GetString("anthropic_api_key"),
		OllamaURL:         v.GetString("ollama.url"),
		NewsFeeds:         feeds,
		NewsCacheTTL:      cacheTTL,
		NewsHTTPTimeout:   newsTimeout,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 2048
	}

	return cfg, nil
}

// ParseNewsFeeds parses a comma separated list of name=url pairs. An empty
// input yields DefaultNewsFeeds.
func ParseNewsFeeds(raw string) ([]NewsFeed, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		feeds := make([]NewsFeed, len(DefaultNewsFeeds))
		copy(feeds, DefaultNewsFeeds)
		return feeds, nil
	}

	var feeds []NewsFeed
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, url, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid news feed entry %q", part)
		}
		feeds = append(feeds, NewsFeed{Name: name, URL: url})
	}

	return feeds, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	value := v.GetString(key)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
