package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Method selects the extraction strategy for a storefront.
type Method string

const (
	// MethodEreklamblad captures the incito publication feed rendered by
	// ereklamblad.se national chain pages.
	MethodEreklamblad Method = "ereklamblad"
	// MethodInventory walks the paged publication API and correlates images
	// from the inventory listing view.
	MethodInventory Method = "inventory"
	// MethodStoreSpecific is the ereklamblad capture pointed at a single
	// store's page instead of the chain page.
	MethodStoreSpecific Method = "store_specific"
	// MethodCoopAPI captures the coop.se store offer API.
	MethodCoopAPI Method = "coop_api"
)

// StoreConfig describes one storefront to scrape. The store list is read
// once at startup and stays immutable for the whole run.
type StoreConfig struct {
	Name    string
	URL     string
	Method  Method
	Enabled bool
}

// Config represents the application configuration
type Config struct {
	// Output
	OutputPath string

	// Redis configuration (optional stream publishing; empty addr disables it)
	RedisAddr            string
	RedisDB              int
	RedisStreamPrefix    string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration (publication API rate limiting)
	MemcacheAddr string

	// Browser configuration
	Headless       bool
	UserAgent      string
	Locale         string
	ViewportWidth  int
	ViewportHeight int

	// Navigation and lazy loading
	NavigationTimeout  time.Duration
	NetworkIdleTimeout time.Duration
	SettleWait         time.Duration

	ScrollStepPx            int
	ScrollStepDelay         time.Duration
	MaxScrollSteps          int
	InventoryScrollStepPx   int
	MaxInventoryScrollSteps int

	// Paged publication API
	PublicationAPIBase   string
	MaxPublicationPages  int
	PublicationBlockTime time.Duration

	// ScrapeInterval of zero means a single run.
	ScrapeInterval time.Duration

	// Environment
	Environment string

	// Stores is the ordered storefront list for one run.
	Stores []StoreConfig
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	interval, _ := strconv.Atoi(getEnv("SCRAPE_INTERVAL_SECONDS", "0"))
	maxPages, _ := strconv.Atoi(getEnv("MAX_PUBLICATION_PAGES", "50"))

	return Config{
		OutputPath:           getEnv("OUTPUT_PATH", "deals.json"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStreamPrefix:    getEnv("REDIS_STREAM_PREFIX", "matdeals"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),

		Headless:       getEnv("BROWSER_HEADLESS", "true") == "true",
		UserAgent:      getEnv("BROWSER_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		Locale:         getEnv("BROWSER_LOCALE", "sv-SE"),
		ViewportWidth:  1280,
		ViewportHeight: 900,

		NavigationTimeout:  30 * time.Second,
		NetworkIdleTimeout: 20 * time.Second,
		SettleWait:         2 * time.Second,

		ScrollStepPx:            500,
		ScrollStepDelay:         500 * time.Millisecond,
		MaxScrollSteps:          25,
		InventoryScrollStepPx:   150,
		MaxInventoryScrollSteps: 25,

		PublicationAPIBase:   getEnv("PUBLICATION_API_BASE", "https://squid-api.tjek.com/v2/catalogs"),
		MaxPublicationPages:  maxPages,
		PublicationBlockTime: 10 * time.Minute,

		ScrapeInterval: time.Duration(interval) * time.Second,
		Environment:    getEnv("MATDEALS_ENVIRONMENT", "development"),
		Stores:         loadStores(),
	}
}

// defaultStores is the ordered storefront table. Entries are toggled off with
// the DISABLED_STORES env var rather than edited here.
var defaultStores = []StoreConfig{
	// National chains
	{Name: "ICA Supermarket", URL: "https://ereklamblad.se/ICA-Supermarket/", Method: MethodEreklamblad, Enabled: true},
	{Name: "ICA Nära", URL: "https://ereklamblad.se/ICA-Nara/", Method: MethodEreklamblad, Enabled: true},
	{Name: "ICA Maxi", URL: "https://ereklamblad.se/ICA-Maxi-Stormarknad/", Method: MethodInventory, Enabled: true},
	{Name: "ICA Kvantum", URL: "https://ereklamblad.se/ICA-Kvantum/", Method: MethodInventory, Enabled: true},
	{Name: "Stora Coop", URL: "https://ereklamblad.se/Stora-Coop/", Method: MethodInventory, Enabled: true},
	{Name: "Coop", URL: "https://ereklamblad.se/Coop/", Method: MethodInventory, Enabled: true},
	{Name: "Willys", URL: "https://ereklamblad.se/Willys/", Method: MethodInventory, Enabled: true},
	// Specific stores
	{Name: "ICA Globen", URL: "https://ereklamblad.se/ICA-Supermarket/butiker/d4d20iz", Method: MethodStoreSpecific, Enabled: true},
	{Name: "Stora Coop Västberga", URL: "https://www.coop.se/butiker-erbjudanden/stora-coop/stora-coop-vastberga/", Method: MethodCoopAPI, Enabled: true},
	{Name: "Coop Fruängen", URL: "https://www.coop.se/butiker-erbjudanden/coop/coop-fruangen/", Method: MethodCoopAPI, Enabled: true},
}

// loadStores returns the store table with DISABLED_STORES entries switched off.
func loadStores() []StoreConfig {
	disabled := map[string]bool{}
	for _, name := range strings.Split(getEnv("DISABLED_STORES", ""), ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			disabled[name] = true
		}
	}

	stores := make([]StoreConfig, len(defaultStores))
	copy(stores, defaultStores)
	for i := range stores {
		if disabled[stores[i].Name] {
			stores[i].Enabled = false
		}
	}
	return stores
}

// Validate checks that the configuration can support a run.
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if c.MaxPublicationPages <= 0 {
		return fmt.Errorf("max publication pages must be positive, got %d", c.MaxPublicationPages)
	}
	if len(c.Stores) == 0 {
		return fmt.Errorf("no stores configured")
	}

	enabled := 0
	for _, store := range c.Stores {
		if store.Name == "" || store.URL == "" {
			return fmt.Errorf("store with empty name or url in configuration")
		}
		switch store.Method {
		case MethodEreklamblad, MethodInventory, MethodStoreSpecific, MethodCoopAPI:
		default:
			return fmt.Errorf("store %s has unknown method %q", store.Name, store.Method)
		}
		if store.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("all stores are disabled")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
