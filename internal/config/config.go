package config

import "os"

// Config collects everything the service reads from the environment.
// ServerKey is the shared secret used for webhook signature checks and
// gateway authentication; it is injected here once and must never be
// logged.
type Config struct {
	ListenAddr     string
	DBPath         string
	ServerKey      string
	GatewayBaseURL string
	SiteBaseURL    string
}

// FromEnv loads the configuration with development-friendly defaults.
func FromEnv() Config {
	return Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "storefront.db"),
		ServerKey:      getEnv("MIDTRANS_SERVER_KEY", ""),
		GatewayBaseURL: getEnv("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com"),
		SiteBaseURL:    getEnv("SITE_BASE_URL", "http://localhost:3000"),
	}
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
