package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("file_state_dir", "~/.coffeechatted")

	// Store
	viper.SetDefault("store.driver", "file")
	viper.SetDefault("store.dir_name", "store")
	viper.SetDefault("store.lock_timeout", 5*time.Second)
	viper.SetDefault("store.sqlite.dsn", "")
	viper.SetDefault("store.sqlite.busy_timeout_ms", 5000)
	viper.SetDefault("store.sqlite.wal", true)

	// Simulated calendar
	viper.SetDefault("simulation.start_date", "2024-01-01")
	viper.SetDefault("simulation.offset", 0)
	viper.SetDefault("seed.enabled", true)

	// Focus used until the user saves one
	viper.SetDefault("focus.target_industry", "Investment Banking")
	viper.SetDefault("focus.target_role", "TMT")
	viper.SetDefault("focus.recruiting_stage", "Networking")

	// Enrichment
	viper.SetDefault("enrich.enabled", true)
	viper.SetDefault("enrich.timeout", 15*time.Second)
	viper.SetDefault("enrich.wait", 4*time.Second)
	viper.SetDefault("enrich.retry_attempts", 2)
	viper.SetDefault("enrich.retry_delay", 500*time.Millisecond)

	// LLM
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.endpoint", "")
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.request_timeout", 30*time.Second)

	// Audit
	viper.SetDefault("audit.enabled", true)
	viper.SetDefault("audit.dir_name", "audit")
	viper.SetDefault("audit.rotate_max_bytes", int64(10*1024*1024))

	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
	viper.SetDefault("trace", false)
}
