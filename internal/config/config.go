package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"snackstack/internal/nudge"
)

const (
	configName = "snackstack"
	configType = "toml"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string
	// BackendURL, when set, makes the engine read order history and send
	// nudge telemetry through the remote user contract instead of the
	// local database.
	BackendURL            string
	// ServiceToken, when set, lets a trusted caller read and report for any
	// customer on the user contract by sending it as X-Service-Token.
	ServiceToken          string
	LoginTimeout          time.Duration
	SessionTTL            time.Duration
	ReplenishmentCooldown time.Duration
	Nudge                 nudge.Config
}

func setDefaults(v *viper.Viper) {
	d := nudge.DefaultConfig()
	v.SetDefault("port", "8080")
	v.SetDefault("db_dsn", "snackstack.db") // sqlite file in the working directory
	v.SetDefault("log_file", "./snackstack.log")
	v.SetDefault("backend_url", "")
	v.SetDefault("service_token", "")
	v.SetDefault("login_timeout", 10*time.Second)
	v.SetDefault("session_ttl", 30*time.Minute)

	v.SetDefault("nudge.idle_timeout", d.IdleTimeout)
	v.SetDefault("nudge.idle_discount", d.IdleDiscount)
	v.SetDefault("nudge.idle_sample_size", d.IdleSampleSize)
	v.SetDefault("nudge.hesitation_delay_min", d.HesitationDelayMin)
	v.SetDefault("nudge.hesitation_delay_max", d.HesitationDelayMax)
	v.SetDefault("nudge.hesitation_max_step", d.HesitationMaxStep)
	v.SetDefault("nudge.hesitation_discount", d.HesitationDiscount)
	v.SetDefault("nudge.hover_delay", d.HoverDelay)
	v.SetDefault("nudge.exit_rearm", d.ExitRearm)
	v.SetDefault("nudge.exit_tolerance", d.ExitTolerance)
	v.SetDefault("nudge.replenishment_delay", d.ReplenishmentDelay)
	v.SetDefault("nudge.replenishment_cooldown", 24*time.Hour)
}

// Load reads defaults, then snackstack.toml from . or $HOME/.snackstack,
// then SNACKSTACK_* environment variables (nudge.idle_timeout becomes
// SNACKSTACK_NUDGE_IDLE_TIMEOUT). A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".snackstack"))
	}
	v.SetEnvPrefix("SNACKSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Port:                  v.GetString("port"),
		DBDSN:                 v.GetString("db_dsn"),
		LogFile:               v.GetString("log_file"),
		BackendURL:            v.GetString("backend_url"),
		ServiceToken:          v.GetString("service_token"),
		LoginTimeout:          v.GetDuration("login_timeout"),
		SessionTTL:            v.GetDuration("session_ttl"),
		ReplenishmentCooldown: v.GetDuration("nudge.replenishment_cooldown"),
		Nudge: nudge.Config{
			IdleTimeout:        v.GetDuration("nudge.idle_timeout"),
			IdleDiscount:       v.GetFloat64("nudge.idle_discount"),
			IdleSampleSize:     v.GetInt("nudge.idle_sample_size"),
			HesitationDelayMin: v.GetDuration("nudge.hesitation_delay_min"),
			HesitationDelayMax: v.GetDuration("nudge.hesitation_delay_max"),
			HesitationMaxStep:  v.GetFloat64("nudge.hesitation_max_step"),
			HesitationDiscount: v.GetFloat64("nudge.hesitation_discount"),
			HoverDelay:         v.GetDuration("nudge.hover_delay"),
			ExitRearm:          v.GetDuration("nudge.exit_rearm"),
			ExitTolerance:      v.GetFloat64("nudge.exit_tolerance"),
			ReplenishmentDelay: v.GetDuration("nudge.replenishment_delay"),
		},
	}
	if cfg.Nudge.HesitationDelayMax < cfg.Nudge.HesitationDelayMin {
		return Config{}, fmt.Errorf("nudge.hesitation_delay_max %s is below nudge.hesitation_delay_min %s",
			cfg.Nudge.HesitationDelayMax, cfg.Nudge.HesitationDelayMin)
	}

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s BACKEND_URL=%q IDLE=%s REPLENISH_DELAY=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.BackendURL, cfg.Nudge.IdleTimeout, cfg.Nudge.ReplenishmentDelay)
	return cfg, nil
}
