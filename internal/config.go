package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dutytrack/dutytrack/internal/timeclock"
)

type Config struct {
	Server        ServerConfig           `mapstructure:"http_server"`
	Storage       StorageConfig          `mapstructure:"storage"`
	Sweeper       SweeperConfig          `mapstructure:"sweeper"`
	Observability ObservabilityConfig    `mapstructure:"observability"`
	Guilds        map[string]GuildConfig `mapstructure:"guilds"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	APISecret    string        `mapstructure:"api_secret"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type StorageConfig struct {
	// Dir holds one SQLite database per guild, named <guild id>.db.
	Dir string `mapstructure:"dir"`
}

type SweeperConfig struct {
	ExpiryInterval  time.Duration `mapstructure:"expiry_interval"`
	AutoEndInterval time.Duration `mapstructure:"auto_end_interval"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GuildConfig is the per-tenant section: role labels and channel wiring stay
// with the Discord-facing layer, only what the accounting core needs lives
// here.
type GuildConfig struct {
	Name       string      `mapstructure:"name"`
	Quotas     QuotaConfig `mapstructure:"quotas"`
	QuotaCycle CycleConfig `mapstructure:"quota_cycle"`
	Shifts     ShiftConfig `mapstructure:"shifts"`
}

type QuotaConfig struct {
	DefaultMinutes int            `mapstructure:"default_minutes"`
	UnitQuotas     map[string]int `mapstructure:"unit_quotas"`
}

type CycleConfig struct {
	DayOfWeek int    `mapstructure:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	Hour      int    `mapstructure:"hour"`
	Minute    int    `mapstructure:"minute"`
	Second    int    `mapstructure:"second"`
	Timezone  string `mapstructure:"timezone"`
}

type ShiftConfig struct {
	AutoEndEnabled    bool `mapstructure:"auto_end_enabled"`
	AutoEndAfterHours int  `mapstructure:"auto_end_after_hours"`
}

// QuotaForUnit returns the unit's quota in minutes, falling back to the
// guild-wide default.
func (g GuildConfig) QuotaForUnit(unit string) int {
	if q, ok := g.Quotas.UnitQuotas[unit]; ok {
		return q
	}
	return g.Quotas.DefaultMinutes
}

// Schedule resolves the cycle config into a timezone-aware schedule. The
// timezone lookup happens here so a bad IANA name fails at load, not when a
// boundary is computed.
func (c CycleConfig) Schedule() (timeclock.Schedule, error) {
	return timeclock.NewSchedule(
		time.Weekday(c.DayOfWeek), c.Hour, c.Minute, c.Second, c.Timezone,
	)
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a guild-less config from environment variables.
// Container deployments carry guild sections in a mounted file; callers must
// merge it with MergeGuildsFile before validating.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("HTTP_PORT", 8080),
			APISecret:    getEnv("API_SECRET", ""),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Storage: StorageConfig{
			Dir: getEnv("STORAGE_DIR", "data"),
		},
		Sweeper: SweeperConfig{
			ExpiryInterval:  24 * time.Hour,
			AutoEndInterval: 5 * time.Minute,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// MergeGuildsFile loads the guilds section of a mounted YAML file into an
// env-built config. Process settings travel as environment variables in
// container deployments; per-tenant sections stay in a file.
func (c *Config) MergeGuildsFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading guilds file: %w", err)
	}

	var guilds map[string]GuildConfig
	if err := v.UnmarshalKey("guilds", &guilds); err != nil {
		return fmt.Errorf("error unmarshaling guilds file: %w", err)
	}
	if len(guilds) == 0 {
		return fmt.Errorf("guilds file %s has no guild sections", path)
	}

	c.Guilds = guilds
	return nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if c.Storage.Dir == "" {
		errs = append(errs, "storage config: dir is required")
	}
	if len(c.Guilds) == 0 {
		errs = append(errs, "guild config: at least one guild must be configured")
	}
	for guildID, g := range c.Guilds {
		if err := g.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("guild %s: %v", guildID, err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (g GuildConfig) Validate() error {
	if g.Quotas.DefaultMinutes < 0 {
		return errors.New("quotas.default_minutes cannot be negative")
	}
	for unit, q := range g.Quotas.UnitQuotas {
		if q < 0 {
			return fmt.Errorf("quotas.unit_quotas[%s] cannot be negative", unit)
		}
	}
	if _, err := g.QuotaCycle.Schedule(); err != nil {
		return fmt.Errorf("quota_cycle: %w", err)
	}
	if g.Shifts.AutoEndEnabled && g.Shifts.AutoEndAfterHours <= 0 {
		return errors.New("shifts.auto_end_after_hours must be positive when auto-end is enabled")
	}
	return nil
}

// GuildIDs returns the configured guilds in no particular order.
func (c *Config) GuildIDs() []string {
	ids := make([]string, 0, len(c.Guilds))
	for id := range c.Guilds {
		ids = append(ids, id)
	}
	return ids
}

// Guild returns the config section for a guild, or ErrGuildNotFound: the core
// refuses to operate on unconfigured tenants rather than guessing defaults.
func (c *Config) Guild(guildID string) (GuildConfig, error) {
	g, ok := c.Guilds[guildID]
	if !ok {
		return GuildConfig{}, ErrGuildNotFound
	}
	return g, nil
}
