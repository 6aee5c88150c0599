package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/Meet/internal/domain"
)

type Config struct {
	Mode       string                 `mapstructure:"mode"`
	Port       int                    `mapstructure:"port"`
	Secret     string                 `mapstructure:"secret"`
	Platform   string                 `mapstructure:"platform"`
	ServerURL  string                 `mapstructure:"server_url"`
	Room       string                 `mapstructure:"room"`
	API        APIConfig              `mapstructure:"api"`
	Publish    PublishConfig          `mapstructure:"publish"`
	Session    SessionConfig          `mapstructure:"session"`
	Capture    CaptureConfig          `mapstructure:"capture"`
	ICEServers []string               `mapstructure:"ice_servers"`
	Devices    []domain.CaptureDevice `mapstructure:"devices"`
	Permission map[string]string      `mapstructure:"permissions"`
	PostProc   PostProcConfig         `mapstructure:"postproc"`
	Control    ControlConfig          `mapstructure:"control"`
}

// APIConfig points at the room provisioning service.
type APIConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type PublishConfig struct {
	Simulcast      bool `mapstructure:"simulcast"`
	AdaptiveStream bool `mapstructure:"adaptive_stream"`
	Microphone     bool `mapstructure:"microphone"`
	Camera         bool `mapstructure:"camera"`
}

type SessionConfig struct {
	TeardownTimeout time.Duration `mapstructure:"teardown_timeout"`
}

type CaptureConfig struct {
	PixelFormat    string        `mapstructure:"pixel_format"`
	MaxZoom        float64       `mapstructure:"max_zoom"`
	PhotoDir       string        `mapstructure:"photo_dir"`
	HandoffTimeout time.Duration `mapstructure:"handoff_timeout"`
}

type PostProcConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ControlConfig limits how often one client may ask to join.
type ControlConfig struct {
	JoinLimit    int           `mapstructure:"join_limit"`
	JoinInterval time.Duration `mapstructure:"join_interval"`
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml. MEET_* environment
// variables override both.
func Load() (*Config, error) {
	// godotenv.Load does not overwrite existing env vars
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("MEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("platform", cfg.Platform).
		Int("devices", len(cfg.Devices)).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("platform", string(domain.PlatformAndroid))
	v.SetDefault("room", "main")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("publish.simulcast", false)
	v.SetDefault("publish.adaptive_stream", true)
	v.SetDefault("publish.microphone", true)
	v.SetDefault("publish.camera", true)
	v.SetDefault("session.teardown_timeout", "5s")
	v.SetDefault("capture.pixel_format", "420v")
	v.SetDefault("capture.photo_dir", os.TempDir())
	v.SetDefault("capture.handoff_timeout", "30s")
	v.SetDefault("postproc.timeout", "10s")
	v.SetDefault("control.join_limit", 5)
	v.SetDefault("control.join_interval", "10s")
	v.SetDefault("permissions", map[string]string{
		string(domain.PermissionCamera):     string(domain.PermissionUndetermined),
		string(domain.PermissionMicrophone): string(domain.PermissionUndetermined),
	})
}

func (c *Config) Validate() error {
	if _, err := domain.ParsePlatform(c.Platform); err != nil {
		return fmt.Errorf("platform: %w", err)
	}
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive, got %d", c.Port)
	}
	for i, d := range c.Devices {
		if d.ID == "" {
			return fmt.Errorf("devices[%d]: id is required", i)
		}
		if d.Facing != domain.FacingFront && d.Facing != domain.FacingBack {
			return fmt.Errorf("devices[%d]: unknown facing %q", i, d.Facing)
		}
	}
	return nil
}
