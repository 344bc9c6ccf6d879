package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type ExportConfig struct {
	Destination string `mapstructure:"destination"` // local or s3
	Path        string `mapstructure:"path"`
	Bucket      string `mapstructure:"bucket"`
	Region      string `mapstructure:"region"`
}

type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	LogLevel   string `mapstructure:"log_level"`
	LogFormat  string `mapstructure:"log_format"`
	Seed       int64  `mapstructure:"seed"`

	PlacesAPIKey       string        `mapstructure:"places_api_key"`
	PlacesBaseURL      string        `mapstructure:"places_base_url"`
	PlacesRadiusMeters float64       `mapstructure:"places_radius_meters"`
	PlacesMaxResults   int           `mapstructure:"places_max_results"`
	PlacesTimeout      time.Duration `mapstructure:"places_timeout"`

	RecommendationURL     string        `mapstructure:"recommendation_url"`
	RecommendationTimeout time.Duration `mapstructure:"recommendation_timeout"`
	WeatherEnabled        bool          `mapstructure:"weather_enabled"`

	AnimationDuration time.Duration `mapstructure:"animation_duration"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"` // 0 keeps sessions forever
	PointerDegrees    float64       `mapstructure:"pointer_degrees"`
	DefaultLat        float64       `mapstructure:"default_latitude"`
	DefaultLng        float64       `mapstructure:"default_longitude"`
	SampleRestaurants int           `mapstructure:"sample_restaurants"`
	CatalogFile       string        `mapstructure:"catalog_file"`

	Storage     string `mapstructure:"storage"` // memory or postgres
	DatabaseURL string `mapstructure:"database_url"`

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
	OutputFile      string `mapstructure:"output_file_path"`

	Export ExportConfig `mapstructure:"export"`
}

// SetDefaults registers the defaults every key falls back to when neither
// the config file, the environment nor a flag provides it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("seed", 0)
	v.SetDefault("places_base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places_radius_meters", 5000.0)
	v.SetDefault("places_max_results", 10)
	v.SetDefault("places_timeout", "10s")
	v.SetDefault("recommendation_timeout", "15s")
	v.SetDefault("weather_enabled", true)
	v.SetDefault("animation_duration", "3s")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("pointer_degrees", 90.0)
	v.SetDefault("default_latitude", DefaultLocation.Lat)
	v.SetDefault("default_longitude", DefaultLocation.Lng)
	v.SetDefault("sample_restaurants", 5)
	v.SetDefault("storage", StorageMemory)
	v.SetDefault("kafka_broker_list", "localhost:9092")
	v.SetDefault("export.destination", "local")
	v.SetDefault("export.path", "exports")
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	return DecodeConfig(v)
}

// DecodeConfig unmarshals whatever v currently holds and validates it.
func DecodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (cfg *Config) Validate() error {
	var errs []error
	if cfg.PlacesRadiusMeters <= 0 {
		errs = append(errs, fmt.Errorf("places_radius_meters must be positive, got %v", cfg.PlacesRadiusMeters))
	}
	if cfg.PlacesMaxResults < 1 || cfg.PlacesMaxResults > 20 {
		errs = append(errs, fmt.Errorf("places_max_results must be in [1,20], got %d", cfg.PlacesMaxResults))
	}
	if cfg.PlacesTimeout <= 0 || cfg.RecommendationTimeout <= 0 {
		errs = append(errs, errors.New("external call timeouts must be positive"))
	}
	if cfg.AnimationDuration < 0 {
		errs = append(errs, errors.New("animation_duration must not be negative"))
	}
	if cfg.SessionTTL < 0 {
		errs = append(errs, errors.New("session_ttl must not be negative"))
	}
	if cfg.PointerDegrees < 0 || cfg.PointerDegrees >= 360 {
		errs = append(errs, fmt.Errorf("pointer_degrees must be in [0,360), got %v", cfg.PointerDegrees))
	}
	if !(Location{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng}).Valid() {
		errs = append(errs, fmt.Errorf("default location %v,%v is not a coordinate", cfg.DefaultLat, cfg.DefaultLng))
	}
	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("database_url is required when storage is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", cfg.Storage))
	}
	if cfg.KafkaEnabled && strings.TrimSpace(cfg.KafkaBrokerList) == "" {
		errs = append(errs, errors.New("kafka_broker_list is required when kafka is enabled"))
	}
	switch cfg.Export.Destination {
	case "local", "":
	case "s3":
		if cfg.Export.Bucket == "" {
			errs = append(errs, errors.New("export.bucket is required for s3 exports"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported export destination: %s", cfg.Export.Destination))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (cfg *Config) DefaultLocation() Location {
	return Location{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng}
}
