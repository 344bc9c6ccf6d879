package models

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := DecodeConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PlacesTimeout != 10*time.Second || cfg.RecommendationTimeout != 15*time.Second || cfg.AnimationDuration != 3*time.Second {
		t.Errorf("timeouts = %v %v %v", cfg.PlacesTimeout, cfg.RecommendationTimeout, cfg.AnimationDuration)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %v", cfg.SessionTTL)
	}
	if cfg.DefaultLocation() != DefaultLocation {
		t.Errorf("default location = %v", cfg.DefaultLocation())
	}
	if cfg.Storage != StorageMemory || cfg.Export.Destination != "local" || cfg.PointerDegrees != 90 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestDecodeConfigOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("places_timeout", "2s")
	v.Set("export.destination", "s3")
	v.Set("export.bucket", "spins")
	v.Set("output_file_path", "/tmp/events")
	cfg, err := DecodeConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PlacesTimeout != 2*time.Second || cfg.Export.Bucket != "spins" || cfg.OutputFile != "/tmp/events" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"postgres without url", func(c *Config) { c.Storage = StoragePostgres }, "database_url"},
		{"unknown storage", func(c *Config) { c.Storage = "redis" }, "unknown storage"},
		{"negative session ttl", func(c *Config) { c.SessionTTL = -time.Second }, "session_ttl"},
		{"pointer out of range", func(c *Config) { c.PointerDegrees = 360 }, "pointer_degrees"},
		{"bad default location", func(c *Config) { c.DefaultLat = 91 }, "default location"},
		{"too many results", func(c *Config) { c.PlacesMaxResults = 21 }, "places_max_results"},
		{"s3 without bucket", func(c *Config) { c.Export.Destination = "s3" }, "export.bucket"},
		{"kafka without brokers", func(c *Config) { c.KafkaEnabled = true; c.KafkaBrokerList = " " }, "kafka_broker_list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			cfg, err := DecodeConfig(v)
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
