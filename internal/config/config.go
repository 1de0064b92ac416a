package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port                   int      `yaml:"port"`
	CorsOrigins            []string `yaml:"cors_origins"`
	ArtifactDir            string   `yaml:"artifact_dir"`
	ProviderTimeoutSeconds int      `yaml:"provider_timeout_seconds"`
}

func Default() Config {
	return Config{
		Port: 8000,
		CorsOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		ArtifactDir:            "irt_assets/20251016_192706",
		ProviderTimeoutSeconds: 15,
	}
}

// ProviderTimeout bounds each market-data provider round trip.
func (c Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := os.Getenv("FINFLOW_ARTIFACT_DIR"); v != "" {
		c.ArtifactDir = v
	}
	if v := os.Getenv("FINFLOW_CORS_ORIGINS"); v != "" {
		c.CorsOrigins = strings.Split(v, ",")
	}
	if strings.EqualFold(os.Getenv("FINFLOW_ENV"), "production") {
		c.CorsOrigins = append(c.CorsOrigins,
			"https://finflow.reo91004.com",
			"https://www.finflow.reo91004.com",
		)
	}
}
