package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds ingestion pipeline settings.
type Config struct {
	Paths      []string `yaml:"paths"       env:"INGEST_PATHS"       env-separator:","`
	Extensions []string `yaml:"extensions"  env:"INGEST_EXTENSIONS"  env-separator:"," env-default:".txt,.md"`
	Source     string   `yaml:"source"      env:"INGEST_SOURCE"`
	LimitFiles int      `yaml:"limit_files" env:"INGEST_LIMIT_FILES"`
	MaxBytes   int64    `yaml:"max_bytes"   env:"INGEST_MAX_BYTES"   env-default:"10485760"`
	DryRun     bool     `yaml:"dry_run"     env:"INGEST_DRY_RUN"`

	// Splitter settings used for dry-run chunk counts; copied from the app config.
	ChunkSize    int `yaml:"-"`
	ChunkOverlap int `yaml:"-"`
}

// LoadConfig reads ingestion configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("ingest config: file %s not found", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("ingest config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ingest config: read env: %w", err)
	}

	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	if cfg.LimitFiles < 0 {
		return nil, fmt.Errorf("ingest config: limit_files must be >= 0 (got %d)", cfg.LimitFiles)
	}
	return &cfg, nil
}
