package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAndParseYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  host: db.internal
  port: 5433
lake:
  workers: 8
  retry_delay: 2s
  months: [1, 2, 3]
gcp:
  project_id: ${TEST_CFG_PROJECT:-fallback-project}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DATABASE_HOST", "")
	t.Setenv("DATABASE_PORT", "")
	t.Setenv("LAKE_WORKERS", "")
	t.Setenv("LAKE_RETRY_DELAY", "")
	t.Setenv("LAKE_MONTHS", "")
	t.Setenv("GCP_PROJECT_ID", "")
	t.Setenv("TEST_CFG_PROJECT", "")
	// env wins over the file
	t.Setenv("DATABASE_USER", "override")

	var cfg struct {
		Database struct {
			Host string `env:"DATABASE_HOST" default:"localhost"`
			Port string `env:"DATABASE_PORT" default:"5432"`
			User string `env:"DATABASE_USER" default:"root"`
			DB   string `env:"DATABASE_DB" default:"ny_taxi"`
		}
		Lake struct {
			Workers    int           `env:"LAKE_WORKERS" default:"4"`
			RetryDelay time.Duration `env:"LAKE_RETRY_DELAY" default:"5s"`
			Months     []string      `env:"LAKE_MONTHS"`
		}
		GCP struct {
			ProjectID string `env:"GCP_PROJECT_ID"`
		}
	}

	if err := LoadAndParseYaml(path, &cfg); err != nil {
		t.Fatalf("LoadAndParseYaml: %v", err)
	}

	if cfg.Database.Host != "db.internal" || cfg.Database.Port != "5433" {
		t.Fatalf("database not loaded from file: %+v", cfg.Database)
	}
	if cfg.Database.User != "override" {
		t.Fatalf("env must override file, got %q", cfg.Database.User)
	}
	if cfg.Database.DB != "ny_taxi" {
		t.Fatalf("default not applied, got %q", cfg.Database.DB)
	}
	if cfg.Lake.Workers != 8 || cfg.Lake.RetryDelay != 2*time.Second {
		t.Fatalf("lake not parsed: %+v", cfg.Lake)
	}
	if len(cfg.Lake.Months) != 3 || cfg.Lake.Months[2] != "3" {
		t.Fatalf("list not parsed: %v", cfg.Lake.Months)
	}
	if cfg.GCP.ProjectID != "fallback-project" {
		t.Fatalf("substitution default not applied, got %q", cfg.GCP.ProjectID)
	}
}

func TestLoadAndParseYaml_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")

	var cfg struct {
		ChunkSize int `env:"CHUNK_SIZE" default:"100000"`
	}
	if err := LoadAndParseYaml(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if cfg.ChunkSize != 100000 {
		t.Fatalf("got %d", cfg.ChunkSize)
	}
}

func TestParseEnv_InvalidValue(t *testing.T) {
	t.Setenv("BAD_INT", "many")

	var cfg struct {
		N int `env:"BAD_INT"`
	}
	if err := ParseEnv(&cfg); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := ParseEnv(cfg); err != ErrNotStructPointer {
		t.Fatalf("expected ErrNotStructPointer, got %v", err)
	}
}
