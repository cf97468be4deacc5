package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "release" || cfg.Server.Addr != ":8080" || cfg.Storage.Driver != "file" || cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Location() != time.Local {
		t.Error("Local time zone expected")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
mode: dev
timezone: Asia/Seoul
server:
  addr: ":9000"
  cors_origins: ["http://localhost:5173"]
storage:
  driver: mysql
  database:
    host: 127.0.0.1
    port: 3306
    user: care
    password: from-file
    dbname: care
auth:
  enabled: true
  token_ttl: 2h
report:
  currency: "원"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CARE_DB_PASSWORD", "from-env")
	t.Setenv("CARE_AUTH_ENABLED", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "dev" || cfg.Server.Addr != ":9000" || len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Storage.Driver != "mysql" || cfg.Storage.Database.Port != 3306 {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Database.Password != "from-env" {
		t.Errorf("password = %q, env should win", cfg.Storage.Database.Password)
	}
	if cfg.Auth.Enabled || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Report.Locale != "ko" || cfg.Report.Currency != "원" {
		t.Errorf("report = %+v", cfg.Report)
	}
	if cfg.Location().String() != "Asia/Seoul" {
		t.Errorf("location = %s", cfg.Location())
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
