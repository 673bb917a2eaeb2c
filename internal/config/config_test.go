package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		ListenAddr:  ":9090",
		BaseDir:     "/home/user/.local/share/filedepot",
		LogDir:      "/home/user/.local/share/filedepot/log",
		CORSOrigins: []string{"http://localhost:3000"},
		Database:    DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/filedepot/db"},
		Blob:        BlobConfig{Type: "s3", S3Bucket: "depot-bucket", S3Prefix: "files/", S3Region: "eu-west-1"},
		Encryption:  EncryptionConfig{Type: "age", KeyPath: "/home/user/.local/share/filedepot/keys/depot.key"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.ListenAddr != original.ListenAddr {
		t.Errorf("ListenAddr = %q, want %q", got.ListenAddr, original.ListenAddr)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if len(got.CORSOrigins) != 1 || got.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %v, want %v", got.CORSOrigins, original.CORSOrigins)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
	if got.Blob.Type != "s3" {
		t.Errorf("Blob.Type = %q, want %q", got.Blob.Type, "s3")
	}
	if got.Blob.S3Bucket != "depot-bucket" {
		t.Errorf("Blob.S3Bucket = %q, want %q", got.Blob.S3Bucket, "depot-bucket")
	}
	if got.Encryption.Type != "age" {
		t.Errorf("Encryption.Type = %q, want %q", got.Encryption.Type, "age")
	}
	if got.Encryption.KeyPath != original.Encryption.KeyPath {
		t.Errorf("Encryption.KeyPath = %q, want %q", got.Encryption.KeyPath, original.Encryption.KeyPath)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/depot")

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":8080")
	}
	if cfg.LogDir != "/data/depot/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/depot/log")
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
	if cfg.Database.DataDir != "/data/depot/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/depot/db")
	}
	if cfg.Blob.Type != "filesystem" {
		t.Errorf("Blob.Type = %q, want %q", cfg.Blob.Type, "filesystem")
	}
	if cfg.Blob.Root != "/data/depot/blobs" {
		t.Errorf("Blob.Root = %q, want %q", cfg.Blob.Root, "/data/depot/blobs")
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want %q", cfg.Encryption.Type, "none")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "filedepot.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "filedepot.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "filedepot.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/filedepot.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestGetDefaults(t *testing.T) {
	t.Run("uses environment overrides", func(t *testing.T) {
		t.Setenv("DEPOT_CONFIG_PATH", "/custom/filedepot.toml")
		t.Setenv("DEPOT_HOME", "/custom/depot")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["config_path"] != "/custom/filedepot.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/filedepot.toml")
		}
		if defaults["base_dir"] != "/custom/depot" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/depot")
		}
		if defaults["log_dir"] != "/custom/depot/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/depot/log")
		}
	})

	t.Run("falls back to home directory", func(t *testing.T) {
		t.Setenv("DEPOT_CONFIG_PATH", "")
		t.Setenv("DEPOT_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()
		want := filepath.Join(homeDir, ".config", "filedepot.toml")
		if defaults["config_path"] != want {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], want)
		}
	})
}
