package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for filedepot.
type Config struct {
	ListenAddr  string           `toml:"listen_addr"`
	BaseDir     string           `toml:"base_dir"`
	LogDir      string           `toml:"log_dir"`
	CORSOrigins []string         `toml:"cors_origins"`
	Database    DatabaseConfig   `toml:"database"`
	Blob        BlobConfig       `toml:"blob"`
	Encryption  EncryptionConfig `toml:"encryption"`
}

// DatabaseConfig represents configuration for the metadata store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite", "json", "postgres", or "memory"
	DataDir string `toml:"data_dir,omitempty"` // used for type=sqlite and type=json
	URL     string `toml:"url,omitempty"`      // only used for type=postgres
}

// BlobConfig represents configuration for the blob store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type BlobConfig struct {
	Type string `toml:"type"` // "filesystem", "s3", or "memory"

	// Filesystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`
}

// EncryptionConfig controls at-rest encryption of blobs.
type EncryptionConfig struct {
	Type    string `toml:"type"`               // "none" (default) or "age"
	KeyPath string `toml:"key_path,omitempty"` // age identity file, only used for type=age
}

// NewConfig creates a new Config with sensible defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		ListenAddr:  ":8080",
		BaseDir:     baseDir,
		LogDir:      filepath.Join(baseDir, "log"),
		CORSOrigins: []string{"*"},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Blob: BlobConfig{
			Type: "filesystem",
			Root: filepath.Join(baseDir, "blobs"),
		},
		Encryption: EncryptionConfig{
			Type:    "none",
			KeyPath: filepath.Join(baseDir, "keys", "depot.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
