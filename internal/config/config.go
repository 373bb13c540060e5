// Package config handles user configuration for bookchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const configDirName = ".bookchat"

// MarkdownConfig configures markdown rendering of bot answers
type MarkdownConfig struct {
	Style            string `json:"style"`              // glamour style name or path to JSON style
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Keep line breaks of the answer
	TableWrap        bool   `json:"table_wrap"`         // Word wrap inside table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration. Client keys drive the chat
// commands, server keys drive "bookchat serve".
type Config struct {
	// ServerURL is the base URL of the backend the client talks to.
	ServerURL string `json:"server_url"`

	// BooksDir is the folder scanned for .txt books by POST /load.
	BooksDir string `json:"books_dir"`
	// DBPath is the bbolt file holding chunks and their vectors.
	DBPath string `json:"db_path"`
	// OllamaHost is the Ollama endpoint used for embeddings and answers.
	OllamaHost string `json:"ollama_host"`
	EmbedModel string `json:"embed_model"`
	ChatModel  string `json:"chat_model"`
	// ListenAddr is the address "bookchat serve" binds to.
	ListenAddr string `json:"listen_addr"`
	// SearchLimit is the number of chunks handed to the model per question.
	SearchLimit int `json:"search_limit"`

	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		ServerURL:       "http://localhost:8090",
		BooksDir:        "libros",
		DBPath:          filepath.Join(homeDir, configDirName, "books.db"),
		OllamaHost:      "http://localhost:11434",
		EmbedModel:      "nomic-embed-text",
		ChatModel:       "llama3.2",
		ListenAddr:      ":8090",
		SearchLimit:     20,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path of the client debug log
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "bookchat.log"), nil
}

// LoadConfig loads the configuration from disk. A missing file yields the
// defaults. Environment overrides are not applied here, see ApplyEnv.
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return loadFile(configPath)
}

func loadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Environment variables that override the config file
const (
	EnvServer   = "BOOKCHAT_SERVER"
	EnvBooksDir = "BOOKCHAT_BOOKS_DIR"
	EnvOllama   = "OLLAMA_HOST"
	EnvGlamour  = "GLAMOUR_STYLE"
)

// ApplyEnv overrides config values with the environment variables that are set
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvServer); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(EnvBooksDir); v != "" {
		c.BooksDir = v
	}
	if v := os.Getenv(EnvOllama); v != "" {
		c.OllamaHost = v
	}
	if v := os.Getenv(EnvGlamour); v != "" {
		c.Markdown.Style = v
	}
}
