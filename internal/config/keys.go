package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	apierrors "github.com/diogo/bookchat/internal/errors"
)

// key binds a dotted config key to the field it edits
type key struct {
	name string
	get  func(c *Config) string
	set  func(c *Config, v string) error
}

var keys = []key{
	{"server_url", func(c *Config) string { return c.ServerURL }, setURL(func(c *Config) *string { return &c.ServerURL })},
	{"books_dir", func(c *Config) string { return c.BooksDir }, setString(func(c *Config) *string { return &c.BooksDir })},
	{"db_path", func(c *Config) string { return c.DBPath }, setString(func(c *Config) *string { return &c.DBPath })},
	{"ollama_host", func(c *Config) string { return c.OllamaHost }, setURL(func(c *Config) *string { return &c.OllamaHost })},
	{"embed_model", func(c *Config) string { return c.EmbedModel }, setString(func(c *Config) *string { return &c.EmbedModel })},
	{"chat_model", func(c *Config) string { return c.ChatModel }, setString(func(c *Config) *string { return &c.ChatModel })},
	{"listen_addr", func(c *Config) string { return c.ListenAddr }, setString(func(c *Config) *string { return &c.ListenAddr })},
	{"search_limit", func(c *Config) string { return strconv.Itoa(c.SearchLimit) }, setPositive(func(c *Config) *int { return &c.SearchLimit })},
	{"verbose", func(c *Config) string { return strconv.FormatBool(c.Verbose) }, setBool(func(c *Config) *bool { return &c.Verbose })},
	{"copy_to_clipboard", func(c *Config) string { return strconv.FormatBool(c.CopyToClipboard) }, setBool(func(c *Config) *bool { return &c.CopyToClipboard })},
	{"tui_theme", func(c *Config) string { return c.TUITheme }, setString(func(c *Config) *string { return &c.TUITheme })},
	{"markdown.style", func(c *Config) string { return c.Markdown.Style }, setString(func(c *Config) *string { return &c.Markdown.Style })},
	{"markdown.enable_emoji", func(c *Config) string { return strconv.FormatBool(c.Markdown.EnableEmoji) }, setBool(func(c *Config) *bool { return &c.Markdown.EnableEmoji })},
	{"markdown.preserve_newlines", func(c *Config) string { return strconv.FormatBool(c.Markdown.PreserveNewLines) }, setBool(func(c *Config) *bool { return &c.Markdown.PreserveNewLines })},
	{"markdown.table_wrap", func(c *Config) string { return strconv.FormatBool(c.Markdown.TableWrap) }, setBool(func(c *Config) *bool { return &c.Markdown.TableWrap })},
	{"markdown.inline_table_links", func(c *Config) string { return strconv.FormatBool(c.Markdown.InlineTableLinks) }, setBool(func(c *Config) *bool { return &c.Markdown.InlineTableLinks })},
}

// Keys returns every key accepted by Get and Set, in display order
func Keys() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

func lookup(name string) (key, error) {
	i := slices.IndexFunc(keys, func(k key) bool { return k.name == name })
	if i < 0 {
		return key{}, apierrors.NewConfigError(name, "unknown key (valid: "+strings.Join(Keys(), ", ")+")")
	}
	return keys[i], nil
}

// Get returns the string form of a config value
func (c *Config) Get(name string) (string, error) {
	k, err := lookup(name)
	if err != nil {
		return "", err
	}
	return k.get(c), nil
}

// Set parses and stores a config value. The config is left unchanged when
// the value does not validate.
func (c *Config) Set(name, value string) error {
	k, err := lookup(name)
	if err != nil {
		return err
	}
	if err := k.set(c, strings.TrimSpace(value)); err != nil {
		return apierrors.NewConfigError(name, err.Error())
	}
	return nil
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		if v == "" {
			return fmt.Errorf("value cannot be empty")
		}
		*field(c) = v
		return nil
	}
}

func setURL(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		u, err := url.Parse(v)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%q is not an http(s) URL", v)
		}
		*field(c) = strings.TrimRight(v, "/")
		return nil
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", v)
		}
		*field(c) = b
		return nil
	}
}

func setPositive(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%q is not a positive integer", v)
		}
		*field(c) = n
		return nil
	}
}
