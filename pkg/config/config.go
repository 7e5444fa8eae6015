package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListen            = ":5000"
	DefaultLinkCheckInterval = 5 * time.Minute
)

// ErrMissingSetting is returned when a required setting has no value.
var ErrMissingSetting = errors.New("config: missing required setting")

// Admin holds the single administrator credential.
type Admin struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
}

type LinkCheck struct {
	Disabled bool          `yaml:"disabled"`
	Interval time.Duration `yaml:"interval"`
}

// Server is the configuration of crocodash serve. An empty Database keeps
// items in memory.
type Server struct {
	Listen    string    `yaml:"listen"`
	BasePath  string    `yaml:"base_path"`
	Database  string    `yaml:"database"`
	Seed      string    `yaml:"seed"`
	Title     string    `yaml:"title"`
	Debug     bool      `yaml:"debug"`
	Admin     Admin     `yaml:"admin"`
	LinkCheck LinkCheck `yaml:"link_check"`
}

func Default() Server {
	return Server{
		Listen:    DefaultListen,
		Title:     "Croco Dashboard",
		LinkCheck: LinkCheck{Interval: DefaultLinkCheckInterval},
	}
}

// Load reads path over the defaults. A blank path returns the defaults.
func Load(path string) (Server, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Server{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals YAML into cfg, rejecting unknown keys.
func Decode(data []byte, cfg *Server) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Merge returns cfg with every non-zero field of override applied.
func (cfg Server) Merge(override Server) Server {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Listen, override.Listen)
	set(&cfg.BasePath, override.BasePath)
	set(&cfg.Database, override.Database)
	set(&cfg.Seed, override.Seed)
	set(&cfg.Title, override.Title)
	set(&cfg.Admin.Username, override.Admin.Username)
	set(&cfg.Admin.Password, override.Admin.Password)
	set(&cfg.Admin.Token, override.Admin.Token)
	if override.Debug {
		cfg.Debug = true
	}
	if override.LinkCheck.Disabled {
		cfg.LinkCheck.Disabled = true
	}
	if override.LinkCheck.Interval > 0 {
		cfg.LinkCheck.Interval = override.LinkCheck.Interval
	}
	return cfg
}

// Validate fails fast on missing admin credentials, naming the environment
// variable that supplies each one.
func (cfg Server) Validate() error {
	required := []struct {
		env   string
		value string
	}{
		{"ADMIN_USERNAME", cfg.Admin.Username},
		{"ADMIN_PASSWORD", cfg.Admin.Password},
		{"ADMIN_TOKEN", cfg.Admin.Token},
	}
	var errs []error
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSetting, r.env))
		}
	}
	if strings.TrimSpace(cfg.Listen) == "" {
		errs = append(errs, fmt.Errorf("%w: listen", ErrMissingSetting))
	}
	return errors.Join(errs...)
}
