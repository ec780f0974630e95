// Package config loads the user configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/flowchart/config.toml
// (~/.config/flowchart/config.toml when XDG_CONFIG_HOME is unset). A missing
// default file is not an error; every field has a default.
//
//	[editor]
//	debounce = "1s"
//	id_policy = "monotonic"    # monotonic | max | last
//	legacy_edge_labels = false
//
//	[export]
//	dir = "."
//	filename = "aira.drawio"
//
//	[drafts]
//	backend = "file"           # file | redis | mongo | none
//	ttl = "720h"
//	autosave = "2s"            # "0s" disables autosave
//
//	[server]
//	addr = "127.0.0.1:8080"
//
//	[render]
//	cache = true
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowchart/pkg/debounce"
	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/session"
)

// Draft backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

var backends = []string{BackendFile, BackendRedis, BackendMongo, BackendNone}

// Config is the whole configuration file.
type Config struct {
	Editor Editor `toml:"editor"`
	Export Export `toml:"export"`
	Drafts Drafts `toml:"drafts"`
	Server Server `toml:"server"`
	Render Render `toml:"render"`
}

// Editor configures label editing and the store.
type Editor struct {
	Debounce         time.Duration `toml:"debounce"`
	IDPolicy         string        `toml:"id_policy"`
	LegacyEdgeLabels bool          `toml:"legacy_edge_labels"`
}

// Export configures the export file.
type Export struct {
	Dir      string `toml:"dir"`
	Filename string `toml:"filename"`
}

// Drafts configures draft persistence.
type Drafts struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	TTL           time.Duration `toml:"ttl"`
	Autosave      time.Duration `toml:"autosave"`
}

// Server configures `flowchart serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Render configures `flowchart render`.
type Render struct {
	Cache bool `toml:"cache"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Editor: Editor{Debounce: debounce.DefaultWait, IDPolicy: string(diagram.IDMonotonic)},
		Export: Export{Dir: ".", Filename: fio.Filename},
		Drafts: Drafts{
			Backend:       BackendFile,
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: session.DefaultMongoDatabase,
			TTL:           session.DefaultTTL,
			Autosave:      session.DefaultAutosaveWait,
		},
		Server: Server{Addr: "127.0.0.1:8080"},
		Render: Render{Cache: true},
	}
}

// Dir returns the flowchart configuration directory.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flowchart"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "flowchart"), nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path loads the
// default file if it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Read decodes TOML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Editor.Debounce < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "editor.debounce must not be negative")
	}
	if _, err := diagram.ParseIDPolicy(c.Editor.IDPolicy); err != nil {
		return err
	}
	if err := errors.ValidateFilename(c.Export.Filename); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "export.filename")
	}
	if !slices.Contains(backends, c.Drafts.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "drafts.backend %q (must be one of %s)", c.Drafts.Backend, strings.Join(backends, ", "))
	}
	return nil
}

// StoreOptions returns the diagram store options selected by the editor
// section.
func (c Config) StoreOptions() []diagram.Option {
	policy, _ := diagram.ParseIDPolicy(c.Editor.IDPolicy)
	opts := []diagram.Option{diagram.WithIDPolicy(policy)}
	if c.Editor.LegacyEdgeLabels {
		opts = append(opts, diagram.WithEdgeStyle(diagram.EdgeStyleLegacyReset))
	}
	return opts
}
