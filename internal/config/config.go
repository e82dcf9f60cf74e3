package config

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/reconcile"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vtree.yaml"

	// DefaultPreviewAddr is the default preview server address.
	DefaultPreviewAddr = "localhost:7070"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "vtree"

	// DefaultSnapshotDir is the default directory of the file snapshot store.
	DefaultSnapshotDir = ".vtree/snapshots"

	// Snapshot store kinds.
	StoreFile = "file"
	StoreS3   = "s3"
)

// Config represents the complete vtree.yaml configuration.
type Config struct {
	// Reconcile contains reconciler settings.
	Reconcile ReconcileConfig `yaml:"reconcile,omitempty"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Preview contains preview server settings.
	Preview PreviewConfig `yaml:"preview,omitempty"`

	// Snapshot contains snapshot store settings.
	Snapshot SnapshotConfig `yaml:"snapshot,omitempty"`

	configPath string
}

// ReconcileConfig configures the property-setting protocol.
type ReconcileConfig struct {
	// PropPolicy is "legacy" or "strict".
	PropPolicy string `yaml:"propPolicy,omitempty"`

	// EventPrefix marks props that register event listeners.
	EventPrefix string `yaml:"eventPrefix,omitempty"`

	// ClassProp is written through the ClassAttr attribute.
	ClassProp string `yaml:"classProp,omitempty"`
	ClassAttr string `yaml:"classAttr,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Namespace string `yaml:"namespace,omitempty"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	// Addr is the listen address (host:port).
	Addr string `yaml:"addr,omitempty"`
}

// SnapshotConfig selects and configures the snapshot store.
type SnapshotConfig struct {
	// Store is "file" or "s3".
	Store string `yaml:"store,omitempty"`

	// Dir is the directory of the file store.
	Dir string `yaml:"dir,omitempty"`

	S3 S3Config `yaml:"s3,omitempty"`
}

// S3Config configures the S3 snapshot store.
type S3Config struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"pathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads vtree.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadOrDefault reads vtree.yaml from dir, or returns the defaults if the
// file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigParse).
				WithSubject(path).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config")
		}
		return nil, errors.New(errors.CodeConfigParse).WithSubject(path).Wrap(err)
	}

	cfg := &Config{}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithSubject(path).
			WithDetail(yaml.FormatError(err, false, true)).
			WithSuggestion("Check that " + ConfigFileName + " is valid YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigParse).WithSubject(path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Reconcile.PropPolicy == "" {
		c.Reconcile.PropPolicy = reconcile.PolicyLegacy.String()
	}
	if c.Reconcile.EventPrefix == "" {
		c.Reconcile.EventPrefix = "on"
	}
	if c.Reconcile.ClassProp == "" {
		c.Reconcile.ClassProp = "className"
	}
	if c.Reconcile.ClassAttr == "" {
		c.Reconcile.ClassAttr = "class"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Preview.Addr == "" {
		c.Preview.Addr = DefaultPreviewAddr
	}
	if c.Snapshot.Store == "" {
		c.Snapshot.Store = StoreFile
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := reconcile.ParsePolicy(c.Reconcile.PropPolicy); err != nil {
		return invalid("reconcile.propPolicy", err.Error())
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level", err.Error())
	}
	if _, _, err := net.SplitHostPort(c.Preview.Addr); err != nil {
		return invalid("preview.addr", "Address must be host:port")
	}
	switch c.Snapshot.Store {
	case StoreFile:
	case StoreS3:
		if c.Snapshot.S3.Bucket == "" {
			return invalid("snapshot.s3.bucket", "The s3 store needs a bucket")
		}
	default:
		return invalid("snapshot.store", "Store must be file or s3")
	}
	return nil
}

func invalid(field, detail string) error {
	return errors.New(errors.CodeConfigInvalid).WithSubject(field).WithDetail(detail)
}

// ReconcileOptions returns the reconciler options described by the
// configuration. It assumes Validate succeeded.
func (c *Config) ReconcileOptions() []reconcile.Option {
	policy, _ := reconcile.ParsePolicy(c.Reconcile.PropPolicy)
	return []reconcile.Option{
		reconcile.WithPropPolicy(policy),
		reconcile.WithEventPrefix(c.Reconcile.EventPrefix),
		reconcile.WithClassProp(c.Reconcile.ClassProp, c.Reconcile.ClassAttr),
	}
}

// LogLevel returns the configured slog level, or info if it is invalid.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	return level, err
}

// SnapshotDir returns the absolute path of the file store directory.
func (c *Config) SnapshotDir() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// vtree.yaml.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigParse).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the configuration of the enclosing project, or
// the defaults if there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}
