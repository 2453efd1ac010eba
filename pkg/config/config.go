package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/classify"
	"github.com/pseudomuto/pgtidy/pkg/consts"
	"github.com/pseudomuto/pgtidy/pkg/organize"
	"github.com/pseudomuto/pgtidy/pkg/splitter"
	"gopkg.in/yaml.v3"
)

type (
	// Patch configures the guard pass run by the patch command.
	Patch struct {
		// Files lists the migrations to patch, relative to MigrationsDir
		Files []string `yaml:"files,omitempty"`
	}

	// Reorganize configures the reorganize command.
	Reorganize struct {
		// Input is the consolidated script to regroup
		Input string `yaml:"input,omitempty"`

		// Output is where the regrouped script is written
		Output string `yaml:"output,omitempty"`

		// Order is a preset name ("canonical", "legacy") or a list of categories
		Order OrderSetting `yaml:"order,omitempty"`

		// SkipComments classifies statements by their first non-comment line
		SkipComments bool `yaml:"skip_comments,omitempty"`
	}

	// Splitter configures statement splitting.
	Splitter struct {
		Terminator  string `yaml:"terminator,omitempty"`
		BlockMarker string `yaml:"block_marker,omitempty"`
	}

	// OrderSetting holds either a preset name or an explicit category list.
	OrderSetting struct {
		Preset     string
		Categories []string
	}

	// Config represents the pgtidy.yaml project configuration.
	Config struct {
		// MigrationsDir is the directory holding the migration files
		MigrationsDir string `yaml:"migrations_dir,omitempty"`

		Patch      Patch      `yaml:"patch,omitempty"`
		Reorganize Reorganize `yaml:"reorganize,omitempty"`
		Splitter   Splitter   `yaml:"splitter,omitempty"`
	}
)

// Defaults returns the configuration used when pgtidy.yaml does not exist.
func Defaults() *Config {
	cfg := new(Config)
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses a configuration from r and fills in defaults for every
// missing key. An empty document yields the defaults.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`
//	migrations_dir: db/migrations
//	reorganize:
//	  order: legacy
//	`))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(cfg.MigrationsDir, cfg.Reorganize.Order.Preset)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()

	if _, err := cfg.Order(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigFile loads a configuration from the specified file path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// LoadConfigFileOrDefaults loads path if it exists and returns Defaults
// otherwise.
func LoadConfigFileOrDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Defaults(), nil
	}

	return LoadConfigFile(path)
}

// Order resolves the configured section order.
func (c *Config) Order() (organize.Order, error) {
	if len(c.Reorganize.Order.Categories) > 0 {
		return organize.ParseOrder(c.Reorganize.Order.Categories)
	}

	order, err := organize.OrderByName(c.Reorganize.Order.Preset)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order")
	}

	return order, nil
}

// Classifier returns the statement classifier for reorganize and classify.
func (c *Config) Classifier() *classify.Classifier {
	if c.Reorganize.SkipComments {
		return classify.Default.SkipComments()
	}

	return classify.Default
}

// SplitterOptions returns the statement splitting options.
func (c *Config) SplitterOptions() splitter.Options {
	return splitter.Options{
		Terminator:  c.Splitter.Terminator,
		BlockMarker: c.Splitter.BlockMarker,
	}
}

// PatchFiles returns the patch list resolved against MigrationsDir. Absolute
// entries are kept as they are.
func (c *Config) PatchFiles() []string {
	return c.ResolveMigrations(c.Patch.Files...)
}

// ResolveMigrations resolves names against MigrationsDir. Absolute paths are
// returned unchanged.
func (c *Config) ResolveMigrations(names ...string) []string {
	paths := make([]string, len(names))
	for i, name := range names {
		if filepath.IsAbs(name) {
			paths[i] = name
			continue
		}

		paths[i] = filepath.Join(c.MigrationsDir, name)
	}

	return paths
}

func (c *Config) applyDefaults() {
	if c.MigrationsDir == "" {
		c.MigrationsDir = consts.DefaultMigrationsDir
	}
	if len(c.Patch.Files) == 0 {
		c.Patch.Files = consts.DefaultPatchFiles()
	}
	if c.Reorganize.Input == "" {
		c.Reorganize.Input = consts.DefaultReorganizeInput
	}
	if c.Reorganize.Output == "" {
		c.Reorganize.Output = consts.DefaultReorganizeOutput
	}
	if c.Reorganize.Order.Preset == "" && len(c.Reorganize.Order.Categories) == 0 {
		c.Reorganize.Order.Preset = consts.DefaultOrder
	}
	if c.Splitter.Terminator == "" {
		c.Splitter.Terminator = consts.DefaultTerminator
	}
	if c.Splitter.BlockMarker == "" {
		c.Splitter.BlockMarker = consts.DefaultBlockMarker
	}
}

// UnmarshalYAML accepts a scalar preset name or a sequence of categories.
func (o *OrderSetting) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		o.Categories = nil
		return value.Decode(&o.Preset)
	case yaml.SequenceNode:
		o.Preset = ""
		return value.Decode(&o.Categories)
	default:
		return errors.Errorf("line %d: order must be a preset name or a list of categories", value.Line)
	}
}

// MarshalYAML writes the preset name, or the category list when one is set.
func (o OrderSetting) MarshalYAML() (any, error) {
	if len(o.Categories) > 0 {
		return slices.Clone(o.Categories), nil
	}

	return o.Preset, nil
}

// IsZero lets omitempty skip an unset order.
func (o OrderSetting) IsZero() bool {
	return o.Preset == "" && len(o.Categories) == 0
}
