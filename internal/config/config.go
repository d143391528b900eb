// Package config defines the process-wide configuration of a sterling data
// server: the storage root, the listen address, the record field widths and
// the per-kind shard counts.
//
// Widths and shard counts are load-bearing constants, not tunables: both
// feed the positional arithmetic that replaces an index, so changing either
// after data exists invalidates every stored record. They are read once at
// process start into an immutable Config that is passed explicitly to the
// codec and the router; nothing in this repository keeps them as globals,
// which also lets tests run several configurations side by side.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mamigot/sterling/internal/record"
	"github.com/mamigot/sterling/internal/shard"
)

// Config is the full configuration of a sterling data server.
type Config struct {
	// Root is the directory holding the shard files.
	Root string `yaml:"root"`

	// Listen is the TCP address the wire protocol server binds to.
	Listen string `yaml:"listen"`

	// Widths are the fixed byte widths of the variable-content record
	// fields.
	Widths record.Widths `yaml:"widths"`

	// Shards are the per-kind shard file counts.
	Shards shard.Counts `yaml:"shards"`
}

// Default returns the configuration the original deployment ran with:
// 20-byte usernames and passwords, 140-byte post text, and shard counts
// spreading the fast-growing post kinds across the most files.
func Default() Config {
	return Config{
		Listen: ":13000",
		Widths: record.Widths{Username: 20, Password: 20, Text: 140},
		Shards: shard.Counts{Credential: 2, ProfilePost: 10, TimelinePost: 10, Relation: 5},
	}
}

// Read decodes a Config from r. Fields absent from the document keep their
// zero values; call Validate before use.
func Read(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	return cfg, nil
}

// Load reads and validates a Config from the file at path. Values not set
// in the file fall back to Default; the storage root has no default and
// must be present.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// withDefaults fills unset fields from Default, leaving Root alone: a
// missing storage root is an error, not a guess.
func (c Config) withDefaults() Config {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Widths == (record.Widths{}) {
		c.Widths = d.Widths
	}
	if c.Shards == (shard.Counts{}) {
		c.Shards = d.Shards
	}
	return c
}

// Validate checks that the configuration can actually route and encode
// records.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("storage root is required")
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if _, err := record.NewCodec(c.Widths); err != nil {
		return err
	}
	if _, err := shard.NewRouter(c.Root, c.Shards); err != nil {
		return err
	}
	return nil
}
