// Package config reads and writes the sketchmap configuration file.
package config

import (
	"errors"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the contents of the configuration file.
type Config struct {
	Database string        `yaml:"database"`
	World    string        `yaml:"world"`
	Interval time.Duration `yaml:"interval"`
	Colors   int           `yaml:"colors"`
	Workers  int           `yaml:"workers"`
}

// Default is used for anything missing from the file.
var Default = Config{
	Database: "sketchmap.db",
	World:    "world",
	Interval: time.Second,
	Colors:   0,
	Workers:  4,
}

// Read returns the configuration in filePath. A missing file yields Default.
func Read(filePath string) (Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default, nil
		}
		return Config{}, err
	}
	defer file.Close()

	cfg := Default
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	return cfg, nil
}

// Write replaces the configuration in filePath with cfg.
func Write(filePath string, cfg Config) error {
	filePathTmp := filePath + ".tmp"
	file, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := yaml.NewEncoder(file).Encode(cfg); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(filePathTmp, filePath)
}
