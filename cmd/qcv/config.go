package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the viewer settings. A qcv.toml next to the binary or under
// the user config directory overrides the defaults.
type Config struct {
	LogFile  string `toml:"log_file"`
	SaveName string `toml:"save_name"`

	Colors struct {
		Circuit  string `toml:"circuit"`
		QASM     string `toml:"qasm"`
		Controls string `toml:"controls"`
		Accent   string `toml:"accent"`
		Gate     string `toml:"gate"`
		Label    string `toml:"label"`
		Dim      string `toml:"dim"`
	} `toml:"colors"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.LogFile = "qcv.log"
	cfg.SaveName = "circuit.qasm"
	cfg.Colors.Circuit = "#7aa2f7"
	cfg.Colors.QASM = "#bb9af7"
	cfg.Colors.Controls = "#9ece6a"
	cfg.Colors.Accent = "#ff9e64"
	cfg.Colors.Gate = "#73daca"
	cfg.Colors.Label = "#7dcfff"
	cfg.Colors.Dim = "#565f89"
	return cfg
}

func loadConfig() Config {
	cfg := defaultConfig()
	for _, path := range configPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(path, &cfg); err == nil {
			break
		}
	}
	return cfg
}

func configPaths() []string {
	paths := []string{"qcv.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "qcv", "qcv.toml"))
	}
	return paths
}
