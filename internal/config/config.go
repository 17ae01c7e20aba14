// Package config handles batch preprocessor configuration.
package config

import "errors"

// Config holds all batch settings.
type Config struct {
	InputFolder       string        `yaml:"input_folder"`
	OutputFolder      string        `yaml:"output_folder"`
	TargetVertexCount int           `yaml:"target_vertex_count"`
	Render            RenderConfig  `yaml:"render"`
	Export            ExportConfig  `yaml:"export"`
	Logging           LoggingConfig `yaml:"logging"`
}

// RenderConfig holds the fixed camera shot parameters.
type RenderConfig struct {
	Angle       float64 `yaml:"angle"`    // degrees around the origin
	Distance    float64 `yaml:"distance"` // camera distance from origin
	Height      float64 `yaml:"height"`   // camera height above ground
	ImageWidth  int     `yaml:"image_width"`
	ImageHeight int     `yaml:"image_height"`
}

// ExportConfig holds JSON artifact settings.
type ExportConfig struct {
	// Name overrides the "n" field of every artifact with a fixed
	// literal. Empty means: use each asset's base filename.
	Name string `yaml:"name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the reference batch settings.
func Default() *Config {
	return &Config{
		OutputFolder:      "processed_models",
		TargetVertexCount: 2000,
		Render: RenderConfig{
			Angle:       45,
			Distance:    5,
			Height:      2,
			ImageWidth:  1024,
			ImageHeight: 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports configuration a batch run cannot start with.
func (c *Config) Validate() error {
	if c.InputFolder == "" {
		return errors.New("input_folder is required")
	}
	if c.OutputFolder == "" {
		return errors.New("output_folder is required")
	}
	if c.TargetVertexCount <= 0 {
		return errors.New("target_vertex_count must be positive")
	}
	return nil
}
