package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
	ResetUs int    `yaml:"reset_us"` // e.g. 300
	Invert  bool   `yaml:"invert"`   // inverting level shifter on the data line
}

type NRZ struct {
	Port string `yaml:"port"` // periph.io SPI port name; "" picks the first
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type Config struct {
	Driver string `yaml:"driver"` // "spi" | "nrz" | "sim"
	FPS    int    `yaml:"fps"`
	Addr   string `yaml:"addr"`

	Dim Dim `yaml:"dim"`
	// Orientation flips are pointers so a partial config file leaves the
	// flag defaults alone; false only applies when written explicitly.
	XFlipEveryRow *bool `yaml:"x_flip_every_row"`
	YFlip         *bool `yaml:"y_flip"`

	SPI SPI `yaml:"spi,omitempty"`
	NRZ NRZ `yaml:"nrz,omitempty"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
