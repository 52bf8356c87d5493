// Package config holds the dispenser machine profile: the reachable print
// surface, the extruder to output-port assignments and the serial link
// settings used when uploading a converted program.
package config

import (
	"encoding/json"

	"fisnar/common/file"

	"github.com/spf13/viper"
)

type SurfaceConfig struct {
	XMin float64 `mapstructure:"x_min" json:"x_min"`
	XMax float64 `mapstructure:"x_max" json:"x_max"`
	YMin float64 `mapstructure:"y_min" json:"y_min"`
	YMax float64 `mapstructure:"y_max" json:"y_max"`
	ZMax float64 `mapstructure:"z_max" json:"z_max"`
}

type SerialConfig struct {
	Port string `mapstructure:"port" json:"port"`
	Baud int    `mapstructure:"baud" json:"baud"`
}

type Config struct {
	Surface SurfaceConfig `mapstructure:"print_surface" json:"print_surface"`

	// ExtruderOutputs maps extruder 1..4 to an output port 1..4; a zero
	// entry means the output has not been assigned.
	ExtruderOutputs []int `mapstructure:"extruder_outputs" json:"extruder_outputs"`

	IOCard              bool `mapstructure:"io_card" json:"io_card"`
	ContinuousExtrusion bool `mapstructure:"continuous_extrusion" json:"continuous_extrusion"`

	Serial SerialConfig `mapstructure:"serial" json:"serial"`
}

// Defaults mirrors the stock Fisnar F5200N.1 setup: a 200x200x100 reachable
// volume and extruders wired to outputs in order.
func Defaults() Config {
	return Config{
		Surface: SurfaceConfig{
			XMin: 0,
			XMax: 200,
			YMin: 0,
			YMax: 200,
			ZMax: 100,
		},
		ExtruderOutputs:     []int{1, 2, 3, 4},
		IOCard:              true,
		ContinuousExtrusion: false,
		Serial: SerialConfig{
			Port: "/dev/ttyUSB0",
			Baud: 115200,
		},
	}
}

// Load reads the profile at path, falling back to Defaults for any key the
// file does not set. An empty path returns Defaults unchanged.
func Load(path string) (Config, error) {
	defaults := Defaults()
	if path == "" {
		return defaults, nil
	}

	v := viper.New()
	v.SetDefault("print_surface.x_min", defaults.Surface.XMin)
	v.SetDefault("print_surface.x_max", defaults.Surface.XMax)
	v.SetDefault("print_surface.y_min", defaults.Surface.YMin)
	v.SetDefault("print_surface.y_max", defaults.Surface.YMax)
	v.SetDefault("print_surface.z_max", defaults.Surface.ZMax)
	v.SetDefault("extruder_outputs", defaults.ExtruderOutputs)
	v.SetDefault("io_card", defaults.IOCard)
	v.SetDefault("continuous_extrusion", defaults.ContinuousExtrusion)
	v.SetDefault("serial.port", defaults.Serial.Port)
	v.SetDefault("serial.baud", defaults.Serial.Baud)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return defaults, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaults, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	d, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return err
	}

	return file.WriteFileWithSync(path, d)
}
