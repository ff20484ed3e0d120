// Package config holds the settings of arc editing.
//
// Settings are read with viper: built-in defaults, an optional config file
// and environment overrides with prefix ARCFIT_ (e.g.
// ARCFIT_EDIT_MINIMUM_CONNECTION_DISTANCE).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/arcfit/space"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"
)

// Settings holds all tunables.
type Settings struct {
	Edit EditSettings
	Fit  FitSettings
}

// EditSettings are consumed by the interactive models.
type EditSettings struct {
	// MinimumConnectionDistance is the world-space minimum spacing between
	// neighbouring nodes along an arc.
	MinimumConnectionDistance float64 `mapstructure:"minimum_connection_distance"`
	// ThetaWrapBias shifts the branch used to wrap angles into theta values.
	ThetaWrapBias float64 `mapstructure:"theta_wrap_bias"`
	// Up is the up hint for plane estimation.
	Up []float64 `mapstructure:"up"`
}

// FitSettings are consumed by the solvers.
type FitSettings struct {
	// DegenerateHalfChord is used as half chord length if the endpoints of a
	// chain coincide.
	DegenerateHalfChord float64 `mapstructure:"degenerate_half_chord"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Edit: EditSettings{
			MinimumConnectionDistance: 0.1,
			ThetaWrapBias:             0,
			Up:                        []float64{0, 1, 0},
		},
		Fit: FitSettings{
			DegenerateHalfChord: 1e-3,
		},
	}
}

// UpHint returns the up hint as a vector. A malformed entry yields WorldUp.
func (s Settings) UpHint() r3.Vec {
	if len(s.Edit.Up) != 3 {
		return space.WorldUp
	}
	return space.V(s.Edit.Up[0], s.Edit.Up[1], s.Edit.Up[2])
}

// Load reads settings from path (if not empty), falling back to defaults for
// missing keys. Environment variables override both.
func Load(path string) (Settings, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("edit.minimum_connection_distance", d.Edit.MinimumConnectionDistance)
	v.SetDefault("edit.theta_wrap_bias", d.Edit.ThetaWrapBias)
	v.SetDefault("edit.up", d.Edit.Up)
	v.SetDefault("fit.degenerate_half_chord", d.Fit.DegenerateHalfChord)

	if path == "" {
		path = os.Getenv("ARCFIT_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.SetEnvPrefix("ARCFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the ranges of all settings.
func (s Settings) Validate() error {
	if s.Edit.MinimumConnectionDistance < 0 {
		return fmt.Errorf("edit.minimum_connection_distance must not be negative, is %g",
			s.Edit.MinimumConnectionDistance)
	}
	if s.Fit.DegenerateHalfChord <= 0 {
		return fmt.Errorf("fit.degenerate_half_chord must be positive, is %g",
			s.Fit.DegenerateHalfChord)
	}
	if len(s.Edit.Up) != 3 {
		return fmt.Errorf("edit.up must have 3 components, has %d", len(s.Edit.Up))
	}
	return nil
}
