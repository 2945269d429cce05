package sqlite

import (
	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQLite-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// ReadOnly opens the database with mode=ro.
	ReadOnly bool `mapstructure:"read_only"`

	// BusyTimeout is the busy handler timeout in milliseconds. Zero keeps
	// the driver default.
	BusyTimeout int `mapstructure:"busy_timeout"`
}

func parseParams(input map[string]any) (*Params, error) {
	var p Params
	if err := mapstructure.Decode(input, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
