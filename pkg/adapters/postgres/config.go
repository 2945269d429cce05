package postgres

import (
	"github.com/go-viper/mapstructure/v2"
)

// Params holds PostgreSQL-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// FallbackURLs are tried in order when the primary URL is unreachable.
	FallbackURLs []string `mapstructure:"fallback_urls"`
}

func parseParams(input map[string]any) (*Params, error) {
	var p Params
	if err := mapstructure.Decode(input, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
