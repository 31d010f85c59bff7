// Package fetch provides the stream fetch backends that retrieve
// playlist item audio and attach owned stream handles.
package fetch

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/streambox/internal/app/playback"
)

// New creates a fetch backend from its config type and settings map.
func New(backend string, settings map[string]any) (playback.Fetcher, error) {
	switch backend {
	case "http", "":
		var cfg HTTPConfig
		if err := decodeSettings(settings, &cfg); err != nil {
			return nil, errors.Wrap(err, "http backend settings")
		}
		return NewHTTP(cfg), nil
	case "file":
		var cfg FileConfig
		if err := decodeSettings(settings, &cfg); err != nil {
			return nil, errors.Wrap(err, "file backend settings")
		}
		return NewFile(cfg), nil
	default:
		return nil, errors.Newf("unsupported fetch backend: %s", backend)
	}
}

// decodeSettings decodes a settings map into a typed config, applies
// defaults and validates the result.
func decodeSettings(settings map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
