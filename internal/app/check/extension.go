package check

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/streambox/internal/domain/resource"
)

// ExtensionConfig represents the configuration for ExtensionCheck.
type ExtensionConfig struct {
	Extensions []string `yaml:"extensions" mapstructure:"extensions" default:"[\".mp3\",\".wav\",\".flac\",\".ogg\"]" validate:"min=1"`
}

// ExtensionCheck rejects items whose file extension has no decoder.
type ExtensionCheck struct {
	config *ExtensionConfig
}

// NewExtensionCheck creates a new extension check.
func NewExtensionCheck() *ExtensionCheck {
	return &ExtensionCheck{}
}

func (c *ExtensionCheck) Name() string {
	return "extension_check"
}

func (c *ExtensionCheck) Description() string {
	return "Checks that item extensions have a registered decoder"
}

func (c *ExtensionCheck) ReturnCodes() []string {
	return []string{"unsupported_extension"}
}

func (c *ExtensionCheck) ValidateConfig(settings map[string]any) error {
	var config ExtensionConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &config,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	// Normalize to the dotted lowercase form item.Ext produces.
	for i, ext := range config.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		config.Extensions[i] = ext
	}

	c.config = &config
	zlog.Info().Msgf("extension check config: %+v", config)
	return nil
}

func (c *ExtensionCheck) AppliesTo(backend string) bool {
	return true
}

func (c *ExtensionCheck) Run(ctx context.Context, playlist resource.Playlist, index int) Result {
	// If config is not set, accept all items.
	if c.config == nil {
		return Accept()
	}

	ext := playlist[index].Ext()
	for _, allowed := range c.config.Extensions {
		if ext == allowed {
			return Accept()
		}
	}
	return Reject("unsupported_extension")
}

func init() {
	Register("extension_check", func() Check {
		return &ExtensionCheck{}
	})
}
