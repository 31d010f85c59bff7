package check

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/streambox/internal/domain/resource"
)

// SchemeConfig represents the configuration for SchemeCheck.
type SchemeConfig struct {
	Schemes []string `yaml:"schemes" mapstructure:"schemes" default:"[\"http\",\"https\"]" validate:"min=1"`
}

// SchemeCheck rejects items whose URL scheme is not allowed.
type SchemeCheck struct {
	config *SchemeConfig
}

// NewSchemeCheck creates a new URL scheme check.
func NewSchemeCheck() *SchemeCheck {
	return &SchemeCheck{}
}

func (c *SchemeCheck) Name() string {
	return "scheme_check"
}

func (c *SchemeCheck) Description() string {
	return "Checks that item URLs use an allowed scheme"
}

func (c *SchemeCheck) ReturnCodes() []string {
	return []string{"invalid_url", "scheme_not_allowed"}
}

func (c *SchemeCheck) ValidateConfig(settings map[string]any) error {
	var config SchemeConfig

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

	for i, s := range config.Schemes {
		config.Schemes[i] = strings.ToLower(s)
	}

	c.config = &config
	zlog.Info().Msgf("scheme check config: %+v", config)
	return nil
}

func (c *SchemeCheck) AppliesTo(backend string) bool {
	// File backends address items by path, not URL.
	return backend != "file"
}

func (c *SchemeCheck) Run(ctx context.Context, playlist resource.Playlist, index int) Result {
	// If config is not set, accept all items.
	if c.config == nil {
		return Accept()
	}

	item := playlist[index]
	u, err := url.Parse(item.URL)
	if err != nil {
		return Reject("invalid_url")
	}

	scheme := strings.ToLower(u.Scheme)
	for _, allowed := range c.config.Schemes {
		if scheme == allowed {
			return Accept()
		}
	}
	return Reject("scheme_not_allowed")
}

func init() {
	Register("scheme_check", func() Check {
		return &SchemeCheck{}
	})
}
