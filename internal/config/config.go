package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// App holds runtime configuration for the question bank client.
type App struct {
	Name     string `env:"APP_NAME" envDefault:"questionbank-client"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	QuestionBank QuestionBank
}

// QuestionBank describes the remote service and how hard to hit it.
type QuestionBank struct {
	BaseURL         string        `env:"QUESTIONBANK_BASE_URL,notEmpty"`
	HTTPTimeout     time.Duration `env:"QUESTIONBANK_HTTP_TIMEOUT" envDefault:"10s"`
	MaxConcurrency  int           `env:"QUESTIONBANK_MAX_CONCURRENCY" envDefault:"50"`
	MetadataVersion int           `env:"QUESTIONBANK_METADATA_VERSION" envDefault:"1"`
	UserAgent       string        `env:"QUESTIONBANK_USER_AGENT" envDefault:"questionbank-client"`
}

// Load parses environment variables into App config and validates it.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the values env parsing cannot.
func (c *App) Validate() error {
	return validation.ValidateStruct(&c.QuestionBank,
		validation.Field(&c.QuestionBank.BaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.QuestionBank.HTTPTimeout, validation.Min(time.Millisecond)),
		validation.Field(&c.QuestionBank.MaxConcurrency, validation.Min(1)),
		validation.Field(&c.QuestionBank.MetadataVersion, validation.In(1, 2)),
	)
}

func httpURL(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https scheme")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}
