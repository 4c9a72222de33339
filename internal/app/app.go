package app

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/questionbank-client/internal/bank"
	"github.com/gokatarajesh/questionbank-client/internal/config"
	"github.com/gokatarajesh/questionbank-client/internal/logging"
	"github.com/gokatarajesh/questionbank-client/internal/transport"
)

// Application aggregates the wired adapter and its shared infrastructure.
type Application struct {
	cfg     *config.App
	logger  zerolog.Logger
	adapter *bank.Adapter
}

// Options overrides infrastructure pieces, mostly for tests.
type Options struct {
	Logger     *zerolog.Logger
	HTTPClient *http.Client
	Registerer prometheus.Registerer
}

// New builds the logger, transport and adapter from cfg.
func New(cfg *config.App, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	client := transport.NewClient(transport.Config{
		BaseURL:   cfg.QuestionBank.BaseURL,
		Timeout:   cfg.QuestionBank.HTTPTimeout,
		UserAgent: cfg.QuestionBank.UserAgent,
	}, opts.HTTPClient, transport.NewMetrics(reg), logger)

	adapter := bank.NewAdapter(client, logger, bank.AdapterOptions{
		MetadataVersion: bank.APIVersion(cfg.QuestionBank.MetadataVersion),
		MaxConcurrency:  cfg.QuestionBank.MaxConcurrency,
	})

	logger.Debug().
		Str("base_url", cfg.QuestionBank.BaseURL).
		Int("max_concurrency", cfg.QuestionBank.MaxConcurrency).
		Int("metadata_version", cfg.QuestionBank.MetadataVersion).
		Msg("question bank adapter ready")

	return &Application{
		cfg:     cfg,
		logger:  logger,
		adapter: adapter,
	}, nil
}

func (a *Application) Adapter() *bank.Adapter { return a.adapter }

func (a *Application) Logger() zerolog.Logger { return a.logger }
