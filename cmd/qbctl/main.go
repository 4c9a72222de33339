package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/questionbank-client/internal/app"
	"github.com/gokatarajesh/questionbank-client/internal/bank"
	"github.com/gokatarajesh/questionbank-client/internal/config"
	"github.com/gokatarajesh/questionbank-client/internal/logging"
)

func main() {
	var (
		command    = flag.String("command", "list-sets", "Command: list-sets, get-set, get-questions, get-question, get-answer, search-questions, search-answers, delete-set, delete-question, delete-answer")
		id         = flag.String("id", "", "Resource id for get/delete commands")
		term       = flag.String("q", "", "Free-text search term")
		lang       = flag.String("lang", "", "Language filter")
		tag        = flag.String("tag", "", "Tag filter")
		owner      = flag.String("owner", "", "Owner filter")
		limit      = flag.Int("limit", 0, "Maximum number of results")
		children   = flag.Bool("children", true, "Hydrate nested resources")
		concurrent = flag.Bool("concurrent", false, "Fetch answers concurrently for get-questions")
		inline     = flag.Bool("inline-math", false, "Render $$..$$ math as inline delimiters")
		timeout    = flag.Duration("timeout", 60*time.Second, "Overall command timeout")
	)
	flag.Parse()

	log.Logger = bootstrapLogger(os.Stderr, os.Getenv("APP_ENV"))

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	instance, err := app.New(cfg, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build app")
	}

	search := buildSearch(*term, *lang, *tag, *owner, *limit)
	r := &runner{
		adapter:  instance.Adapter(),
		out:      os.Stdout,
		inline:   *inline,
		children: *children,
	}
	if err := r.run(ctx, *command, *id, search, *concurrent); err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("command failed")
	}
}

// bootstrapLogger is used until the config, and with it the configured
// logger, is loaded.
func bootstrapLogger(out io.Writer, env string) zerolog.Logger {
	return logging.NewWithWriter(out, "qbctl", env, "info")
}

// buildSearch returns nil when no filter flag was given so the service sees
// an unfiltered request.
func buildSearch(term, lang, tag, owner string, limit int) any {
	var criteria bank.Criteria
	if term != "" {
		criteria = append(criteria, bank.Term(term))
	}
	if lang != "" {
		criteria = append(criteria, bank.Language(lang))
	}
	if tag != "" {
		criteria = append(criteria, bank.Tag(tag))
	}
	if owner != "" {
		criteria = append(criteria, bank.Owner(owner))
	}
	if limit > 0 {
		criteria = append(criteria, bank.Page{Limit: limit})
	}
	if len(criteria) == 0 {
		return nil
	}
	return criteria
}
