package bank

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// HydrateMode selects how dependent answer lists are fetched.
type HydrateMode int

const (
	// HydrateSequential fetches one question at a time and stops at the
	// first failure.
	HydrateSequential HydrateMode = iota
	// HydrateConcurrent fans out through the bounded pool. Failures are
	// logged and recorded in the report, never returned.
	HydrateConcurrent
)

// HydrationReport records the per-question outcome of a hydration pass.
type HydrationReport struct {
	Hydrated []string
	Failed   map[string]error
}

// Degraded reports whether any question was left without its answers.
func (r HydrationReport) Degraded() bool {
	return len(r.Failed) > 0
}

// Err aggregates the per-question failures, ordered by question id.
func (r HydrationReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result *multierror.Error
	for _, id := range ids {
		result = multierror.Append(result, fmt.Errorf("question %s: %w", id, r.Failed[id]))
	}
	return result.ErrorOrNil()
}

// HydrateAnswers fetches and attaches the answers of every question. In
// sequential mode the first failure is returned and later questions are left
// untouched. In concurrent mode the returned error is always nil, each distinct
// id is fetched once, and questions sharing an id get their own copies.
func (a *Adapter) HydrateAnswers(ctx context.Context, questions []*Question, mode HydrateMode) (HydrationReport, error) {
	if mode == HydrateConcurrent {
		return a.hydrateConcurrent(ctx, questions), nil
	}
	return a.hydrateSequential(ctx, questions)
}

func (a *Adapter) hydrateSequential(ctx context.Context, questions []*Question) (HydrationReport, error) {
	report := HydrationReport{Hydrated: make([]string, 0, len(questions)), Failed: map[string]error{}}
	for _, q := range questions {
		answers, err := a.GetAnswersByQuestion(ctx, q.ID)
		if err != nil {
			report.Failed[q.ID] = err
			return report, err
		}
		q.AddAnswers(answers)
		report.Hydrated = append(report.Hydrated, q.ID)
	}
	return report, nil
}

// hydrateConcurrent issues one answers request per distinct question id,
// at most maxConcurrency in flight, and attaches results by id once every
// request has settled.
func (a *Adapter) hydrateConcurrent(ctx context.Context, questions []*Question) HydrationReport {
	report := HydrationReport{Hydrated: []string{}, Failed: map[string]error{}}
	if len(questions) == 0 {
		return report
	}

	ids := make([]string, 0, len(questions))
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		ids = append(ids, q.ID)
	}

	var (
		mu      sync.Mutex
		results = make(map[string][]*Answer, len(ids))
		g       errgroup.Group
	)
	g.SetLimit(a.maxConcurrency)

	logger := a.log(ctx)
	for _, id := range ids {
		g.Go(func() error {
			answers, err := a.GetAnswersByQuestion(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed[id] = err
				logger.Warn().Err(err).Str("question_id", id).Msg("answer hydration failed")
				return nil
			}
			results[id] = answers
			return nil
		})
	}
	_ = g.Wait()

	attached := make(map[string]bool, len(ids))
	for _, q := range questions {
		answers, ok := results[q.ID]
		if !ok {
			continue
		}
		if attached[q.ID] {
			answers = cloneAnswers(answers)
		}
		attached[q.ID] = true
		q.AddAnswers(answers)
	}
	for _, id := range ids {
		if _, ok := results[id]; ok {
			report.Hydrated = append(report.Hydrated, id)
		}
	}
	if report.Degraded() {
		logger.Warn().
			Int("questions", len(ids)).
			Int("failed", len(report.Failed)).
			Msg("concurrent answer hydration degraded")
	}
	return report
}

func cloneAnswers(answers []*Answer) []*Answer {
	out := make([]*Answer, 0, len(answers))
	for _, a := range answers {
		c := *a
		c.SetMetadata(cloneMetadata(a.Metadata()))
		out = append(out, &c)
	}
	return out
}
