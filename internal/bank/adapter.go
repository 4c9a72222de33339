package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/questionbank-client/internal/logging"
	"github.com/gokatarajesh/questionbank-client/internal/transport"
)

const (
	pathQuestionsets         = "/v1/question_sets"
	pathQuestionset          = "/v1/question_sets/%s"
	pathQuestionsetQuestions = "/v1/question_sets/%s/questions"
	pathQuestions            = "/v1/questions"
	pathQuestion             = "/v1/questions/%s"
	pathQuestionAnswers      = "/v1/questions/%s/answers"
	pathAnswers              = "/v1/answers"
	pathAnswer               = "/v1/answers/%s"
)

// DefaultMaxConcurrency caps in-flight answer fetches during concurrent
// hydration.
const DefaultMaxConcurrency = 50

// Requester is the transport the adapter talks through.
type Requester interface {
	Request(ctx context.Context, method, path string, opts transport.RequestOptions) (*transport.Response, error)
}

var _ Requester = (*transport.Client)(nil)

// AdapterOptions tunes metadata shape and hydration concurrency. Zero values
// select V1 metadata and DefaultMaxConcurrency.
type AdapterOptions struct {
	MetadataVersion APIVersion
	MaxConcurrency  int
}

// Adapter maps question bank resources to domain objects and hydrates their
// children on request.
type Adapter struct {
	client         Requester
	version        APIVersion
	maxConcurrency int
	logger         zerolog.Logger
}

// NewAdapter returns an adapter that talks to the service through client.
func NewAdapter(client Requester, logger zerolog.Logger, opts AdapterOptions) *Adapter {
	version := opts.MetadataVersion
	if version != APIVersionV2 {
		version = APIVersionV1
	}
	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	return &Adapter{
		client:         client,
		version:        version,
		maxConcurrency: limit,
		logger:         logger.With().Str("component", "questionbank_adapter").Logger(),
	}
}

// GetQuestionsets lists question sets matching search (nil for all). When
// includeQuestions is set each set is hydrated with its questions and their
// answers, one set at a time.
func (a *Adapter) GetQuestionsets(ctx context.Context, search any, includeQuestions bool) ([]*Questionset, error) {
	query, err := a.searchQuery(search)
	if err != nil {
		return nil, err
	}
	raws, err := a.getList(ctx, pathQuestionsets, query)
	if err != nil {
		return nil, err
	}
	sets := make([]*Questionset, 0, len(raws))
	for _, raw := range raws {
		set, err := questionsetFromWire(raw, a.version)
		if err != nil {
			return nil, a.decodeFailure(http.MethodGet, pathQuestionsets, err)
		}
		sets = append(sets, set)
	}
	if includeQuestions {
		for _, set := range sets {
			questions, err := a.GetQuestions(ctx, set.ID, false)
			if err != nil {
				return nil, err
			}
			set.AddQuestions(questions)
		}
	}
	return sets, nil
}

// GetQuestionset fetches one set, optionally with its questions and answers.
func (a *Adapter) GetQuestionset(ctx context.Context, id string, includeQuestions bool) (*Questionset, error) {
	path := fmt.Sprintf(pathQuestionset, url.PathEscape(id))
	raw, err := a.getObject(ctx, path)
	if err != nil {
		return nil, err
	}
	set, err := questionsetFromWire(raw, a.version)
	if err != nil {
		return nil, a.decodeFailure(http.MethodGet, path, err)
	}
	if includeQuestions {
		questions, err := a.GetQuestions(ctx, set.ID, false)
		if err != nil {
			return nil, err
		}
		set.AddQuestions(questions)
	}
	return set, nil
}

// StoreQuestionset creates the set when it has no id and updates it
// otherwise.
func (a *Adapter) StoreQuestionset(ctx context.Context, set *Questionset) (*Questionset, error) {
	payload := questionsetToPayload(set, a.version)
	if set.ID == "" {
		raw, err := a.send(ctx, http.MethodPost, pathQuestionsets, payload)
		if err != nil {
			return nil, err
		}
		created, err := questionsetFromWire(raw, a.version)
		if err != nil {
			return nil, a.decodeFailure(http.MethodPost, pathQuestionsets, err)
		}
		created.WasRecentlyCreated = true
		return created, nil
	}

	path := fmt.Sprintf(pathQuestionset, url.PathEscape(set.ID))
	raw, err := a.send(ctx, http.MethodPut, path, payload)
	if err != nil {
		return nil, err
	}
	updated, err := questionsetFromWire(raw, a.version)
	if err != nil {
		return nil, a.decodeFailure(http.MethodPut, path, err)
	}
	return updated, nil
}

// DeleteQuestionset removes the set with the given id.
func (a *Adapter) DeleteQuestionset(ctx context.Context, id string) error {
	return a.delete(ctx, fmt.Sprintf(pathQuestionset, url.PathEscape(id)))
}

// GetQuestions lists the questions of a set with their answers. Concurrent
// hydration never fails the call; questions whose answers could not be
// fetched are returned without answers.
func (a *Adapter) GetQuestions(ctx context.Context, questionsetID string, concurrent bool) ([]*Question, error) {
	path := fmt.Sprintf(pathQuestionsetQuestions, url.PathEscape(questionsetID))
	questions, err := a.listQuestions(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	mode := HydrateSequential
	if concurrent {
		mode = HydrateConcurrent
	}
	if _, err := a.HydrateAnswers(ctx, questions, mode); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetQuestion fetches one question, optionally with its answers.
func (a *Adapter) GetQuestion(ctx context.Context, id string, includeAnswers bool) (*Question, error) {
	path := fmt.Sprintf(pathQuestion, url.PathEscape(id))
	raw, err := a.getObject(ctx, path)
	if err != nil {
		return nil, err
	}
	q, err := questionFromWire(raw, a.version)
	if err != nil {
		return nil, a.decodeFailure(http.MethodGet, path, err)
	}
	if includeAnswers {
		answers, err := a.GetAnswersByQuestion(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		q.AddAnswers(answers)
	}
	return q, nil
}

// StoreQuestion creates the question under its question set when it has no
// id and updates it otherwise.
func (a *Adapter) StoreQuestion(ctx context.Context, q *Question) (*Question, error) {
	payload := questionToPayload(q, a.version)
	if q.ID == "" {
		path := fmt.Sprintf(pathQuestionsetQuestions, url.PathEscape(q.QuestionsetID))
		raw, err := a.send(ctx, http.MethodPost, path, payload)
		if err != nil {
			return nil, err
		}
		created, err := questionFromWire(raw, a.version)
		if err != nil {
			return nil, a.decodeFailure(http.MethodPost, path, err)
		}
		created.WasRecentlyCreated = true
		return created, nil
	}

	path := fmt.Sprintf(pathQuestion, url.PathEscape(q.ID))
	raw, err := a.send(ctx, http.MethodPut, path, payload)
	if err != nil {
		return nil, err
	}
	updated, err := questionFromWire(raw, a.version)
	if err != nil {
		return nil, a.decodeFailure(http.MethodPut, path, err)
	}
	return updated, nil
}

// DeleteQuestion removes the question with the given id.
func (a *Adapter) DeleteQuestion(ctx context.Context, id string) error {
	return a.delete(ctx, fmt.Sprintf(pathQuestion, url.PathEscape(id)))
}

// SearchQuestions runs a question search and attaches each hit's answers.
func (a *Adapter) SearchQuestions(ctx context.Context, search any) ([]*Question, error) {
	query, err := a.searchQuery(search)
	if err != nil {
		return nil, err
	}
	questions, err := a.listQuestions(ctx, pathQuestions, query)
	if err != nil {
		return nil, err
	}
	if _, err := a.HydrateAnswers(ctx, questions, HydrateSequential); err != nil {
		return nil, err
	}
	return questions, nil
}

func (a *Adapter) listQuestions(ctx context.Context, path string, query map[string]string) ([]*Question, error) {
	raws, err := a.getList(ctx, path, query)
	if err != nil {
		return nil, err
	}
	questions := make([]*Question, 0, len(raws))
	for _, raw := range raws {
		q, err := questionFromWire(raw, a.version)
		if err != nil {
			return nil, a.decodeFailure(http.MethodGet, path, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// GetAnswer fetches one answer.
func (a *Adapter) GetAnswer(ctx context.Context, id string) (*Answer, error) {
	path := fmt.Sprintf(pathAnswer, url.PathEscape(id))
	raw, err := a.getObject(ctx, path)
	if err != nil {
		return nil, err
	}
	answer, err := answerFromWire(raw, a.version)
	if err != nil {
		return nil, a.decodeFailure(http.MethodGet, path, err)
	}
	return answer, nil
}

// GetAnswersByQuestion lists the answers of a question.
func (a *Adapter) GetAnswersByQuestion(ctx context.Context, questionID string) ([]*Answer, error) {
	path := fmt.Sprintf(pathQuestionAnswers, url.PathEscape(questionID))
	return a.listAnswers(ctx, path, nil)
}

// StoreAnswer creates the answer under its question when it has no id and
// updates it otherwise.
func (a *Adapter) StoreAnswer(ctx context.Context, answer *Answer) (*Answer, error) {
	payload := answerToPayload(answer, a.version)
	if answer.ID == "" {
		path := fmt.Sprintf(pathQuestionAnswers, url.PathEscape(answer.QuestionID))
		raw, err := a.send(ctx, http.MethodPost, path, payload)
		if err != nil {
			return nil, err
		}
		created, err := answerFromWire(raw, a.version)
		if err != nil {
			return nil, a.decodeFailure(http.MethodPost, path, err)
		}
		created.WasRecentlyCreated = true
		return created, nil
	}

	path := fmt.Sprintf(pathAnswer, url.PathEscape(answer.ID))
	raw, err := a.send(ctx, http.MethodPut, path, payload)
	if err != nil {
		return nil, err
	}
	updated, err := answerFromWire(raw, a.version)
	if err != nil {
		return nil, a.decodeFailure(http.MethodPut, path, err)
	}
	return updated, nil
}

// DeleteAnswer removes the answer with the given id.
func (a *Adapter) DeleteAnswer(ctx context.Context, id string) error {
	return a.delete(ctx, fmt.Sprintf(pathAnswer, url.PathEscape(id)))
}

// SearchAnswers runs an answer search. Hits are not hydrated.
func (a *Adapter) SearchAnswers(ctx context.Context, search any) ([]*Answer, error) {
	query, err := a.searchQuery(search)
	if err != nil {
		return nil, err
	}
	return a.listAnswers(ctx, pathAnswers, query)
}

func (a *Adapter) listAnswers(ctx context.Context, path string, query map[string]string) ([]*Answer, error) {
	raws, err := a.getList(ctx, path, query)
	if err != nil {
		return nil, err
	}
	answers := make([]*Answer, 0, len(raws))
	for _, raw := range raws {
		answer, err := answerFromWire(raw, a.version)
		if err != nil {
			return nil, a.decodeFailure(http.MethodGet, path, err)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (a *Adapter) searchQuery(search any) (map[string]string, error) {
	if search == nil {
		return nil, nil
	}
	return Compose(search)
}

func (a *Adapter) do(ctx context.Context, method, path string, opts transport.RequestOptions) ([]byte, error) {
	resp, err := a.client.Request(ctx, method, path, opts)
	if err != nil {
		return nil, &RemoteRequestFailedError{Method: method, Path: path, Err: err}
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return nil, &RemoteRequestFailedError{Method: method, Path: path, Status: resp.Status}
	}
	return resp.Body, nil
}

func (a *Adapter) getObject(ctx context.Context, path string) (map[string]any, error) {
	body, err := a.do(ctx, http.MethodGet, path, transport.RequestOptions{})
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, a.decodeFailure(http.MethodGet, path, err)
	}
	return raw, nil
}

func (a *Adapter) getList(ctx context.Context, path string, query map[string]string) ([]map[string]any, error) {
	body, err := a.do(ctx, http.MethodGet, path, transport.RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}
	var raws []map[string]any
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, a.decodeFailure(http.MethodGet, path, err)
	}
	return raws, nil
}

func (a *Adapter) send(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	body, err := a.do(ctx, method, path, transport.RequestOptions{JSON: payload})
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, a.decodeFailure(method, path, err)
	}
	return raw, nil
}

func (a *Adapter) delete(ctx context.Context, path string) error {
	_, err := a.do(ctx, http.MethodDelete, path, transport.RequestOptions{})
	return err
}

func (a *Adapter) decodeFailure(method, path string, err error) error {
	return &RemoteRequestFailedError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
}

func (a *Adapter) log(ctx context.Context) *zerolog.Logger {
	logger := logging.FromContextOr(ctx, a.logger)
	return &logger
}
