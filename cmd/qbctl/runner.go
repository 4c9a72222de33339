package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gokatarajesh/questionbank-client/internal/bank"
)

var errMissingID = errors.New("-id is required for this command")

type runner struct {
	adapter  *bank.Adapter
	out      io.Writer
	inline   bool
	children bool
}

func (r *runner) run(ctx context.Context, command, id string, search any, concurrent bool) error {
	needsID := map[string]bool{
		"get-set": true, "get-questions": true, "get-question": true, "get-answer": true,
		"delete-set": true, "delete-question": true, "delete-answer": true,
	}
	if needsID[command] && id == "" {
		return errMissingID
	}

	switch command {
	case "list-sets":
		sets, err := r.adapter.GetQuestionsets(ctx, search, r.children)
		if err != nil {
			return err
		}
		views := make([]questionsetView, 0, len(sets))
		for _, s := range sets {
			views = append(views, r.questionsetView(s))
		}
		return r.render(views)
	case "get-set":
		set, err := r.adapter.GetQuestionset(ctx, id, r.children)
		if err != nil {
			return err
		}
		return r.render(r.questionsetView(set))
	case "get-questions":
		questions, err := r.adapter.GetQuestions(ctx, id, concurrent)
		if err != nil {
			return err
		}
		return r.render(r.questionViews(questions))
	case "get-question":
		q, err := r.adapter.GetQuestion(ctx, id, r.children)
		if err != nil {
			return err
		}
		return r.render(r.questionView(q))
	case "get-answer":
		a, err := r.adapter.GetAnswer(ctx, id)
		if err != nil {
			return err
		}
		return r.render(r.answerView(a))
	case "search-questions":
		questions, err := r.adapter.SearchQuestions(ctx, search)
		if err != nil {
			return err
		}
		return r.render(r.questionViews(questions))
	case "search-answers":
		answers, err := r.adapter.SearchAnswers(ctx, search)
		if err != nil {
			return err
		}
		views := make([]answerView, 0, len(answers))
		for _, a := range answers {
			views = append(views, r.answerView(a))
		}
		return r.render(views)
	case "delete-set":
		return r.adapter.DeleteQuestionset(ctx, id)
	case "delete-question":
		return r.adapter.DeleteQuestion(ctx, id)
	case "delete-answer":
		return r.adapter.DeleteAnswer(ctx, id)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (r *runner) render(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render output: %w", err)
	}
	return enc.Close()
}

type questionsetView struct {
	ID            string         `yaml:"id"`
	Title         string         `yaml:"title"`
	OwnerID       string         `yaml:"owner_id,omitempty"`
	QuestionCount *int           `yaml:"question_count,omitempty"`
	Keywords      []string       `yaml:"keywords,omitempty"`
	Questions     []questionView `yaml:"questions,omitempty"`
}

type questionView struct {
	ID       string       `yaml:"id"`
	Text     string       `yaml:"text"`
	OwnerID  string       `yaml:"owner_id,omitempty"`
	Keywords []string     `yaml:"keywords,omitempty"`
	Images   []string     `yaml:"images,omitempty"`
	Answers  []answerView `yaml:"answers,omitempty"`
}

type answerView struct {
	ID        string `yaml:"id"`
	Text      string `yaml:"text"`
	IsCorrect bool   `yaml:"correct"`
}

func (r *runner) text(s string) string {
	if r.inline {
		return bank.ToInlineDisplay(s)
	}
	return s
}

func (r *runner) questionsetView(s *bank.Questionset) questionsetView {
	return questionsetView{
		ID:            s.ID,
		Title:         s.Title,
		OwnerID:       s.OwnerID,
		QuestionCount: s.QuestionCount,
		Keywords:      s.Keywords(),
		Questions:     r.questionViews(s.Questions()),
	}
}

func (r *runner) questionViews(qs []*bank.Question) []questionView {
	views := make([]questionView, 0, len(qs))
	for _, q := range qs {
		views = append(views, r.questionView(q))
	}
	return views
}

func (r *runner) questionView(q *bank.Question) questionView {
	answers := make([]answerView, 0, len(q.Answers()))
	for _, a := range q.Answers() {
		answers = append(answers, r.answerView(a))
	}
	return questionView{
		ID:       q.ID,
		Text:     r.text(q.Text),
		OwnerID:  q.OwnerID,
		Keywords: q.Keywords(),
		Images:   q.Images(),
		Answers:  answers,
	}
}

func (r *runner) answerView(a *bank.Answer) answerView {
	return answerView{ID: a.ID, Text: r.text(a.Text), IsCorrect: a.IsCorrect}
}
