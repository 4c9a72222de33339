package bank

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const correctnessFull = 100

var leadingInt = regexp.MustCompile(`^\s*[+-]?\d+`)

var metadataWirePtr = reflect.TypeOf((*metadataWire)(nil))

type metadataWire struct {
	Keywords  []string `mapstructure:"keywords"`
	Images    []string `mapstructure:"images"`
	Languages []string `mapstructure:"languages"`
	Subject   []string `mapstructure:"subject"`
	AgeLevels []string `mapstructure:"age_levels"`
}

type questionsetWire struct {
	ID            string        `mapstructure:"id"`
	Title         string        `mapstructure:"title"`
	OwnerID       string        `mapstructure:"ownerId"`
	QuestionCount *int          `mapstructure:"questionCount"`
	Metadata      *metadataWire `mapstructure:"metadata"`
}

type questionWire struct {
	ID            string        `mapstructure:"id"`
	Title         string        `mapstructure:"title"`
	QuestionsetID string        `mapstructure:"questionSetId"`
	OwnerID       string        `mapstructure:"ownerId"`
	Metadata      *metadataWire `mapstructure:"metadata"`
}

type answerWire struct {
	ID          string        `mapstructure:"id"`
	Description string        `mapstructure:"description"`
	QuestionID  string        `mapstructure:"questionId"`
	Correctness any           `mapstructure:"correctness"`
	Metadata    *metadataWire `mapstructure:"metadata"`
}

type questionsetPayload struct {
	Title    string   `json:"title"`
	Metadata Metadata `json:"metadata"`
	OwnerID  string   `json:"owner_id"`
}

type questionPayload struct {
	Title    string   `json:"title"`
	Metadata Metadata `json:"metadata"`
	OwnerID  string   `json:"owner_id"`
}

type answerPayload struct {
	Description string   `json:"description"`
	Correctness int      `json:"correctness"`
	Metadata    Metadata `json:"metadata"`
}

// decodeWire copies a raw JSON object into a wire struct. Numbers and
// strings are converted leniently since the service is not consistent about
// id and percentage types.
func decodeWire(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(dropMalformedMetadata),
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode wire object: %w", err)
	}
	return nil
}

// dropMalformedMetadata turns a metadata value that is not an object, such as
// the [] PHP emits for an empty map, into nil so the empty variant is used.
func dropMalformedMetadata(from, to reflect.Type, data any) (any, error) {
	if to != metadataWirePtr || from.Kind() == reflect.Map {
		return data, nil
	}
	return nil, nil
}

// intval reads a wire number the way the service's own clients do: numbers
// truncate, strings are read up to their leading integer, anything else is 0.
func intval(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		return intval(n.String())
	case string:
		digits := leadingInt.FindString(n)
		if digits == "" {
			return 0
		}
		i, err := strconv.Atoi(strings.TrimSpace(digits))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

func metadataFromWire(w *metadataWire, version APIVersion) Metadata {
	m := NewMetadata(version)
	if w == nil {
		return m
	}
	switch v := m.(type) {
	case *MetadataV2:
		v.Keywords = nonNil(w.Keywords)
		v.Languages = nonNil(w.Languages)
		v.Subject = nonNil(w.Subject)
		v.AgeLevels = nonNil(w.AgeLevels)
	case *MetadataV1:
		v.Keywords = nonNil(w.Keywords)
		v.Images = nonNil(w.Images)
	}
	return m
}

func questionsetFromWire(raw map[string]any, version APIVersion) (*Questionset, error) {
	var w questionsetWire
	if err := decodeWire(raw, &w); err != nil {
		return nil, err
	}
	set := &Questionset{
		ID:            w.ID,
		Title:         w.Title,
		OwnerID:       w.OwnerID,
		QuestionCount: w.QuestionCount,
		questions:     []*Question{},
	}
	set.SetMetadata(metadataFromWire(w.Metadata, version))
	return set, nil
}

func questionFromWire(raw map[string]any, version APIVersion) (*Question, error) {
	var w questionWire
	if err := decodeWire(raw, &w); err != nil {
		return nil, err
	}
	q := &Question{
		ID:                 w.ID,
		Text:               w.Title,
		QuestionsetID:      w.QuestionsetID,
		OwnerID:            w.OwnerID,
		StripMathContainer: true,
		answers:            []*Answer{},
	}
	q.SetMetadata(metadataFromWire(w.Metadata, version))
	return q, nil
}

func answerFromWire(raw map[string]any, version APIVersion) (*Answer, error) {
	var w answerWire
	if err := decodeWire(raw, &w); err != nil {
		return nil, err
	}
	a := &Answer{
		ID:                 w.ID,
		Text:               w.Description,
		QuestionID:         w.QuestionID,
		IsCorrect:          intval(w.Correctness) == correctnessFull,
		StripMathContainer: true,
	}
	a.SetMetadata(metadataFromWire(w.Metadata, version))
	return a, nil
}

func questionsetToPayload(s *Questionset, version APIVersion) questionsetPayload {
	return questionsetPayload{
		Title:    s.Title,
		Metadata: s.EnsureMetadata(version),
		OwnerID:  s.OwnerID,
	}
}

func questionToPayload(q *Question, version APIVersion) questionPayload {
	text := q.Text
	if q.StripMathContainer {
		text = StripMathContainer(text)
	}
	return questionPayload{
		Title:    text,
		Metadata: q.EnsureMetadata(version),
		OwnerID:  q.OwnerID,
	}
}

func answerToPayload(a *Answer, version APIVersion) answerPayload {
	text := a.Text
	if a.StripMathContainer {
		text = StripMathContainer(text)
	}
	correctness := 0
	if a.IsCorrect {
		correctness = correctnessFull
	}
	return answerPayload{
		Description: text,
		Correctness: correctness,
		Metadata:    a.EnsureMetadata(version),
	}
}
