package bank

import (
	"fmt"
	"strconv"
)

// Criterion is one search filter. Params returns the query parameters it
// contributes.
type Criterion interface {
	Params() map[string]string
}

// Criteria is an ordered collection of criteria. Later entries win on
// duplicate keys.
type Criteria []Criterion

// Term is a free-text search.
type Term string

func (t Term) Params() map[string]string { return map[string]string{"q": string(t)} }

// Language filters by language code.
type Language string

func (l Language) Params() map[string]string { return map[string]string{"lang": string(l)} }

// Tag filters by tag.
type Tag string

func (t Tag) Params() map[string]string { return map[string]string{"tag": string(t)} }

// Keyword filters by metadata keyword.
type Keyword string

func (k Keyword) Params() map[string]string { return map[string]string{"keyword": string(k)} }

// Owner filters by owner id.
type Owner string

func (o Owner) Params() map[string]string { return map[string]string{"owner_id": string(o)} }

// Page limits the result window. Zero values are omitted.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Params() map[string]string {
	params := map[string]string{}
	if p.Limit > 0 {
		params["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Offset > 0 {
		params["offset"] = strconv.Itoa(p.Offset)
	}
	return params
}

// Field sets an arbitrary query parameter.
type Field struct {
	Key   string
	Value string
}

func (f Field) Params() map[string]string { return map[string]string{f.Key: f.Value} }

// Compose flattens a criterion, or an ordered collection of criteria, into a
// single query parameter map. Accepted inputs are a Criterion, Criteria,
// []Criterion, or []any holding only criteria.
func Compose(input any) (map[string]string, error) {
	var list []Criterion
	switch v := input.(type) {
	case Criteria:
		list = v
	case []Criterion:
		list = v
	case []any:
		list = make([]Criterion, 0, len(v))
		for i, item := range v {
			c, ok := item.(Criterion)
			if !ok || c == nil {
				return nil, fmt.Errorf("%w: element %d is %T", ErrInvalidSearchCriteria, i, item)
			}
			list = append(list, c)
		}
	case Criterion:
		list = []Criterion{v}
	default:
		return nil, fmt.Errorf("%w: unsupported input %T", ErrInvalidSearchCriteria, input)
	}

	params := make(map[string]string)
	for i, c := range list {
		if c == nil {
			return nil, fmt.Errorf("%w: element %d is nil", ErrInvalidSearchCriteria, i)
		}
		for k, val := range c.Params() {
			params[k] = val
		}
	}
	return params, nil
}
