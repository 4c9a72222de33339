package bank

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/questionbank-client/internal/transport"
)

// fakeBank is an in-memory question bank speaking the service's wire format.
type fakeBank struct {
	mu        sync.Mutex
	nextID    int
	sets      map[string]map[string]any
	questions map[string]map[string]any
	answers   map[string]map[string]any
	requests  []string
	bodies    map[string]map[string]any

	failAnswersFor map[string]int
	answerDelay    time.Duration
	answerDelays   map[string]time.Duration
	answered       []string
	inFlight       atomic.Int32
	maxInFlight    atomic.Int32
}

func newFakeBank() *fakeBank {
	return &fakeBank{
		sets:           map[string]map[string]any{},
		questions:      map[string]map[string]any{},
		answers:        map[string]map[string]any{},
		bodies:         map[string]map[string]any{},
		failAnswersFor: map[string]int{},
		answerDelays:   map[string]time.Duration{},
	}
}

func (f *fakeBank) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBank) addSet(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[id] = map[string]any{"id": id, "title": title, "ownerId": "owner-1", "questionCount": 0,
		"metadata": map[string]any{"keywords": []any{"math"}, "images": []any{}}}
}

func (f *fakeBank) addQuestion(setID, id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions[id] = map[string]any{"id": id, "title": title, "questionSetId": setID, "ownerId": "owner-1"}
}

func (f *fakeBank) addAnswer(questionID, id, text string, correctness any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[id] = map[string]any{"id": id, "description": text, "questionId": questionID, "correctness": correctness,
		"metadata": map[string]any{"keywords": []any{}, "images": []any{"a.png"}}}
}

func (f *fakeBank) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// answerOrder lists answer fetches in the order the fake finished them.
func (f *fakeBank) answerOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.answered...)
}

func (f *fakeBank) lastBody(key string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeBank) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/question_sets", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, sortedValues(f.sets))
	})
	mux.HandleFunc("POST /v1/question_sets", func(w http.ResponseWriter, r *http.Request) {
		body := f.readBody(w, r, "POST /v1/question_sets")
		if body == nil {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		id := f.id("qs")
		f.sets[id] = map[string]any{"id": id, "title": body["title"], "ownerId": body["owner_id"], "metadata": body["metadata"]}
		writeJSON(w, http.StatusCreated, f.sets[id])
	})
	mux.HandleFunc("GET /v1/question_sets/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.item(w, f.sets, r.PathValue("id"))
	})
	mux.HandleFunc("PUT /v1/question_sets/{id}", func(w http.ResponseWriter, r *http.Request) {
		body := f.readBody(w, r, "PUT /v1/question_sets")
		if body == nil {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		set, ok := f.sets[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		set["title"], set["ownerId"], set["metadata"] = body["title"], body["owner_id"], body["metadata"]
		writeJSON(w, http.StatusOK, set)
	})
	mux.HandleFunc("DELETE /v1/question_sets/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.remove(w, f.sets, r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/question_sets/{id}/questions", func(w http.ResponseWriter, r *http.Request) {
		setID := r.PathValue("id")
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.sets[setID]; !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, filterBy(f.questions, "questionSetId", setID))
	})
	mux.HandleFunc("POST /v1/question_sets/{id}/questions", func(w http.ResponseWriter, r *http.Request) {
		body := f.readBody(w, r, "POST questions")
		if body == nil {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		id := f.id("q")
		f.questions[id] = map[string]any{"id": id, "title": body["title"], "questionSetId": r.PathValue("id"),
			"ownerId": body["owner_id"], "metadata": body["metadata"]}
		writeJSON(w, http.StatusCreated, f.questions[id])
	})

	mux.HandleFunc("GET /v1/questions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, sortedValues(f.questions))
	})
	mux.HandleFunc("GET /v1/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.item(w, f.questions, r.PathValue("id"))
	})
	mux.HandleFunc("PUT /v1/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		body := f.readBody(w, r, "PUT questions")
		if body == nil {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		q, ok := f.questions[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		q["title"], q["ownerId"], q["metadata"] = body["title"], body["owner_id"], body["metadata"]
		writeJSON(w, http.StatusOK, q)
	})
	mux.HandleFunc("DELETE /v1/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.remove(w, f.questions, r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/questions/{id}/answers", func(w http.ResponseWriter, r *http.Request) {
		current := f.inFlight.Add(1)
		defer f.inFlight.Add(-1)
		for {
			peak := f.maxInFlight.Load()
			if current <= peak || f.maxInFlight.CompareAndSwap(peak, current) {
				break
			}
		}
		questionID := r.PathValue("id")
		f.mu.Lock()
		delay := f.answerDelay
		if d, ok := f.answerDelays[questionID]; ok {
			delay = d
		}
		f.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		f.answered = append(f.answered, questionID)
		if status, ok := f.failAnswersFor[questionID]; ok {
			http.Error(w, "boom", status)
			return
		}
		writeJSON(w, http.StatusOK, filterBy(f.answers, "questionId", questionID))
	})
	mux.HandleFunc("POST /v1/questions/{id}/answers", func(w http.ResponseWriter, r *http.Request) {
		body := f.readBody(w, r, "POST answers")
		if body == nil {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		id := f.id("a")
		f.answers[id] = map[string]any{"id": id, "description": body["description"], "questionId": r.PathValue("id"),
			"correctness": body["correctness"], "metadata": body["metadata"]}
		writeJSON(w, http.StatusCreated, f.answers[id])
	})

	mux.HandleFunc("GET /v1/answers", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, sortedValues(f.answers))
	})
	mux.HandleFunc("GET /v1/answers/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.item(w, f.answers, r.PathValue("id"))
	})
	mux.HandleFunc("PUT /v1/answers/{id}", func(w http.ResponseWriter, r *http.Request) {
		body := f.readBody(w, r, "PUT answers")
		if body == nil {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		a, ok := f.answers[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		a["description"], a["correctness"], a["metadata"] = body["description"], body["correctness"], body["metadata"]
		writeJSON(w, http.StatusOK, a)
	})
	mux.HandleFunc("DELETE /v1/answers/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.remove(w, f.answers, r.PathValue("id"))
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		entry := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			entry += "?" + r.URL.RawQuery
		}
		f.requests = append(f.requests, entry)
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeBank) readBody(w http.ResponseWriter, r *http.Request, key string) map[string]any {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	f.mu.Lock()
	f.bodies[key] = body
	f.mu.Unlock()
	return body
}

func (f *fakeBank) item(w http.ResponseWriter, store map[string]map[string]any, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := store[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (f *fakeBank) remove(w http.ResponseWriter, store map[string]map[string]any, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := store[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(store, id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sortedValues(store map[string]map[string]any) []map[string]any {
	keys := make([]string, 0, len(store))
	for k := range store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, store[k])
	}
	return out
}

func filterBy(store map[string]map[string]any, field, value string) []map[string]any {
	out := []map[string]any{}
	for _, obj := range sortedValues(store) {
		if obj[field] == value {
			out = append(out, obj)
		}
	}
	return out
}

// newTestAdapter starts the fake bank and returns an adapter pointed at it.
func newTestAdapter(t *testing.T, f *fakeBank, opts AdapterOptions) *Adapter {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	client := transport.NewClient(transport.Config{BaseURL: srv.URL}, srv.Client(), nil, zerolog.Nop())
	return NewAdapter(client, zerolog.Nop(), opts)
}
