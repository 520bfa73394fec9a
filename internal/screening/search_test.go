package screening

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joelkehle/kyc-screener/internal/llm"
)

type historyRecorder struct {
	queries []string
	err     error
}

func (h *historyRecorder) AddSearch(q string) error {
	h.queries = append(h.queries, q)
	return h.err
}

func TestSearchEmptyQueryIssuesNoRequest(t *testing.T) {
	caller := newQueueCaller(text(`{"companies":[]}`))
	s := NewSearcher(caller, nil, nil)
	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := s.Search(context.Background(), q, nil); !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("query %q: expected ErrEmptyQuery, got %v", q, err)
		}
	}
	if caller.calls() != 0 {
		t.Fatalf("expected no requests, got %d", caller.calls())
	}
}

func TestSearchParsesCandidates(t *testing.T) {
	caller := newQueueCaller(text("```json\n" + `{"companies":[{"name":" Acme Ltd ","registrationNumber":"123","website":"https://acme.example"},{"name":""},{"description":"nameless"}]}` + "\n```"))
	hist := &historyRecorder{}
	s := NewSearcher(caller, nil, hist)
	loc := &llm.LatLng{Latitude: 1, Longitude: 2}

	got, err := s.Search(context.Background(), "  acme  ", loc)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Acme Ltd" || got[0].RegistrationNumber != "123" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	req := caller.requests[0]
	if !req.Grounding || req.Location != loc || !strings.Contains(req.Prompt, `"acme"`) {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(hist.queries) != 1 || hist.queries[0] != "acme" {
		t.Fatalf("expected trimmed query recorded, got %v", hist.queries)
	}
}

func TestSearchEmptyResultIsValid(t *testing.T) {
	for _, body := range []string{`{"companies":[]}`, `{}`, `[]`} {
		s := NewSearcher(newQueueCaller(text(body)), nil, nil)
		got, err := s.Search(context.Background(), "nobody", nil)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", body, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("%s: expected empty non-nil list, got %#v", body, got)
		}
	}
}

func TestSearchFailures(t *testing.T) {
	cases := map[string]queued{
		"transport":   fail(errUnavailable),
		"unparsable":  text("no companies here"),
		"empty text":  text(""),
		"wrong shape": text(`{"companies":"Acme"}`),
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			hist := &historyRecorder{}
			s := NewSearcher(newQueueCaller(q), nil, hist)
			_, err := s.Search(context.Background(), "acme", nil)
			if !errors.Is(err, ErrSearchFailed) {
				t.Fatalf("expected ErrSearchFailed, got %v", err)
			}
			if len(hist.queries) != 0 {
				t.Fatalf("failed search must not be recorded, got %v", hist.queries)
			}
		})
	}
}

func TestSearchHistoryErrorDoesNotFailSearch(t *testing.T) {
	hist := &historyRecorder{err: errors.New("disk full")}
	s := NewSearcher(newQueueCaller(text(`{"companies":[{"name":"Acme"}]}`)), nil, hist)
	if _, err := s.Search(context.Background(), "acme", nil); err != nil {
		t.Fatalf("Search: %v", err)
	}
}
