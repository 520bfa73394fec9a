package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/joelkehle/kyc-screener/internal/llm"
)

var (
	ErrEmptyQuery   = errors.New("search query is empty")
	ErrSearchFailed = errors.New("failed to search for companies")
)

const searchPrompt = `Find companies matching the query: %q. Provide official names, and if available, their registration number, address, website, and a brief description. If no companies are found, return an empty array.

Respond ONLY with a JSON object of the form {"companies": [{"name": "", "registrationNumber": "", "address": "", "website": "", "description": ""}]} without any markdown formatting or extra text.`

// HistoryRecorder is notified of queries that completed successfully.
type HistoryRecorder interface {
	AddSearch(query string) error
}

type Searcher struct {
	caller  llm.Caller
	logger  *zap.Logger
	history HistoryRecorder
}

func NewSearcher(caller llm.Caller, logger *zap.Logger, history HistoryRecorder) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{caller: caller, logger: logger, history: history}
}

type searchPayload struct {
	Companies []Company `json:"companies"`
}

// Search returns candidate companies for a free-text query. An empty result
// is not an error.
func (s *Searcher) Search(ctx context.Context, query string, loc *llm.LatLng) ([]Company, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	ctx, span := tracer.Start(ctx, "company.search")
	defer span.End()
	span.SetAttributes(attribute.String("search.query", query), attribute.Bool("search.located", loc != nil))

	resp, err := s.caller.Generate(ctx, llm.Request{
		Prompt:    fmt.Sprintf(searchPrompt, query),
		Grounding: true,
		Location:  loc,
	})
	if err == nil && resp.Text == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("company search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	companies, err := parseCompanies(resp.Text)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("company search returned unparsable payload", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	span.SetAttributes(attribute.Int("search.results", len(companies)))
	s.logger.Debug("company search complete", zap.String("query", query), zap.Int("results", len(companies)))

	if s.history != nil {
		if err := s.history.AddSearch(query); err != nil {
			s.logger.Warn("record search history", zap.String("query", query), zap.Error(err))
		}
	}
	return companies, nil
}

func parseCompanies(raw string) ([]Company, error) {
	data, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var payload searchPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		// Some responses return the bare array.
		var list []Company
		if err2 := json.Unmarshal(data, &list); err2 != nil {
			return nil, fmt.Errorf("decode companies: %w", err)
		}
		payload.Companies = list
	}
	out := make([]Company, 0, len(payload.Companies))
	for _, c := range payload.Companies {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
