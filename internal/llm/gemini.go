package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const mapsFallbackTitle = "Map View"

// GeminiModels is the slice of the genai client the caller depends on.
type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiCaller struct {
	models GeminiModels
	model  string
}

func NewGeminiCaller(ctx context.Context, apiKey, model string) (*GeminiCaller, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiCaller(client.Models, model), nil
}

func newGeminiCaller(models GeminiModels, model string) *GeminiCaller {
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	return &GeminiCaller{models: models, model: model}
}

func (g *GeminiCaller) ModelName() string { return g.model }

func (g *GeminiCaller) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), geminiConfig(req))
	if err != nil {
		return Response{}, err
	}
	if resp == nil {
		return Response{}, ErrEmptyResponse
	}
	out := Response{Text: strings.TrimSpace(resp.Text())}
	out.Web, out.Maps = extractCitations(resp)
	return out, nil
}

// geminiConfig enables search and maps grounding. The API rejects a
// response schema alongside grounding tools, so JSON shape is requested in
// the prompt instead.
func geminiConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if !req.Grounding {
		return cfg
	}
	cfg.Tools = []*genai.Tool{
		{GoogleSearch: &genai.GoogleSearch{}},
		{GoogleMaps: &genai.GoogleMaps{}},
	}
	if req.Location != nil {
		cfg.ToolConfig = &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(req.Location.Latitude),
					Longitude: genai.Ptr(req.Location.Longitude),
				},
			},
		}
	}
	return cfg
}

func extractCitations(resp *genai.GenerateContentResponse) (web, maps []Citation) {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].GroundingMetadata == nil {
		return nil, nil
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil {
			continue
		}
		if chunk.Web != nil && chunk.Web.URI != "" {
			title := chunk.Web.Title
			if title == "" {
				title = chunk.Web.URI
			}
			web = append(web, Citation{Title: title, URI: chunk.Web.URI})
		}
		if chunk.Maps != nil && chunk.Maps.URI != "" {
			title := chunk.Maps.Title
			if title == "" {
				title = mapsFallbackTitle
			}
			maps = append(maps, Citation{Title: title, URI: chunk.Maps.URI})
		}
	}
	return web, maps
}
