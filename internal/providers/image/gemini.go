package image

import (
	"context"

	"fieldquote/internal/providers/genai"
)

// GeminiGenerator adapts the genai client to the Generator contract.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Asset, error) {
	rendered, err := g.client.GenerateConcept(ctx, genai.RenderRequest{
		Prompt:    req.Prompt,
		Size:      req.Size,
		RequestID: req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	return &Asset{
		Data:   rendered.Data,
		URL:    rendered.URL,
		Format: rendered.Format,
		Width:  rendered.Width,
		Height: rendered.Height,
	}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
