package image

import "context"

// Request describes a normalized text-to-image request passed to a provider.
type Request struct {
	Prompt    string
	Size      string
	RequestID string
}

// Asset is a generated concept image.
type Asset struct {
	Data   []byte
	URL    string
	Format string
	Width  int
	Height int
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Asset, error)
}
