package match

import (
	"context"
	"fmt"
	"math"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Embedder computes a vector for a piece of text. Implementations may be
// remote and rate limited; any error flips the engine into keyword mode for
// the whole run rather than failing the match request.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// embeddingModel is Gemini's current text embedding model.
const embeddingModel = "text-embedding-004"

// GeminiEmbedder computes embeddings through the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
}

// NewGeminiEmbedder creates the embedding client. The caller owns Close.
func NewGeminiEmbedder(ctx context.Context, apiKey string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client}, nil
}

// Embed computes one embedding vector.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := g.client.EmbeddingModel(embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response was empty")
	}
	return res.Embedding.Values, nil
}

// Close releases the underlying API client.
func (g *GeminiEmbedder) Close() error {
	return g.client.Close()
}

// Cosine computes cosine similarity between two vectors, clamped to [0,1].
// Negative similarities clamp to 0 so the score stays comparable with the
// other sub-scores; mismatched or zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
