package services

import (
	"context"
)

// AIClient is the generation/embedding capability consumed by the pipeline.
// Implementations may fail with provider errors; callers own degradation.
type AIClient interface {
	// GenerateText submits a system+user prompt and returns plain text.
	GenerateText(ctx context.Context, system string, user string) (string, error)
	// GenerateJSON submits a prompt with a JSON schema (structured outputs)
	// and returns the decoded object.
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
	// GenerateTextWithImage is the multimodal variant: user prompt plus one
	// image (https or data URL).
	GenerateTextWithImage(ctx context.Context, system string, user string, imageURL string) (string, error)
	// Embed returns one vector per input.
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}
