// Package review asks a Gemini model on Vertex AI for a free-text review of
// a paper, or for a structured appraisal decoded from a JSON answer.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paper-analyzer/internal/domain"

	"cloud.google.com/go/vertexai/genai"
	"github.com/go-playground/validator/v10"
)

const temperature = 0.2

// completion is the model output for one prompt.
type completion struct {
	text         string
	promptTokens int
	outputTokens int
}

// generator runs a single system+user prompt against a model.
type generator interface {
	generate(ctx context.Context, spec promptSpec, prompt string) (*completion, error)
}

// Reviewer implements domain.Reviewer.
type Reviewer struct {
	gen      generator
	model    string
	maxChars int
	validate *validator.Validate
	logger   domain.Logger
	closer   func() error
}

// NewVertexReviewer creates a reviewer backed by Vertex AI. It fails when
// no project is configured.
func NewVertexReviewer(ctx context.Context, cfg domain.Config, logger domain.Logger) (*Reviewer, error) {
	if cfg.GetGCPProjectID() == "" {
		return nil, domain.ErrReviewNotConfigured
	}
	client, err := genai.NewClient(ctx, cfg.GetGCPProjectID(), cfg.GetGCPLocation())
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	r := newReviewer(&vertexGenerator{client: client, model: cfg.GetReviewModel()}, cfg.GetReviewModel(), cfg.GetReviewMaxChars(), logger)
	r.closer = client.Close
	return r, nil
}

func newReviewer(gen generator, model string, maxChars int, logger domain.Logger) *Reviewer {
	return &Reviewer{
		gen:      gen,
		model:    model,
		maxChars: maxChars,
		validate: validator.New(),
		logger:   logger,
	}
}

// Close releases the Vertex AI client.
func (r *Reviewer) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// Review runs the prompt selected by req.Kind over the paper text.
func (r *Reviewer) Review(ctx context.Context, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	if err := r.validate.Struct(req); err != nil {
		return nil, &domain.ValidationError{Field: "review", Message: err.Error()}
	}
	spec, ok := prompts[req.Kind]
	if !ok {
		return nil, &domain.ValidationError{Field: "kind", Message: "unknown review kind " + string(req.Kind)}
	}

	prompt, truncated := buildPrompt(req, r.maxChars)
	if truncated {
		r.logger.Info("Review input truncated", "kind", req.Kind, "chars", len(req.Text), "max_chars", r.maxChars)
	}

	out, err := r.gen.generate(ctx, spec, prompt)
	if err != nil {
		r.logger.Error("Review generation failed", err, "kind", req.Kind, "model", r.model)
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}

	res := &domain.ReviewResult{
		Kind:         req.Kind,
		Model:        r.model,
		Content:      out.text,
		Truncated:    truncated,
		PromptTokens: out.promptTokens,
		OutputTokens: out.outputTokens,
	}
	if req.Kind == domain.ReviewAppraisal {
		if res.Appraisal, err = r.parseAppraisal(out.text); err != nil {
			r.logger.Warn("Appraisal output rejected", "model", r.model, "error", err)
			return nil, err
		}
	}
	return res, nil
}

// parseAppraisal decodes the model's JSON answer. A markdown code fence
// around the object is tolerated.
func (r *Reviewer) parseAppraisal(text string) (*domain.Appraisal, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(strings.TrimSuffix(text, "```"))

	var a domain.Appraisal
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidModelOutput, err)
	}
	if err := r.validate.Struct(a); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidModelOutput, err)
	}
	return &a, nil
}

type vertexGenerator struct {
	client *genai.Client
	model  string
}

func (g *vertexGenerator) generate(ctx context.Context, spec promptSpec, prompt string) (*completion, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(spec.maxTokens)
	model.ResponseMIMEType = spec.mimeType
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(spec.system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	out := &completion{text: sb.String()}
	if resp.UsageMetadata != nil {
		out.promptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.outputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}
