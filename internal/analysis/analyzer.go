// Package analysis scores a research paper's structure, clarity and quality.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/textstats"

	"golang.org/x/sync/errgroup"
)

// Analyzer implements domain.ContentAnalyzer.
type Analyzer struct {
	logger       domain.Logger
	keywordLimit int
}

// NewAnalyzer creates a content analyzer.
func NewAnalyzer(logger domain.Logger) *Analyzer {
	return &Analyzer{
		logger:       logger,
		keywordLimit: DefaultKeywordLimit,
	}
}

// Analyze runs the structure, clarity and quality analyses concurrently.
// A failing stage is logged and replaced by its zero result carrying the
// error in its suggestions; only context cancellation fails the call.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*domain.ContentAnalysis, error) {
	res := &domain.ContentAnalysis{
		Structure: domain.StructureAnalysis{Sections: []domain.DetectedSection{}, Suggestions: []string{}},
		Clarity:   domain.ClarityAnalysis{Suggestions: []string{}},
		Quality:   domain.QualityAnalysis{Strengths: []string{}, Weaknesses: []string{}, Recommendations: []string{}},
		Keywords:  []domain.Keyword{},
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return res, nil
	}

	a.logger.Debug("Analyzing content", "chars", len(text))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.stage(gctx, "structure", func() {
			res.Structure = AnalyzeStructure(text)
		})
		if err != nil {
			res.Structure = domain.StructureAnalysis{
				Sections:    []domain.DetectedSection{},
				Suggestions: []string{"Error in analysis: " + err.Error()},
			}
		}
		return nil
	})
	g.Go(func() error {
		err := a.stage(gctx, "clarity", func() {
			res.Stats = textstats.Stats(text)
			res.Clarity = clarityFromStats(text, res.Stats)
		})
		if err != nil {
			res.Clarity = clarityFallback(err)
		}
		return nil
	})
	g.Go(func() error {
		err := a.stage(gctx, "quality", func() {
			res.Quality = AnalyzeQuality(text, DetectSections(text))
		})
		if err != nil {
			res.Quality = domain.QualityAnalysis{
				Strengths:       []string{},
				Weaknesses:      []string{"Error in analysis: " + err.Error()},
				Recommendations: []string{},
			}
		}
		return nil
	})
	g.Go(func() error {
		err := a.stage(gctx, "keywords", func() {
			res.Keywords = ExtractKeywords(text, a.keywordLimit)
		})
		if err != nil {
			res.Keywords = []domain.Keyword{}
		}
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Quality.OverallScore = OverallScore(res.Structure, res.Clarity, res.Quality)
	return res, nil
}

// stage runs fn, turning a panic or a done context into an error that is logged.
func (a *Analyzer) stage(ctx context.Context, name string, fn func()) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s analysis panicked: %v", name, r)
		}
		if err != nil {
			a.logger.Error("Content analysis stage failed", err, "stage", name)
		}
	}()
	fn()
	return nil
}
