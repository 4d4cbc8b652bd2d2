// Package analysis orchestrates discovery, extraction, pattern detection,
// duplicate detection, and consolidation scoring into one analysis run.
package analysis

import (
	"context"
	"time"

	"arktools/internal/consolidate"
	"arktools/internal/discovery"
	"arktools/internal/duplicates"
	"arktools/internal/extract"
	"arktools/internal/logging"
	"arktools/internal/patterns"
)

// Summary aggregates counts for the run.
type Summary struct {
	TotalFiles      int `json:"total_files"`
	TotalComponents int `json:"total_components"`
	PatternsFound   int `json:"patterns_found"`
	DuplicatesFound int `json:"duplicates_found"`
}

// Metrics are the timing metrics of an analysis run.
type Metrics struct {
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
	FilesPerSecond       float64 `json:"files_per_second"`
	ComponentsPerFile    float64 `json:"components_per_file"`
	DuplicatePercentage  float64 `json:"duplicate_percentage"`
}

// Error is a recovered per-file or per-phase failure. The list is always
// present in results, possibly empty; its entries never flip overall
// success.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Phase   string `json:"phase"`
}

// Result is the terminal artifact of one analysis run.
type Result struct {
	AnalysisID                 string                    `json:"analysis_id"`
	AnalysisType               string                    `json:"analysis_type"`
	Directory                  string                    `json:"directory"`
	Timestamp                  time.Time                 `json:"timestamp"`
	Summary                    Summary                   `json:"summary"`
	FilesAnalyzed              []discovery.DiscoveredFile `json:"files_analyzed"`
	Components                 []extract.Component       `json:"components"`
	PatternsFound              []patterns.Pattern        `json:"patterns_found"`
	DuplicatesDetected         []duplicates.Pair         `json:"duplicates_detected"`
	ConsolidationOpportunities []consolidate.Opportunity `json:"consolidation_opportunities"`
	Recommendations            []Recommendation          `json:"recommendations"`
	Metrics                    Metrics                   `json:"metrics"`
	Errors                     []Error                   `json:"errors"`
}

// Engine runs the multi-phase analysis pipeline. All collaborators are
// injected; the engine holds no global state.
type Engine struct {
	discoverer *discovery.Discoverer
	extractor  *extract.Extractor
	patterns   *patterns.Detector
	duplicates *duplicates.Detector
	planner    *consolidate.Planner
	logger     *logging.Logger
}

// NewEngine creates an analysis engine from its phase collaborators.
func NewEngine(discoverer *discovery.Discoverer, extractor *extract.Extractor, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Engine{
		discoverer: discoverer,
		extractor:  extractor,
		patterns:   patterns.NewDetector(logger),
		duplicates: duplicates.NewDetector(logger),
		planner:    consolidate.NewPlanner(logger),
		logger:     logger.WithComponent("analysis"),
	}
}

// Analyze runs the pipeline: discovery, extraction, pattern detection,
// duplicate detection, consolidation scoring, recommendations. Per-file
// failures are recorded in the result's error list; only discovery of the
// directory itself can fail the run.
func (e *Engine) Analyze(ctx context.Context, directory string, tier discovery.Tier, analysisID string) (*Result, error) {
	start := time.Now()
	e.logger.Info("starting analysis", map[string]interface{}{
		"directory": directory,
		"tier":      string(tier),
		"id":        analysisID,
	})

	result := &Result{
		AnalysisID:   analysisID,
		AnalysisType: string(tier),
		Directory:    directory,
		Timestamp:    start.UTC(),
		Errors:       []Error{},
	}

	files, err := e.discoverer.Discover(ctx, directory, tier)
	if err != nil {
		return nil, err
	}
	result.FilesAnalyzed = files
	result.Summary.TotalFiles = len(files)

	extraction := e.extractor.Extract(ctx, files)
	result.Components = extraction.Components
	result.Summary.TotalComponents = len(extraction.Components)
	for _, fe := range extraction.Errors {
		result.Errors = append(result.Errors, Error{
			Type:    "extraction_error",
			Message: fe.Message,
			Phase:   fe.Phase,
		})
	}

	result.PatternsFound = e.patterns.Detect(extraction.Components)
	result.Summary.PatternsFound = len(result.PatternsFound)

	result.DuplicatesDetected = e.duplicates.Detect(extraction.Components)
	result.Summary.DuplicatesFound = len(result.DuplicatesDetected)

	result.ConsolidationOpportunities = e.planner.Plan(
		extraction.Components, result.PatternsFound, result.DuplicatesDetected)

	result.Recommendations = Recommend(result)

	elapsed := time.Since(start).Seconds()
	result.Metrics = Metrics{ExecutionTimeSeconds: elapsed}
	if elapsed > 0 {
		result.Metrics.FilesPerSecond = float64(len(files)) / elapsed
	}
	if len(files) > 0 {
		result.Metrics.ComponentsPerFile = float64(len(extraction.Components)) / float64(len(files))
	}
	if len(extraction.Components) > 0 {
		result.Metrics.DuplicatePercentage = float64(len(result.DuplicatesDetected)) / float64(len(extraction.Components)) * 100
	}

	e.logger.Info("analysis complete", map[string]interface{}{
		"id":         analysisID,
		"files":      len(files),
		"components": len(extraction.Components),
		"duplicates": len(result.DuplicatesDetected),
		"seconds":    elapsed,
	})
	return result, nil
}

// ComponentByID finds a component in the result; used by downstream planning
// to embed source text into operations.
func (r *Result) ComponentByID(id string) (extract.Component, bool) {
	for _, c := range r.Components {
		if c.ID == id {
			return c, true
		}
	}
	return extract.Component{}, false
}
