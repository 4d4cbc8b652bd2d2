// Package engine coordinates the full pipeline: it owns the session,
// the versioned output directory, the safety guard, and the artifact
// store, and drives analysis, planning and generation through them.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"arktools/internal/analysis"
	"arktools/internal/config"
	"arktools/internal/discovery"
	arkerrors "arktools/internal/errors"
	"arktools/internal/extract"
	"arktools/internal/generate"
	"arktools/internal/logging"
	"arktools/internal/safety"
	"arktools/internal/store"
	"arktools/internal/transform"
	"arktools/internal/version"
)

// State tracks session progress. Transitions only move forward.
type State string

const (
	StateCreated   State = "CREATED"
	StateProtected State = "PROTECTED"
	StateAnalyzed  State = "ANALYZED"
	StatePlanned   State = "PLANNED"
	StateGenerated State = "GENERATED"
)

var stateRank = map[State]int{
	StateCreated:   0,
	StateProtected: 1,
	StateAnalyzed:  2,
	StatePlanned:   3,
	StateGenerated: 4,
}

// Artifact kinds persisted through the store.
const (
	kindAnalysis   = "analysis_results"
	kindPlan       = "transformation_plan"
	kindGeneration = "generation_results"
)

const manifestName = "session.yaml"

type sessionManifest struct {
	SessionID  string `yaml:"session_id"`
	Timestamp  string `yaml:"timestamp"`
	Workspace  string `yaml:"workspace"`
	ArkVersion string `yaml:"ark_version"`
	State      State  `yaml:"state"`
}

// Options configures engine construction.
type Options struct {
	// SessionDir reuses an existing session's output directory instead
	// of creating a new versioned one. Needed when plan/generate run in
	// a separate invocation from analyze.
	SessionDir string
	// ForceFallback disables the native parser even when compiled in.
	ForceFallback bool
	Logger        *logging.Logger
}

// Engine is the session orchestrator.
type Engine struct {
	cfg       *config.Config
	logger    *logging.Logger
	guard     *safety.Guard
	analyzer  *analysis.Engine
	planner   *transform.Planner
	generator *generate.Generator
	artifacts store.Store

	sessionID string
	outputDir string
	state     State
}

// New builds an engine for the configured workspace. A fresh session
// gets a versioned output directory under the workspace output root;
// passing Options.SessionDir resumes an existing one.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	logger = logger.WithComponent("engine")

	e := &Engine{
		cfg:       cfg,
		logger:    logger,
		sessionID: uuid.NewString(),
		state:     StateCreated,
	}

	if opts.SessionDir != "" {
		e.outputDir = opts.SessionDir
		if err := e.readManifest(); err != nil {
			return nil, err
		}
	} else {
		timestamp := time.Now().Format("20060102_150405")
		e.outputDir = filepath.Join(cfg.Workspace, cfg.Output.RootName, "v_"+timestamp)
		if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := e.writeManifest(); err != nil {
			return nil, err
		}
	}

	artifacts, err := openStore(cfg.Store.Backend, e.outputDir)
	if err != nil {
		return nil, err
	}
	e.artifacts = artifacts

	nativeActive := extract.NativeAvailable() && !opts.ForceFallback
	var checker safety.SyntaxChecker
	if nativeActive {
		checker = extract.NewChecker()
	}

	e.guard = safety.NewGuard(safety.Options{
		BackupRoot:        filepath.Join(e.outputDir, "backups"),
		OutputRootName:    cfg.Output.RootName,
		MaxGeneratedBytes: cfg.Safety.MaxGeneratedFileBytes,
		Checker:           checker,
		Logger:            logger,
	})

	extractor := extract.NewExtractor(extract.Options{
		ParseTimeout:  time.Duration(cfg.Analysis.ParseTimeoutSeconds) * time.Second,
		Workers:       cfg.Analysis.Workers,
		CacheSize:     cfg.Analysis.CacheSize,
		ForceFallback: opts.ForceFallback,
		Logger:        logger,
	})
	e.analyzer = analysis.NewEngine(discovery.NewDiscoverer(logger), extractor, logger)
	e.planner = transform.NewPlanner(extractor.NativeActive(), logger)
	e.generator = generate.NewGenerator(e.guard, logger)

	for _, root := range cfg.Safety.ProtectedRoots {
		if !filepath.IsAbs(root) {
			root = filepath.Join(cfg.Workspace, root)
		}
		if err := e.guard.Protect(root); err != nil {
			return nil, err
		}
	}
	if len(cfg.Safety.ProtectedRoots) > 0 {
		e.advance(StateProtected)
	}

	logger.Info("engine initialized", map[string]interface{}{
		"session":   e.sessionID,
		"workspace": cfg.Workspace,
		"outputDir": e.outputDir,
		"native":    nativeActive,
	})
	return e, nil
}

func openStore(backend, dir string) (store.Store, error) {
	switch backend {
	case "sqlite":
		return store.OpenSQLiteStore(dir)
	default:
		return store.NewFileStore(dir)
	}
}

// Analyze protects the target directory, runs the analysis pipeline,
// and persists the result. Returns the result and its store location.
func (e *Engine) Analyze(ctx context.Context, directory, tierName string) (*analysis.Result, string, error) {
	tier, err := discovery.ParseTier(tierName)
	if err != nil {
		return nil, "", err
	}

	// Source under analysis is never a write target.
	if err := e.guard.Protect(directory); err != nil {
		return nil, "", err
	}
	e.advance(StateProtected)

	analysisID := uuid.NewString()
	result, err := e.analyzer.Analyze(ctx, directory, tier, analysisID)
	if err != nil {
		return nil, "", err
	}

	location, err := e.artifacts.Save(kindAnalysis, analysisID, result)
	if err != nil {
		return nil, "", err
	}
	e.advance(StateAnalyzed)

	e.logger.Info("analysis persisted", map[string]interface{}{
		"analysis": analysisID,
		"location": location,
	})
	return result, location, nil
}

// CreatePlan loads a prior analysis by id and produces a transformation
// plan from it. A missing analysis is a NotFound error naming the id.
func (e *Engine) CreatePlan(analysisID, strategyName string) (*transform.Plan, string, error) {
	strategy, err := transform.ParseStrategy(strategyName)
	if err != nil {
		return nil, "", err
	}

	var result analysis.Result
	if err := e.artifacts.Load(kindAnalysis, analysisID, &result); err != nil {
		return nil, "", arkerrors.Wrap(arkerrors.NotFound,
			fmt.Sprintf("analysis results not found: %s", analysisID), err).
			WithDetails(map[string]interface{}{"analysis_id": analysisID})
	}

	planID := uuid.NewString()
	plan, err := e.planner.CreatePlan(&result, strategy, planID)
	if err != nil {
		return nil, "", err
	}

	location, err := e.artifacts.Save(kindPlan, planID, plan)
	if err != nil {
		return nil, "", err
	}
	e.advance(StatePlanned)

	e.logger.Info("plan persisted", map[string]interface{}{
		"plan":     planID,
		"location": location,
	})
	return plan, location, nil
}

// Generate loads a prior plan by id and executes it into the session
// output directory. A missing plan is a NotFound error naming the id.
// After a real run a human-readable report is written beside the
// artifacts.
func (e *Engine) Generate(ctx context.Context, planID string, dryRun bool) (*generate.Result, string, error) {
	var plan transform.Plan
	if err := e.artifacts.Load(kindPlan, planID, &plan); err != nil {
		return nil, "", arkerrors.Wrap(arkerrors.NotFound,
			fmt.Sprintf("transformation plan not found: %s", planID), err).
			WithDetails(map[string]interface{}{"plan_id": planID})
	}

	generationID := uuid.NewString()
	result, err := e.generator.Generate(ctx, &plan, filepath.Join(e.outputDir, "generated"), dryRun, generationID)
	if err != nil {
		return nil, "", err
	}

	location, saveErr := e.artifacts.Save(kindGeneration, generationID, result)
	if saveErr != nil {
		return nil, "", saveErr
	}

	if !dryRun {
		if err := e.writeGenerationReport(result); err != nil {
			e.logger.Warn("failed to write generation report", map[string]interface{}{
				"error": err.Error(),
			})
		}
		e.advance(StateGenerated)
	}

	e.logger.Info("generation persisted", map[string]interface{}{
		"generation": generationID,
		"dryRun":     dryRun,
		"location":   location,
	})
	return result, location, nil
}

// Backup snapshots a file through the guard under a fresh backup id.
func (e *Engine) Backup(filePath string) (string, error) {
	return e.guard.Backup(filePath, uuid.NewString())
}

// Rollback restores a backed-up file. Reports success, never errors.
func (e *Engine) Rollback(originalPath string) bool {
	return e.guard.Rollback(originalPath)
}

// SafetyStatus exposes the guard's status for reporting.
func (e *Engine) SafetyStatus() safety.Status {
	return e.guard.GetStatus()
}

// SessionInfo summarizes the current session.
type SessionInfo struct {
	SessionID      string   `json:"session_id"`
	Workspace      string   `json:"workspace"`
	OutputDir      string   `json:"output_dir"`
	ArkVersion     string   `json:"ark_version"`
	State          State    `json:"state"`
	ProtectedPaths []string `json:"protected_paths"`
	BackupCount    int      `json:"backup_count"`
}

// GetSessionInfo returns the current session summary.
func (e *Engine) GetSessionInfo() SessionInfo {
	return SessionInfo{
		SessionID:      e.sessionID,
		Workspace:      e.cfg.Workspace,
		OutputDir:      e.outputDir,
		ArkVersion:     version.Version,
		State:          e.state,
		ProtectedPaths: e.guard.ProtectedPaths(),
		BackupCount:    e.guard.BackupCount(),
	}
}

// OutputDir returns the session's output directory.
func (e *Engine) OutputDir() string { return e.outputDir }

// SessionID returns the session identifier.
func (e *Engine) SessionID() string { return e.sessionID }

// State returns the current session state.
func (e *Engine) State() State { return e.state }

// Close releases the artifact store.
func (e *Engine) Close() error {
	return e.artifacts.Close()
}

func (e *Engine) advance(to State) {
	if stateRank[to] <= stateRank[e.state] {
		return
	}
	from := e.state
	e.state = to
	if err := e.writeManifest(); err != nil {
		e.logger.Warn("failed to update session manifest", map[string]interface{}{
			"error": err.Error(),
		})
	}
	e.logger.Debug("session state advanced", map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
}

func (e *Engine) writeManifest() error {
	manifest := sessionManifest{
		SessionID:  e.sessionID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Workspace:  e.cfg.Workspace,
		ArkVersion: version.Version,
		State:      e.state,
	}
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal session manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(e.outputDir, manifestName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write session manifest: %w", err)
	}
	return nil
}

func (e *Engine) readManifest() error {
	data, err := os.ReadFile(filepath.Join(e.outputDir, manifestName))
	if err != nil {
		return arkerrors.Wrap(arkerrors.NotFound,
			fmt.Sprintf("session manifest not found in %s", e.outputDir), err)
	}
	var manifest sessionManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse session manifest: %w", err)
	}
	e.sessionID = manifest.SessionID
	e.state = manifest.State
	return nil
}

func (e *Engine) writeGenerationReport(result *generate.Result) error {
	totalLines := 0
	for _, f := range result.GeneratedFiles {
		totalLines += f.Lines
	}

	lines := []string{
		"# ARK Code Generation Report",
		"Generated: " + time.Now().Format(time.RFC3339),
		"Session ID: " + e.sessionID,
		"Generation ID: " + result.GenerationID,
		"",
		"## Summary",
		fmt.Sprintf("- Files generated: %d", result.Metrics.FilesGenerated),
		fmt.Sprintf("- Lines of code: %d", totalLines),
		fmt.Sprintf("- Operations executed: %d", result.Metrics.OperationsExecuted),
		fmt.Sprintf("- Errors encountered: %d", result.Metrics.ErrorsEncountered),
		"",
		"## Generated Files",
	}
	for _, f := range result.GeneratedFiles {
		lines = append(lines, "- "+f.Path)
		if f.Description != "" {
			lines = append(lines, "  "+f.Description)
		}
	}
	lines = append(lines,
		"",
		"## Safety Guarantees",
		"- Original source files were never modified",
		"- All outputs are in the versioned session directory",
		"- Complete rollback capability available",
		"- Generated code syntax validated",
		"",
		"Location: "+e.outputDir,
		"",
		"Generated by ARK v"+version.Version,
	)

	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	return os.WriteFile(filepath.Join(e.outputDir, "GENERATION_REPORT.md"), []byte(content), 0o644)
}
