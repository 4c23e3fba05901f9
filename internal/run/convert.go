package run

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tableforge/internal/config"
	"tableforge/internal/diagnostic"
	"tableforge/internal/emit"
	"tableforge/internal/ingest"
	"tableforge/internal/localize"
	"tableforge/internal/resolve"
	"tableforge/internal/tagstore"
)

// Options carries everything a run needs from the caller.
type Options struct {
	// Root is the data directory holding the source tables.
	Root string
	// Config is the loaded run configuration.
	Config config.Config
	// DiffList, when non-empty, is a newline-separated list of changed
	// files (for example from git diff); only eligible entries are
	// processed. An empty usable set falls back to a full scan.
	DiffList string
	// Logger receives structured progress; nil means silent.
	Logger *zap.Logger
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}

	return o.Logger
}

// resolvePath anchors a config-relative path at the run root.
func (o *Options) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(o.Root, p)
}

// Convert executes a conversion run. The tag store is saved exactly once
// before Convert returns, regardless of how the run went; the returned
// error covers run-level failures only (target collection, store save),
// while per-file failures land in the report.
func Convert(opts Options) (rep *Report, err error) {
	log := opts.logger()
	started := time.Now()

	cfg := opts.Config
	resolverCfg, err := cfg.ResolverConfig()
	if err != nil {
		return nil, err
	}

	rep = &Report{
		RunID: uuid.NewString(),
		Mode:  ModeFull,
		Root:  opts.Root,
	}

	diags := &diagnostic.Diagnostics{}

	storePath := opts.resolvePath(cfg.Store)
	store, loadErr := tagstore.Load(storePath)
	if loadErr != nil {
		// Recovered with an empty store; every downstream reference will
		// reallocate, so make the situation loud.
		log.Warn("tag store unreadable, starting empty",
			zap.String("path", storePath), zap.Error(loadErr))
		diags.AddWarning("store_corrupt", loadErr.Error(), diagnostic.Location{File: cfg.Store})
	}

	// The store saves exactly once, whatever happens past this point.
	defer func() {
		if saveErr := store.Save(storePath); saveErr != nil {
			log.Error("saving tag store", zap.Error(saveErr))
			if err == nil {
				err = saveErr
			}
			return
		}

		log.Info("tag store saved",
			zap.String("path", storePath), zap.Int("tags", store.Len()))
	}()

	targets, mode, err := collectTargets(opts, log)
	if err != nil {
		return rep, fmt.Errorf("collecting targets: %w", err)
	}
	rep.Mode = mode
	rep.Targets = len(targets)

	resolver := resolve.NewResolver(store, resolverCfg, diags)
	collector := localize.NewCollector(cfg.Localize.Rewrite, diags)
	outDir := opts.resolvePath(cfg.OutputDir)

	for _, rel := range targets {
		if convertFile(opts, rel, outDir, resolver, collector, diags, rep, log) {
			rep.Converted++
		}
	}

	if cfg.Localize.Enabled && collector.Len() > 0 {
		if lerr := writeLocalTables(opts, collector); lerr != nil {
			diags.AddError("local_write_failed", lerr.Error(), diagnostic.Location{})
		}
	}
	rep.LocalKeys = collector.Len()

	rep.NewTags = resolver.NewTags
	rep.ResolvedCells = resolver.ResolvedCells
	rep.StoreTags = store.Len()
	rep.Warnings = len(diags.Warnings)
	rep.Errors = len(diags.Errors)
	rep.DurationMS = time.Since(started).Milliseconds()

	logDiagnostics(log, diags)
	log.Info("run finished",
		zap.String("run_id", rep.RunID),
		zap.String("mode", rep.Mode),
		zap.Int("converted", rep.Converted),
		zap.Int("failed", rep.Failed),
		zap.Int("new_tags", rep.NewTags))

	return rep, nil
}

// convertFile processes one source file end to end. Returns true when the
// file converted and its JSON was written.
func convertFile(
	opts Options,
	rel, outDir string,
	resolver *resolve.Resolver,
	collector *localize.Collector,
	diags *diagnostic.Diagnostics,
	rep *Report,
	log *zap.Logger,
) bool {
	cfg := opts.Config
	path := filepath.Join(opts.Root, filepath.FromSlash(rel))

	sheet, err := ingest.ReadSheet(path)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptySheet) {
			log.Info("skipping empty sheet", zap.String("file", rel))
			rep.Skipped++
			return false
		}

		diags.AddError("read_failed", err.Error(), diagnostic.Location{File: rel})
		failFile(rep, rel)
		return false
	}

	if err := resolver.ResolveSheet(sheet); err != nil {
		// The resolver already filed the diagnostic; the sheet is
		// discarded but tags allocated so far stay in the store.
		log.Warn("file failed to resolve", zap.String("file", rel), zap.Error(err))
		failFile(rep, rel)
		return false
	}

	if cfg.Localize.Enabled {
		collector.CollectSheet(sheet)
	}

	outPath, err := emit.WriteSheet(outDir, sheet)
	if err != nil {
		diags.AddError("write_failed", err.Error(), diagnostic.Location{File: rel})
		failFile(rep, rel)
		return false
	}

	log.Debug("converted", zap.String("file", rel), zap.String("out", outPath))

	return true
}

func failFile(rep *Report, rel string) {
	rep.Failed++
	rep.FailedFiles = append(rep.FailedFiles, rel)
}

// collectTargets picks the run's file set and its deterministic order.
func collectTargets(opts Options, log *zap.Logger) ([]string, string, error) {
	if opts.DiffList != "" {
		targets, err := ingest.CollectFromList(opts.Root, opts.DiffList)
		if err != nil {
			return nil, ModeDiff, err
		}
		if len(targets) > 0 {
			return targets, ModeDiff, nil
		}

		log.Info("no usable targets in diff list, falling back to full scan")
	}

	targets, err := ingest.Collect(opts.Root)

	return targets, ModeFull, err
}

func writeLocalTables(opts Options, collector *localize.Collector) error {
	stem := opts.resolvePath(opts.Config.Localize.Out)

	// A run may cover only part of the tree (diff mode); keys from sheets
	// outside the target set and translations already delivered must
	// survive, so the existing table is folded in before writing.
	if err := collector.MergeFile(stem + ".json"); err != nil {
		return err
	}

	if err := collector.WriteJSON(stem + ".json"); err != nil {
		return err
	}

	return collector.WriteCSV(stem + ".csv")
}

func logDiagnostics(log *zap.Logger, diags *diagnostic.Diagnostics) {
	for _, d := range diags.Warnings {
		log.Warn(d.String())
	}
	for _, d := range diags.Errors {
		log.Error(d.String())
	}
}
