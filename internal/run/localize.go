package run

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tableforge/internal/diagnostic"
	"tableforge/internal/emit"
	"tableforge/internal/localize"
)

// Localize runs localization key derivation over an already-converted JSON
// tree, the way a standalone post-processing pass would: load each sheet
// JSON, collect local_string texts, rewrite cells to keys, and write the
// localization tables.
func Localize(opts Options) (*Report, error) {
	log := opts.logger()
	started := time.Now()

	cfg := opts.Config
	rep := &Report{
		RunID: uuid.NewString(),
		Mode:  ModeFull,
		Root:  opts.Root,
	}

	jsonRoot := opts.resolvePath(cfg.OutputDir)
	files, err := emit.ListSheetFiles(jsonRoot, cfg.Localize.Out)
	if err != nil {
		return rep, fmt.Errorf("listing sheet files: %w", err)
	}
	rep.Targets = len(files)

	diags := &diagnostic.Diagnostics{}
	collector := localize.NewCollector(cfg.Localize.Rewrite, diags)

	for _, path := range files {
		rel, rerr := filepath.Rel(jsonRoot, path)
		if rerr != nil {
			rel = path
		}

		sheet, lerr := emit.LoadSheet(path)
		if lerr != nil {
			diags.AddError("read_failed", lerr.Error(), diagnostic.Location{File: rel})
			failFile(rep, rel)
			continue
		}

		// A sheet directly under the root has no book directory; its file
		// stem is the sheet name itself.
		if filepath.Dir(path) == filepath.Clean(jsonRoot) {
			sheet.File = sheet.Name
		}

		changed := collector.CollectSheet(sheet)
		if !changed {
			rep.Converted++
			continue
		}

		if eerr := emit.WriteSheetFile(path, sheet); eerr != nil {
			diags.AddError("write_failed", eerr.Error(), diagnostic.Location{File: rel})
			failFile(rep, rel)
			continue
		}

		rep.Rewritten++
		rep.Converted++
	}

	if collector.Len() > 0 {
		if werr := writeLocalTables(opts, collector); werr != nil {
			diags.AddError("local_write_failed", werr.Error(), diagnostic.Location{})
		}
	}

	rep.LocalKeys = collector.Len()
	rep.Warnings = len(diags.Warnings)
	rep.Errors = len(diags.Errors)
	rep.DurationMS = time.Since(started).Milliseconds()

	logDiagnostics(log, diags)
	log.Info("localize finished",
		zap.String("run_id", rep.RunID),
		zap.Int("keys", rep.LocalKeys),
		zap.Int("rewritten", rep.Rewritten))

	return rep, nil
}
