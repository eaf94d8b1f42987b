package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/carteirapulse/internal/domain/models"
	"github.com/guttosm/carteirapulse/internal/logger"
	"github.com/guttosm/carteirapulse/internal/storage"
)

const (
	// maxWritesPerBatch keeps each insert transaction comfortably under the
	// backend's per-batch write limit, so a crash mid-import leaves a durable
	// prefix instead of losing all progress.
	maxWritesPerBatch = 450

	statementSuffix = ".xlsx"
)

// PreparedImport is the outcome of the parsing phase: fully identified
// operations plus a summary with TotalRowsRead filled in. Import/duplicate
// counts are filled later by the persistence phase, the only place that
// knows which identities already exist.
type PreparedImport struct {
	Operations []models.Operation
	Summary    models.ImportSummary
}

// PrepareImport reads a statement workbook, validates its columns, and
// normalizes every row into an identified operation.
//
// Failure modes:
//   - unreadable workbook or missing required columns fail the whole import
//     (the latter with a *MissingColumnsError listing the columns);
//   - rows the normalizer cannot resolve are dropped silently.
func PrepareImport(r io.Reader) (*PreparedImport, error) {
	sheet, err := ParseXLSX(r)
	if err != nil {
		return nil, err
	}

	if ok, missing := ValidateExpectedColumns(sheet.Headers); !ok {
		return nil, &MissingColumnsError{Missing: missing}
	}

	operations := make([]models.Operation, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		draft, ok := NormalizeRow(row)
		if !ok {
			continue
		}
		operations = append(operations, AttachOperationID(draft))
	}

	return &PreparedImport{
		Operations: operations,
		Summary:    models.ImportSummary{TotalRowsRead: len(sheet.Rows)},
	}, nil
}

// ImportOperations persists prepared operations for one user.
//
// The existing-identity set is fetched once up front (never per row), then
// operations are written in chunks of maxWritesPerBatch, each chunk in its
// own transaction. Operations whose identity already exists — in the store
// or earlier in this same run — are counted as duplicates and skipped, which
// makes re-running an import the designed recovery path.
func ImportOperations(ctx context.Context, repo storage.OperationsRepository, userID string, prepared *PreparedImport) (models.ImportSummary, error) {
	summary := prepared.Summary

	existing, err := repo.FindExistingIDs(userID)
	if err != nil {
		return summary, fmt.Errorf("load existing operation ids: %w", err)
	}

	buf := make([]models.Operation, 0, maxWritesPerBatch)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := repo.InsertOperationsBatch(userID, buf); err != nil {
			return err
		}
		summary.TotalImported += len(buf)
		buf = buf[:0]
		return nil
	}

	for _, op := range prepared.Operations {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if _, dup := existing[op.OperationID]; dup {
			summary.TotalSkippedDuplicate++
			continue
		}
		existing[op.OperationID] = struct{}{}

		buf = append(buf, op)
		if len(buf) >= maxWritesPerBatch {
			if err := flush(); err != nil {
				return summary, fmt.Errorf("flush batch: %w", err)
			}
		}
	}

	if err := flush(); err != nil {
		return summary, fmt.Errorf("final flush: %w", err)
	}

	return summary, nil
}

// ImportStatement runs the full pipeline for one statement source.
func ImportStatement(ctx context.Context, repo storage.OperationsRepository, userID string, src io.Reader) (models.ImportSummary, error) {
	prepared, err := PrepareImport(src)
	if err != nil {
		return models.ImportSummary{}, err
	}
	return ImportOperations(ctx, repo, userID, prepared)
}

// ImportFile imports a single statement file from disk.
func ImportFile(ctx context.Context, repo storage.OperationsRepository, userID, path string) (models.ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ImportSummary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	start := time.Now()
	summary, err := ImportStatement(ctx, repo, userID, f)
	if err != nil {
		logger.L().Error().Str("file", filepath.Base(path)).Dur("elapsed", time.Since(start)).Err(err).Msg("import failed")
		return summary, fmt.Errorf("file %s: %w", path, err)
	}
	logger.L().Info().
		Str("file", filepath.Base(path)).
		Int("rows", summary.TotalRowsRead).
		Int("imported", summary.TotalImported).
		Int("duplicates", summary.TotalSkippedDuplicate).
		Dur("elapsed", time.Since(start)).
		Msg("import done")
	return summary, nil
}

// ProcessDirectory imports every .xlsx statement in dir for one user.
//
// Parsing is CPU/I-O bound and runs concurrently (bounded by parallel,
// clamped to 1..7 with a CPU-count default); persistence stays single-writer:
// all parsed operations are merged and committed through one
// ImportOperations call, so deduplication sees the whole run at once.
func ProcessDirectory(ctx context.Context, repo storage.OperationsRepository, userID, dir string, parallel int) (models.ImportSummary, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+statementSuffix))
	if err != nil {
		return models.ImportSummary{}, fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return models.ImportSummary{}, fmt.Errorf("no %s files in %s", statementSuffix, dir)
	}
	sort.Strings(files)

	maxParallel := 7
	if parallel > 0 {
		if parallel > 7 {
			parallel = 7
		}
		maxParallel = parallel
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	logger.L().Info().Int("files", len(files)).Int("max_parallel", maxParallel).Str("dir", dir).Msg("statement import start")

	prepared := make([]*PreparedImport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, file := range files {
		idx := i
		path := file
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			p, err := PrepareImport(f)
			if err != nil {
				return fmt.Errorf("file %s: %w", path, err)
			}
			logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", filepath.Base(path)).Int("rows", p.Summary.TotalRowsRead).Msg("file parsed")
			prepared[idx] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.ImportSummary{}, err
	}

	merged := &PreparedImport{}
	for _, p := range prepared {
		merged.Operations = append(merged.Operations, p.Operations...)
		merged.Summary.TotalRowsRead += p.Summary.TotalRowsRead
	}

	return ImportOperations(ctx, repo, userID, merged)
}
