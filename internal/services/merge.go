package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfcmd/internal/common"
	"pdfcmd/internal/compression"
	"pdfcmd/internal/concurrency"
	"pdfcmd/internal/config"
	"pdfcmd/internal/merge"
	"pdfcmd/internal/models"
	"pdfcmd/internal/pdf"
)

// MergeRequest describes one merge run
type MergeRequest struct {
	Ranges     []merge.MergeRange
	OutputPath string
	Compress   bool
}

// TreatRequest describes a single-file run
type TreatRequest struct {
	InputPath  string
	OutputPath string
	Compress   bool
}

// MergeResponse reports what was written
type MergeResponse struct {
	JobID       string              `json:"job_id"`
	OutputPath  string              `json:"output_path"`
	InputCount  int                 `json:"input_count"`
	PageCount   int                 `json:"page_count"`
	MergedSize  int64               `json:"merged_size"`
	OutputSize  int64               `json:"output_size"`
	Compression *compression.Result `json:"compression,omitempty"`
	Duration    time.Duration       `json:"duration"`
}

// MergeService runs the merge pipeline: validate, load, append, write and
// optionally compress
type MergeService struct {
	config  *config.Config
	prefs   *PreferencesService
	history *HistoryService
	logger  *slog.Logger
}

// NewMergeService creates a new merge service. prefs and history may be nil
// when no database is available.
func NewMergeService(cfg *config.Config, prefs *PreferencesService, history *HistoryService) *MergeService {
	return &MergeService{
		config:  cfg,
		prefs:   prefs,
		history: history,
		logger:  cfg.Logger,
	}
}

// CompressByDefault reports whether stored preferences ask for compression
func (s *MergeService) CompressByDefault() bool {
	prefs := s.preferences()
	return prefs != nil && prefs.CompressByDefault
}

// Merge validates the ranges, merges them into req.OutputPath and compresses
// the result when asked
func (s *MergeService) Merge(ctx context.Context, req MergeRequest) (*MergeResponse, error) {
	start := time.Now()
	job := s.newJob(req.OutputPath, req.Compress, req.Ranges)

	resp, err := s.merge(ctx, req)
	s.finishJob(job, resp, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	resp.JobID = job.ID
	resp.Duration = time.Since(start)
	return resp, nil
}

func (s *MergeService) merge(ctx context.Context, req MergeRequest) (*MergeResponse, error) {
	if err := merge.Validate(req.Ranges); err != nil {
		s.logger.Error("Merge request validation failed", "error", err)
		return nil, err
	}

	conf := s.pdfConfiguration()

	docs, err := s.loadDocuments(ctx, req.Ranges, conf)
	if err != nil {
		return nil, err
	}

	merger := merge.NewMerger(conf, s.logger)
	for i, r := range req.Ranges {
		if err := merger.Append(docs[i], r); err != nil {
			s.logger.Error("Failed to append document", "file", r.Path, "error", err)
			return nil, err
		}
	}

	mergedSize, err := merger.WriteFile(ctx, req.OutputPath)
	if err != nil {
		s.logger.Error("Failed to write merged document", "file", req.OutputPath, "error", err)
		return nil, err
	}

	resp := &MergeResponse{
		OutputPath: req.OutputPath,
		InputCount: len(req.Ranges),
		PageCount:  merger.PageCount(),
		MergedSize: mergedSize,
		OutputSize: mergedSize,
	}

	if req.Compress {
		result, err := compression.NewCompressor(conf, s.logger).CompressFile(ctx, req.OutputPath, req.OutputPath)
		if err != nil {
			return nil, merge.NewOperationError("compress", req.OutputPath, err)
		}
		resp.Compression = result
		resp.OutputSize = result.CompressedSize
	}

	return resp, nil
}

// Treat processes a single file: it is copied to the output, compressed on
// the way when asked
func (s *MergeService) Treat(ctx context.Context, req TreatRequest) (*MergeResponse, error) {
	start := time.Now()
	input := merge.Whole(req.InputPath)
	job := s.newJob(req.OutputPath, req.Compress, []merge.MergeRange{input})

	resp, err := s.treat(ctx, req, input)
	s.finishJob(job, resp, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	resp.JobID = job.ID
	resp.Duration = time.Since(start)
	return resp, nil
}

func (s *MergeService) treat(ctx context.Context, req TreatRequest, input merge.MergeRange) (*MergeResponse, error) {
	if err := merge.ValidatePath(input); err != nil {
		return nil, err
	}

	conf := s.pdfConfiguration()
	inputSize := common.FileSize(req.InputPath)

	if req.Compress {
		result, err := compression.NewCompressor(conf, s.logger).CompressFile(ctx, req.InputPath, req.OutputPath)
		if err != nil {
			return nil, merge.NewOperationError("compress", req.InputPath, err)
		}
		return &MergeResponse{
			OutputPath:  req.OutputPath,
			InputCount:  1,
			PageCount:   result.PageCount,
			MergedSize:  inputSize,
			OutputSize:  result.CompressedSize,
			Compression: result,
		}, nil
	}

	doc, err := pdf.Open(ctx, req.InputPath, conf)
	if err != nil {
		return nil, merge.NewOperationError("open", req.InputPath, err)
	}
	if err := common.CopyFile(req.InputPath, req.OutputPath); err != nil {
		return nil, fmt.Errorf("failed to copy %s: %w", req.InputPath, err)
	}

	return &MergeResponse{
		OutputPath: req.OutputPath,
		InputCount: 1,
		PageCount:  doc.PageCount(),
		MergedSize: inputSize,
		OutputSize: common.FileSize(req.OutputPath),
	}, nil
}

// loadDocuments opens every input on the worker pool. The first failing
// input in request order is reported.
func (s *MergeService) loadDocuments(ctx context.Context, ranges []merge.MergeRange, conf *model.Configuration) ([]*pdf.Document, error) {
	docs := make([]*pdf.Document, len(ranges))
	pool := concurrency.NewWorkerPool(s.workers(), s.logger)

	errs := pool.Run(ctx, len(ranges), func(ctx context.Context, i int) error {
		doc, err := pdf.Open(ctx, ranges[i].Path, conf)
		if err != nil {
			return err
		}
		docs[i] = doc
		return nil
	})

	if i, err := concurrency.FirstError(errs); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("Failed to open document", "file", ranges[i].Path, "error", err)
		return nil, merge.NewOperationError("open", ranges[i].Path, err)
	}
	return docs, nil
}

func (s *MergeService) pdfConfiguration() *model.Configuration {
	mode := s.config.ValidationMode
	if prefs := s.preferences(); prefs != nil && prefs.ValidationMode != "" {
		mode = prefs.ValidationMode
	}
	return pdf.NewConfiguration(mode)
}

func (s *MergeService) workers() int {
	if prefs := s.preferences(); prefs != nil && prefs.Workers > 0 {
		return prefs.Workers
	}
	return s.config.Workers
}

func (s *MergeService) preferences() *models.UserPreferencesData {
	if s.prefs == nil {
		return nil
	}
	prefs, err := s.prefs.GetPreferences()
	if err != nil {
		s.logger.Warn("Failed to load preferences, using defaults", "error", err)
		return nil
	}
	return prefs
}

func (s *MergeService) newJob(outputPath string, compress bool, ranges []merge.MergeRange) *models.MergeJob {
	job := &models.MergeJob{
		ID:         common.GenerateUUID(),
		OutputPath: outputPath,
		Compressed: compress,
	}
	inputs := make([]string, len(ranges))
	for i, r := range ranges {
		inputs[i] = r.String()
	}
	if err := job.SetInputs(inputs); err != nil {
		s.logger.Warn("Failed to encode job inputs", "error", err)
	}
	return job
}

func (s *MergeService) finishJob(job *models.MergeJob, resp *MergeResponse, err error, elapsed time.Duration) {
	job.DurationMillis = elapsed.Milliseconds()
	if err != nil {
		job.Status = models.JobStatusError
		job.Error = err.Error()
	} else {
		job.Status = models.JobStatusCompleted
		job.PageCount = resp.PageCount
		job.MergedSize = resp.MergedSize
		job.OutputSize = resp.OutputSize
	}

	if s.history == nil || !s.config.History {
		return
	}
	if err := s.history.Record(job); err != nil {
		s.logger.Warn("Failed to record job history", "job_id", job.ID, "error", err)
	}
}
