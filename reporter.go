// Package reelmark provides a Go library for block-DCT video watermarking.
//
// This file re-exports the internal Reporter interface and associated types
// so callers can receive every job event directly without importing the
// internal package.

package reelmark

import "github.com/reelmark/reelmark/internal/reporter"

// Reporter defines the interface for progress reporting during processing.
// Implement this interface to receive detailed events about job progress.
type Reporter = reporter.Reporter

// NullReporter is a no-op reporter that discards all updates.
type NullReporter = reporter.NullReporter

// CompositeReporter fans events out to a fixed list of reporters.
type CompositeReporter = reporter.CompositeReporter

// HardwareSummary contains hardware information.
type HardwareSummary = reporter.HardwareSummary

// JobSubmittedSummary describes a job at submission time.
type JobSubmittedSummary = reporter.JobSubmittedSummary

// CapacitySummary reports block capacity available for an embed job.
type CapacitySummary = reporter.CapacitySummary

// WatermarkConfigSummary contains the codec parameters in effect for a job.
type WatermarkConfigSummary = reporter.WatermarkConfigSummary

// ProgressSnapshot contains frame-iteration progress information.
type ProgressSnapshot = reporter.ProgressSnapshot

// ValidationSummary contains validation results.
type ValidationSummary = reporter.ValidationSummary

// ReporterValidationStep represents a single validation check from the reporter.
// Note: this is distinct from the ValidationStep type in events.go which is
// used for JSON serialization. Use reporter.ValidationStep internally.
type ReporterValidationStep = reporter.ValidationStep

// JobOutcome contains a completed job's result.
type JobOutcome = reporter.JobOutcome

// ReporterError contains error information.
type ReporterError = reporter.ReporterError

// BatchStartInfo contains batch start metadata.
type BatchStartInfo = reporter.BatchStartInfo

// FileProgressContext contains current file index within a batch.
type FileProgressContext = reporter.FileProgressContext

// BatchSummary contains batch completion information.
type BatchSummary = reporter.BatchSummary

// FileResult contains a per-file outcome summary within a batch.
type FileResult = reporter.FileResult

// StageProgress represents a generic stage update.
type StageProgress = reporter.StageProgress
