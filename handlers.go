package reelmark

import (
	"context"
	"time"

	"github.com/reelmark/reelmark/internal/config"
	"github.com/reelmark/reelmark/internal/job"
	"github.com/reelmark/reelmark/internal/processing"
	"github.com/reelmark/reelmark/internal/reporter"
	"github.com/reelmark/reelmark/internal/util"
)

func (s *System) handleEmbed(ctx context.Context, j *job.Job, progressFn func(int, string), start *time.Time) (string, *job.Error) {
	outputPath := util.ResolveOutputPath(j.Input, s.cfg.OutputDir, "")

	s.rep.WatermarkConfig(reporter.WatermarkConfigSummary{
		Strength:    j.Params.Strength,
		Redundancy:  j.Params.Redundancy,
		CoeffRow:    s.cfg.CoeffRow,
		CoeffCol:    s.cfg.CoeffCol,
		Carrier:     string(s.cfg.Carrier),
		UseSentinel: s.cfg.UseSentinel,
	})

	params := processing.EmbedParams{
		InputPath:            j.Input,
		OutputPath:           outputPath,
		Payload:              j.Params.Payload,
		Strength:             j.Params.Strength,
		Redundancy:           j.Params.Redundancy,
		CoeffRow:             s.cfg.CoeffRow,
		CoeffCol:             s.cfg.CoeffCol,
		Carrier:              s.cfg.Carrier,
		UseSentinel:          s.cfg.UseSentinel,
		ProgressEveryNFrames: s.cfg.ProgressEveryNFrames,
		DiagnosticDir:        s.cfg.LogDir,
		JobID:                j.ID,
	}

	if jerr := processing.ProcessEmbed(ctx, params, s.rep, progressFn); jerr != nil {
		s.rep.Error(reporter.ReporterError{Title: jerr.Kind, Message: jerr.Message})
		return "", &job.Error{Kind: jerr.Kind, Message: jerr.Message}
	}

	inSize, _ := util.GetFileSize(j.Input)
	outSize, _ := util.GetFileSize(outputPath)
	s.rep.JobComplete(reporter.JobOutcome{
		JobID:        j.ID,
		Kind:         string(job.KindEmbed),
		InputFile:    j.Input,
		OutputFile:   outputPath,
		OriginalSize: inSize,
		OutputSize:   outSize,
		TotalTime:    elapsedSince(start),
	})
	return outputPath, nil
}

func (s *System) handleExtract(ctx context.Context, j *job.Job, progressFn func(int, string), start *time.Time) (string, *job.Error) {
	params := processing.ExtractParams{
		InputPath:            j.Input,
		ExpectedBits:         j.Params.ExpectedBits,
		PayloadMaxBytes:      s.cfg.PayloadMax,
		Strength:             s.cfg.Strength,
		Redundancy:           j.Params.Redundancy,
		CoeffRow:             s.cfg.CoeffRow,
		CoeffCol:             s.cfg.CoeffCol,
		Carrier:              s.cfg.Carrier,
		ConvergenceVotes:     config.DefaultConfTotalVotes,
		ConvergenceAgreement: config.DefaultConfAgreement,
		ProgressEveryNFrames: s.cfg.ProgressEveryNFrames,
	}

	result, jerr := processing.ProcessExtract(ctx, params, s.rep, progressFn)
	if jerr != nil {
		s.rep.Error(reporter.ReporterError{Title: jerr.Kind, Message: jerr.Message})
		return "", &job.Error{Kind: jerr.Kind, Message: jerr.Message}
	}

	s.rep.JobComplete(reporter.JobOutcome{
		JobID:      j.ID,
		Kind:       string(job.KindExtract),
		InputFile:  j.Input,
		Payload:    result.Payload,
		Confidence: string(result.Confidence),
		Agreement:  result.Agreement,
		TotalTime:  elapsedSince(start),
	})
	return result.Payload, nil
}

func elapsedSince(start *time.Time) time.Duration {
	if start == nil {
		return 0
	}
	return time.Since(*start)
}
