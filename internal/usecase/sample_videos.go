package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/JHorcasitas/cdmx-pothole-detection/internal/domain/entity"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/domain/port"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/metrics"
)

// SampleVideosUseCase walks every video under the input prefix, samples its
// frames and uploads them, skipping videos the ledger already records as
// complete. One video failing never stops the run.
type SampleVideosUseCase struct {
	storage   port.ObjectStorage
	sampler   port.FrameSampler
	ledger    port.CompletionLedger
	publisher port.StatusPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	tempDir   string
	notifyTo  string
}

type SampleVideosConfig struct {
	TempDir  string
	NotifyTo string
}

func NewSampleVideosUseCase(
	storage port.ObjectStorage,
	sampler port.FrameSampler,
	ledger port.CompletionLedger,
	publisher port.StatusPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg SampleVideosConfig,
) *SampleVideosUseCase {
	return &SampleVideosUseCase{
		storage:   storage,
		sampler:   sampler,
		ledger:    ledger,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		tempDir:   cfg.TempDir,
		notifyTo:  cfg.NotifyTo,
	}
}

// Run processes every candidate video once. It returns an error only when
// nothing could be processed at all (bad parameters, listing failure);
// per-video failures are counted in the summary.
func (uc *SampleVideosUseCase) Run(ctx context.Context, params entity.RunParams) (*entity.RunSummary, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "SampleVideosUseCase.Run")
	defer span.End()

	runID := uuid.New()
	span.SetAttributes(
		attribute.String("run.id", runID.String()),
		attribute.String("run.bucket", params.Bucket),
	)

	log := uc.logger.With(zap.String("run_id", runID.String()))
	log.Info("starting run",
		zap.String("bucket", params.Bucket),
		zap.String("input_prefix", params.InputPrefix),
		zap.String("output_prefix", params.OutputPrefix),
		zap.Int("sampling_rate", params.SamplingRate.Int()),
	)

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()

	keys, err := uc.storage.ListKeys(ctx, params.Bucket, params.InputPrefix)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	summary := &entity.RunSummary{RunID: runID, Candidates: len(keys)}

	for _, key := range keys {
		name := entity.VideoKey(key).Name()
		vlog := log.With(zap.String("video_key", key))

		done, err := uc.ledger.IsComplete(ctx, name)
		if err != nil {
			vlog.Warn("ledger lookup failed, video abandoned", zap.Error(err))
			uc.recordAbandon(ctx, runID, params.Bucket, key, name, err, vlog)
			summary.Abandoned++
			continue
		}
		if done {
			vlog.Info("video already processed, skipping")
			metrics.VideosVisitedTotal.WithLabelValues("skipped").Inc()
			uc.publishStatus(ctx, runID, params.Bucket, key, name, entity.VideoStatusSkipped, 0, "", vlog)
			summary.Skipped++
			continue
		}

		vlog.Info("processing video")
		frameCount, err := uc.processVideo(ctx, params, key, name, vlog)
		if err != nil {
			vlog.Warn("video abandoned", zap.Error(err), zap.Int("frames_uploaded", frameCount))
			uc.recordAbandon(ctx, runID, params.Bucket, key, name, err, vlog)
			summary.Abandoned++
			continue
		}

		vlog.Info("video completed", zap.Int("frame_count", frameCount))
		metrics.VideosVisitedTotal.WithLabelValues("completed").Inc()
		uc.publishStatus(ctx, runID, params.Bucket, key, name, entity.VideoStatusCompleted, frameCount, "", vlog)
		summary.Processed++
	}

	log.Info("run finished",
		zap.Int("candidates", summary.Candidates),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("abandoned", summary.Abandoned),
	)

	return summary, nil
}

// processVideo runs download, sampling, per-frame upload, scratch cleanup and
// the ledger append for one video. The ledger append is strictly last: a
// crash anywhere earlier leaves the video unmarked and it is redone on the
// next run.
func (uc *SampleVideosUseCase) processVideo(
	ctx context.Context,
	params entity.RunParams,
	key, name string,
	log *zap.Logger,
) (int, error) {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return 0, fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	dlStart := time.Now()
	dlCtx, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, name)
	err := uc.storage.Download(dlCtx, params.Bucket, key, videoPath)
	spanDl.End()
	if err != nil {
		return 0, fmt.Errorf("download video: %w", err)
	}
	metrics.StageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	smStart := time.Now()
	smCtx, spanSm := tracer.Start(ctx, "sample_frames")
	defer spanSm.End()

	framesDir := filepath.Join(workDir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return 0, fmt.Errorf("create frames dir: %w", err)
	}

	it, err := uc.sampler.Extract(smCtx, videoPath, params.SamplingRate.Int(), framesDir)
	if err != nil {
		return 0, fmt.Errorf("open sampler: %w", err)
	}
	defer it.Close()

	frameIndex := 0
	for {
		frame, err := it.Next(smCtx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return frameIndex, fmt.Errorf("decode frame: %w", err)
		}

		rec := entity.FrameRecord{VideoName: name, Index: frameIndex}
		upStart := time.Now()
		err = uc.storage.Upload(smCtx, frame.Path, params.Bucket, rec.ObjectKey(params.OutputPrefix), "image/jpeg")
		os.Remove(frame.Path)
		if err != nil {
			return frameIndex, fmt.Errorf("upload frame %d (ordinal %d): %w", frameIndex, frame.Ordinal, err)
		}
		metrics.StageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())
		metrics.FramesUploadedTotal.Inc()
		frameIndex++
	}
	metrics.StageDuration.WithLabelValues("sample").Observe(time.Since(smStart).Seconds())

	// Scratch goes first, ledger last. The deferred RemoveAll is then a no-op.
	if err := os.RemoveAll(workDir); err != nil {
		return frameIndex, fmt.Errorf("remove scratch: %w", err)
	}
	if err := uc.ledger.MarkComplete(ctx, name); err != nil {
		return frameIndex, fmt.Errorf("mark complete: %w", err)
	}

	return frameIndex, nil
}

func (uc *SampleVideosUseCase) recordAbandon(
	ctx context.Context,
	runID uuid.UUID,
	bucket, key, name string,
	cause error,
	log *zap.Logger,
) {
	metrics.VideosVisitedTotal.WithLabelValues("abandoned").Inc()
	uc.publishStatus(ctx, runID, bucket, key, name, entity.VideoStatusAbandoned, 0, cause.Error(), log)

	if uc.notifier != nil && uc.notifyTo != "" {
		_ = uc.notifier.NotifyFailure(ctx, uc.notifyTo, runID.String(), key, cause.Error())
	}
}

func (uc *SampleVideosUseCase) publishStatus(
	ctx context.Context,
	runID uuid.UUID,
	bucket, key, name string,
	status entity.VideoStatus,
	frameCount int,
	errMsg string,
	log *zap.Logger,
) {
	if uc.publisher == nil {
		return
	}

	event := entity.VideoStatusEvent{
		RunID:        runID,
		Bucket:       bucket,
		VideoKey:     key,
		VideoName:    name,
		Status:       status,
		FrameCount:   frameCount,
		ErrorMessage: errMsg,
		Timestamp:    time.Now().UTC(),
	}
	data, _ := json.Marshal(event)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status event", zap.Error(err))
	}
}
