package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/JHorcasitas/cdmx-pothole-detection/internal/domain/entity"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/domain/port"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/config"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/email"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/ffmpeg"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/ledger"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/metrics"
	mpegsampler "github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/mpeg"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/postgres"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/rabbitmq"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/storage"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/tracing"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/usecase"
	"github.com/JHorcasitas/cdmx-pothole-detection/pkg/logger"
)

func main() {
	cmd := &cli.Command{
		Name:  "frame-sampler",
		Usage: "Sample frames from videos in an object-storage bucket and upload them as JPEGs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bucket",
				Usage:    "Name of the bucket holding the videos",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "input_prefix",
				Usage:    "Prefix under which source videos are listed",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output_prefix",
				Usage:    "Prefix under which frame images are uploaded",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "sampling_rate",
				Usage: "Keep every Nth decoded frame",
				Value: 10,
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	rate, err := entity.NewSamplingRate(int(cmd.Int("sampling_rate")))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(context.Background())
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create object storage: %w", err)
	}

	led, closeLedger, err := buildLedger(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer closeLedger()

	sampler, err := buildSampler(cfg, log)
	if err != nil {
		return err
	}

	var statusPub port.StatusPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		defer conn.Close()

		pub, err := rabbitmq.NewPublisher(conn, cfg.RabbitMQExchange)
		if err != nil {
			return fmt.Errorf("create rabbitmq publisher: %w", err)
		}
		statusPub = rabbitmq.NewStatusPublisher(pub)
	}

	var notifier port.FailureNotifier
	if cfg.NotifyEmail != "" {
		notifier = email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)
	}

	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	uc := usecase.NewSampleVideosUseCase(
		store, sampler, led,
		statusPub, notifier,
		log,
		usecase.SampleVideosConfig{
			TempDir:  cfg.TempDir,
			NotifyTo: cfg.NotifyEmail,
		},
	)

	summary, err := uc.Run(ctx, entity.RunParams{
		Bucket:       cmd.String("bucket"),
		InputPrefix:  cmd.String("input_prefix"),
		OutputPrefix: cmd.String("output_prefix"),
		SamplingRate: rate,
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	metricsSrv.Shutdown(shutdownCtx)

	if err != nil {
		return cli.Exit(fmt.Sprintf("run failed: %v", err), 1)
	}

	// Abandoned videos do not fail the run; reruns pick them up.
	log.Info("done",
		zap.Int("candidates", summary.Candidates),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("abandoned", summary.Abandoned),
	)
	return nil
}

func buildLedger(ctx context.Context, cfg *config.Config) (port.CompletionLedger, func(), error) {
	if cfg.LedgerDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.LedgerDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		led := postgres.NewLedger(pool)
		if err := led.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return led, pool.Close, nil
	}

	led, err := ledger.OpenFile(cfg.LedgerPath)
	if err != nil {
		return nil, nil, err
	}
	return led, func() { led.Close() }, nil
}

func buildSampler(cfg *config.Config, log *zap.Logger) (port.FrameSampler, error) {
	switch cfg.Sampler {
	case "ffmpeg":
		return ffmpeg.NewSampler(log), nil
	case "mpeg":
		return mpegsampler.NewSampler(), nil
	default:
		return nil, fmt.Errorf("unknown sampler %q", cfg.Sampler)
	}
}
