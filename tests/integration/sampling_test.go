package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"

	"github.com/JHorcasitas/cdmx-pothole-detection/internal/domain/entity"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/ffmpeg"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/ledger"
	miniostorage "github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/minio"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/usecase"
	"github.com/JHorcasitas/cdmx-pothole-detection/pkg/logger"
)

func TestSampleVideosEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Start MinIO container
	minioContainer, err := tcminio.Run(ctx,
		"minio/minio:latest",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	defer minioContainer.Terminate(ctx)

	minioEndpoint, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:  minioEndpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		UseSSL:    false,
	})
	require.NoError(t, err)
	require.NoError(t, storage.EnsureBucket(ctx, "videos"))

	// Upload test video
	testVideoPath := filepath.Join("..", "testdata", "test.mp4")
	if _, err := os.Stat(testVideoPath); os.IsNotExist(err) {
		t.Skip("test video not found at tests/testdata/test.mp4 - generate it with: ffmpeg -f lavfi -i testsrc=duration=2:size=320x240:rate=10 -c:v libx264 -pix_fmt yuv420p tests/testdata/test.mp4")
	}

	minioClient, err := miniogo.New(minioEndpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	_, err = minioClient.FPutObject(ctx, "videos", "input/test.mp4", testVideoPath, miniogo.PutObjectOptions{
		ContentType: "video/mp4",
	})
	require.NoError(t, err)

	// Setup use case with file ledger and ffmpeg sampler
	log, _ := logger.New("debug")
	led, err := ledger.OpenFile(filepath.Join(t.TempDir(), "ledger.txt"))
	require.NoError(t, err)
	defer led.Close()

	uc := usecase.NewSampleVideosUseCase(
		storage, ffmpeg.NewSampler(log), led,
		nil, nil,
		log,
		usecase.SampleVideosConfig{TempDir: t.TempDir()},
	)

	rate, err := entity.NewSamplingRate(5)
	require.NoError(t, err)

	params := entity.RunParams{
		Bucket:       "videos",
		InputPrefix:  "input",
		OutputPrefix: "frames",
		SamplingRate: rate,
	}

	summary, err := uc.Run(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Abandoned)

	// Frame set is contiguous from index 0
	frameKeys, err := storage.ListKeys(ctx, "videos", "frames/")
	require.NoError(t, err)
	require.NotEmpty(t, frameKeys, "frames should have been uploaded")

	uploaded := make(map[string]bool, len(frameKeys))
	for _, k := range frameKeys {
		uploaded[k] = true
	}
	for i := 0; i < len(frameKeys); i++ {
		want := fmt.Sprintf("frames/test.mp4_frame_%d.jpg", i)
		assert.True(t, uploaded[want], "expected %s", want)
	}

	done, err := led.IsComplete(ctx, "test.mp4")
	require.NoError(t, err)
	assert.True(t, done)

	// Rerun is a no-op for the completed video
	second, err := uc.Run(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 1, second.Skipped)

	frameKeysAfter, err := storage.ListKeys(ctx, "videos", "frames/")
	require.NoError(t, err)
	assert.ElementsMatch(t, frameKeys, frameKeysAfter, "rerun must not change the output set")

	t.Logf("Test passed: %d frames uploaded", len(frameKeys))
}
