package ffmpeg

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFilter(t *testing.T) {
	assert.Equal(t, `select=not(mod(n\,5))`, selectFilter(5))
	assert.Equal(t, `select=not(mod(n\,1))`, selectFilter(1))
}

func TestDumpIteratorOrdinals(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	var paths []string
	for _, name := range []string{"frame_000001.jpg", "frame_000002.jpg", "frame_000003.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("jpeg"), 0644))
		paths = append(paths, p)
	}

	it := &dumpIterator{paths: paths, rate: 5}

	for i := 0; i < 3; i++ {
		frame, err := it.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, i*5, frame.Ordinal)
		assert.Equal(t, paths[i], frame.Path)
	}

	_, err := it.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, it.Close())
}

func TestDumpIteratorCloseRemovesUnconsumedFrames(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	var paths []string
	for _, name := range []string{"frame_000001.jpg", "frame_000002.jpg", "frame_000003.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("jpeg"), 0644))
		paths = append(paths, p)
	}

	it := &dumpIterator{paths: paths, rate: 2}

	_, err := it.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, it.Close())

	// consumed frame is the caller's to delete; the rest are gone
	_, err = os.Stat(paths[0])
	assert.NoError(t, err)
	for _, p := range paths[1:] {
		_, err = os.Stat(p)
		assert.True(t, os.IsNotExist(err), "%s should have been removed", p)
	}
}

func TestDumpIteratorHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	it := &dumpIterator{paths: []string{"unused.jpg"}, rate: 1}
	_, err := it.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDumpIteratorEmptyDump(t *testing.T) {
	it := &dumpIterator{rate: 3}
	_, err := it.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
