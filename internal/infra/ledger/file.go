package ledger

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileLedger is a line-delimited, append-only record of completed video
// names. The whole file is loaded into a set on open with line terminators
// trimmed, so membership is exact whole-name equality regardless of how the
// lines were terminated on disk.
type FileLedger struct {
	file *os.File
	done map[string]struct{}
}

func OpenFile(path string) (*FileLedger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	done := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name := strings.TrimRight(scanner.Text(), "\r")
		if name != "" {
			done[name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	return &FileLedger{file: file, done: done}, nil
}

func (l *FileLedger) IsComplete(_ context.Context, videoName string) (bool, error) {
	_, ok := l.done[videoName]
	return ok, nil
}

func (l *FileLedger) MarkComplete(_ context.Context, videoName string) error {
	if _, ok := l.done[videoName]; ok {
		return nil
	}

	if _, err := fmt.Fprintln(l.file, videoName); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}

	l.done[videoName] = struct{}{}
	return nil
}

func (l *FileLedger) Close() error {
	return l.file.Close()
}
