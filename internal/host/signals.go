package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ShayCichocki/taskmgr/internal/orchestrator"
)

// SignalKind is the operator action encoded in a signal file's extension.
type SignalKind string

const (
	// SignalExit marks the worker exited. File contents are the exit data.
	SignalExit SignalKind = "exit"
	// SignalStop marks the worker stopped by an operator.
	SignalStop SignalKind = "stop"
	// SignalError fails the worker. File contents are an ErrorSignal.
	SignalError SignalKind = "error"
)

// ErrorSignal is the body of an error signal file.
type ErrorSignal struct {
	Kind    orchestrator.ErrorKind `json:"kind"`
	Payload string                 `json:"payload,omitempty"`
}

// WriteSignal drops a signal file for a worker into dir.
func WriteSignal(dir, workerID string, kind SignalKind, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	// Write then rename so the watcher never sees a partial file.
	final := filepath.Join(dir, workerID+"."+string(kind))
	tmp := filepath.Join(dir, "."+workerID+"."+string(kind)+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}

// parseSignal splits "<worker>.<kind>" into its parts.
func parseSignal(name string) (string, SignalKind, bool) {
	if strings.HasPrefix(name, ".") {
		return "", "", false
	}
	ext := filepath.Ext(name)
	id := strings.TrimSuffix(name, ext)
	if id == "" {
		return "", "", false
	}
	switch kind := SignalKind(strings.TrimPrefix(ext, ".")); kind {
	case SignalExit, SignalStop, SignalError:
		return id, kind, true
	default:
		return "", "", false
	}
}

// SignalWatcher applies operator signal files dropped into a directory.
type SignalWatcher struct {
	dir    string
	rt     *Runtime
	logger *zap.Logger
}

// NewSignalWatcher creates a watcher for dir, creating it if needed.
func (r *Runtime) NewSignalWatcher(dir string) (*SignalWatcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create signals directory: %w", err)
	}
	return &SignalWatcher{dir: dir, rt: r, logger: r.logger.Named("signals")}, nil
}

// Scan applies every pending signal file and returns how many were handled.
func (sw *SignalWatcher) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(sw.dir)
	if err != nil {
		return 0, err
	}
	handled := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sw.handle(ctx, filepath.Join(sw.dir, e.Name())) {
			handled++
		}
	}
	return handled, nil
}

// Watch applies pending signals, then follows the directory until ctx is
// done. If fsnotify is unavailable it falls back to polling with Scan.
func (sw *SignalWatcher) Watch(ctx context.Context) error {
	if _, err := sw.Scan(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		sw.logger.Warn("file watcher unavailable, polling", zap.Error(err))
		return sw.poll(ctx)
	}
	defer watcher.Close()
	if err := watcher.Add(sw.dir); err != nil {
		sw.logger.Warn("cannot watch signals directory, polling", zap.Error(err))
		return sw.poll(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				sw.handle(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			sw.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (sw *SignalWatcher) poll(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := sw.Scan(ctx); err != nil {
				return err
			}
		}
	}
}

// handle applies one signal file and removes it. Malformed or stale signals
// are removed too so they are not retried forever.
func (sw *SignalWatcher) handle(ctx context.Context, path string) bool {
	workerID, kind, ok := parseSignal(filepath.Base(path))
	if !ok {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// Already consumed by an earlier event.
		return false
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		sw.logger.Warn("failed to remove signal", zap.String("path", path), zap.Error(err))
	}

	err = sw.apply(ctx, workerID, kind, data)
	var workerErr *orchestrator.WorkerError
	switch {
	case err == nil:
		sw.logger.Info("signal applied", zap.String("child_id", workerID), zap.String("signal", string(kind)))
	case errors.As(err, &workerErr):
		sw.logger.Info("signal failed supervisor", zap.String("child_id", workerID), zap.Error(err))
	default:
		sw.logger.Warn("signal rejected", zap.String("child_id", workerID), zap.String("signal", string(kind)), zap.Error(err))
		return false
	}
	return true
}

func (sw *SignalWatcher) apply(ctx context.Context, workerID string, kind SignalKind, data []byte) error {
	switch kind {
	case SignalExit:
		return sw.rt.ExitWorker(ctx, workerID, data)
	case SignalStop:
		return sw.rt.StopWorker(ctx, workerID)
	case SignalError:
		var sig ErrorSignal
		if err := sonic.Unmarshal(data, &sig); err != nil {
			return fmt.Errorf("parse error signal: %w", err)
		}
		if sig.Kind == "" {
			sig.Kind = orchestrator.ErrorKindInternal
		}
		return sw.rt.FailWorker(ctx, workerID, orchestrator.ChildError{Kind: sig.Kind, Payload: []byte(sig.Payload)})
	}
	return fmt.Errorf("unknown signal %q", kind)
}
