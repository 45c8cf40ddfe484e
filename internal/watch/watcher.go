// Package watch turns file system events in package directories into
// debounced batches of changed packages.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"union-generator/internal/errors"
	"union-generator/internal/gen"
	"union-generator/internal/logger"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 200 * time.Millisecond

// Batch is one settled group of changes.
type Batch struct {
	// Dirs lists the package directories with changed sources, sorted.
	Dirs []string
	// Config is true when the configuration file changed.
	Config bool
}

// Watcher watches package directories and the configuration file.
type Watcher struct {
	watcher    *fsnotify.Watcher
	log        *zap.SugaredLogger
	configPath string
	debounce   time.Duration
}

// New watches dirs and, when configPath is not empty, the configuration file.
func New(dirs []string, configPath string, debounce time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	if configPath != "" {
		// Editors replace files on save, so watch the directory.
		if err := fw.Add(filepath.Dir(configPath)); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch config file %s", configPath)
		}
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Logger
	}

	return &Watcher{
		watcher:    fw,
		log:        log.Named("watch"),
		configPath: filepath.Clean(configPath),
		debounce:   debounce,
	}, nil
}

// Run delivers batches to onBatch until ctx is done or onBatch fails.
// Batches are delivered one at a time from the calling goroutine.
func (w *Watcher) Run(ctx context.Context, onBatch func(context.Context, Batch) error) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	pending := Batch{}
	dirs := make(map[string]bool)
	// Files named like our output are judged by their content once events
	// settle: a file we are writing may still be empty when its create
	// event arrives.
	outputs := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			switch w.classify(event) {
			case eventIgnored:
				continue
			case eventConfig:
				pending.Config = true
			case eventSource:
				dirs[filepath.Dir(event.Name)] = true
			case eventOutput:
				outputs[filepath.Clean(event.Name)] = true
			}

			w.log.Debugw("change detected", logger.FieldFile, event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watcher error", "error", err)

		case <-timer.C:
			for name := range outputs {
				if ours, err := gen.IsGeneratedFile(name); err == nil && !ours && exists(name) {
					dirs[filepath.Dir(name)] = true
				}
			}
			for dir := range dirs {
				pending.Dirs = append(pending.Dirs, dir)
			}
			slices.Sort(pending.Dirs)

			batch := pending
			pending = Batch{}
			clear(dirs)
			clear(outputs)

			if len(batch.Dirs) == 0 && !batch.Config {
				continue
			}

			w.log.Infow("changes settled", logger.FieldCount, len(batch.Dirs), "config", batch.Config)
			if err := onBatch(ctx, batch); err != nil {
				return err
			}
		}
	}
}

type eventKind int

const (
	eventIgnored eventKind = iota
	eventSource
	eventOutput
	eventConfig
)

func (w *Watcher) classify(event fsnotify.Event) eventKind {
	if event.Op == fsnotify.Chmod {
		return eventIgnored
	}

	name := filepath.Clean(event.Name)
	if w.configPath != "." && name == w.configPath {
		return eventConfig
	}

	base := filepath.Base(name)
	if !strings.HasSuffix(base, ".go") || strings.HasSuffix(base, "_test.go") || strings.HasPrefix(base, ".") {
		return eventIgnored
	}

	if gen.IsOutputName(base) {
		return eventOutput
	}

	return eventSource
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
