package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mash-protocol/regtokens/pkg/log"
	"github.com/mash-protocol/regtokens/pkg/manifest"
)

// DefaultDebounce is the quiet period a watcher waits for after the last
// change before it regenerates.
const DefaultDebounce = 200 * time.Millisecond

// Inputs returns the files a plan was built from: the manifest at
// manifestPath and the source of every layer.
func Inputs(manifestPath string, plan *manifest.Plan) []string {
	inputs := []string{manifestPath}
	for _, l := range plan.Layers {
		inputs = append(inputs, l.Source)
	}
	return inputs
}

// Watcher reports changes to a set of input files.
//
// The parent directories are watched rather than the files, so editors
// that replace a file by renaming keep triggering events.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   log.Logger
}

// NewWatcher watches the given files. A debounce of zero selects
// DefaultDebounce.
func NewWatcher(files []string, debounce time.Duration, logger log.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		logger:   log.Or(logger),
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run calls onChange once the inputs have been quiet for the debounce
// period after a change. A failing onChange is logged and watching
// continues. Run returns when ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Log(log.Event{Kind: log.KindInputChanged, File: event.Name})
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				w.logger.Log(log.Event{Kind: log.KindRunFailed, Err: err})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Log(log.Event{Kind: log.KindRunFailed, Err: err})
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
