package watch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileWatcher feeds filesystem changes to the sqlite database into an
// Invalidator. It watches the containing directory because sqlite writes
// land in the -wal and -journal siblings as often as the db file itself.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	inv     *Invalidator
	base    string
	doneCh  chan struct{}
	log     *zap.Logger
}

func NewFileWatcher(dbPath string, inv *Invalidator, log *zap.Logger) (*FileWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(dbPath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	fw := &FileWatcher{
		watcher: watcher,
		inv:     inv,
		base:    filepath.Base(dbPath),
		doneCh:  make(chan struct{}),
		log:     log,
	}
	go fw.loop()
	return fw, nil
}

func (fw *FileWatcher) Close() error {
	err := fw.watcher.Close()
	<-fw.doneCh
	return err
}

func (fw *FileWatcher) loop() {
	defer close(fw.doneCh)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			if err := fw.inv.MarkStale(); err != nil {
				return
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), fw.base)
}
