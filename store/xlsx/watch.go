/*
watch.go - Background reload of externally edited workbooks

PURPOSE:
  The office keeps editing the leave workbook in Excel while the server
  runs. Watcher polls the file's modification time and swaps in the new
  contents so reads reflect those edits.

USAGE:
  w := xlsx.NewWatcher(store, 30*time.Second, logger)
  w.Start()
  // ... later
  w.Stop()
*/
package xlsx

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Watcher periodically calls ReloadIfChanged on a Store.
type Watcher struct {
	store    *Store
	interval time.Duration
	logger   *zap.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewWatcher creates a watcher. A non-positive interval disables it.
func NewWatcher(store *Store, interval time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Start begins polling. It is a no-op when already started or disabled.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.interval <= 0 {
		w.logger.Info("workbook watcher disabled")
		return
	}
	if w.ticker != nil {
		return
	}

	w.ticker = time.NewTicker(w.interval)
	w.stop = make(chan struct{})
	w.wg.Add(1)
	go w.run(w.ticker.C, w.stop)

	w.logger.Info("workbook watcher started", zap.String("path", w.store.path), zap.Duration("interval", w.interval))
}

// Stop ends polling and waits for an in-flight reload.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ticker == nil {
		return
	}
	w.ticker.Stop()
	close(w.stop)
	w.wg.Wait()
	w.ticker = nil
	w.logger.Info("workbook watcher stopped")
}

func (w *Watcher) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer w.wg.Done()

	for {
		select {
		case <-tick:
			w.check()
		case <-stop:
			return
		}
	}
}

func (w *Watcher) check() {
	reloaded, err := w.store.ReloadIfChanged()
	if err != nil {
		// A half-written file from Excel is common; try again next tick.
		w.logger.Warn("failed to reload workbook", zap.Error(err))
		return
	}
	if reloaded {
		w.logger.Info("workbook reloaded after external edit", zap.String("path", w.store.path))
	}
}
