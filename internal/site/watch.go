package site

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch rebuilds the site whenever a source in the input directory changes.
// Bursts of events within debounce are folded into one build. It blocks
// until ctx is done.
func (b *Builder) Watch(ctx context.Context, debounce time.Duration, onBuild func(*Result, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(b.opts.InputDir); err != nil {
		return fmt.Errorf("watch %s: %w", b.opts.InputDir, err)
	}

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isSource(ev.Name) || ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			trigger = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if b.log != nil {
				b.log.Warnw("source watcher error", "error", err)
			}
		case <-trigger:
			trigger = nil
			res, err := b.Build(ctx)
			if onBuild != nil {
				onBuild(res, err)
			}
		}
	}
}
