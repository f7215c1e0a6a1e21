// i18n/watch.go
package i18n

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 200 * time.Millisecond

// Watch перечитывает переводы при изменении файлов в каталоге до отмены ctx
func (b *Bundle) Watch(ctx context.Context) error {
	if b.dir == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(b.dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", b.dir, err)
	}

	go b.watchLoop(ctx, w)
	return nil
}

func (b *Bundle) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()
	log.Info("i18n: отслеживание изменений", "dir", b.dir)

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if _, isLocale := localeCode(ev.Name); !isLocale {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(reloadDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("i18n: ошибка наблюдателя", "err", err)
		case <-debounce.C:
			if err := b.Reload(); err != nil {
				log.Error("i18n: ошибка перезагрузки переводов", "err", err)
			}
		}
	}
}
