/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	applog "smllc/internal/log"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long a file must stay quiet before it is resubmitted.
// Editors often write a file in several steps.
var WatchDebounce = 150 * time.Millisecond

// Watch calls submit for every file in dir with extension ext that is created
// or written, once per burst of events. It returns when ctx ends.
func Watch(ctx context.Context, dir, ext string, submit func(path string)) error {
	l := applog.WithOperation(applog.WithComponent("loader"), "watch")
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	l.Info("watching levels", slog.String("dir", dir), slog.String("ext", ext))

	var (
		mu      sync.Mutex
		pending = map[string]*time.Timer{}
		stopped bool
	)
	defer func() {
		mu.Lock()
		stopped = true
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[path]; ok {
			t.Reset(WatchDebounce)
			return
		}
		pending[path] = time.AfterFunc(WatchDebounce, func() {
			mu.Lock()
			delete(pending, path)
			skip := stopped
			mu.Unlock()
			if !skip {
				submit(path)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ext) {
				continue
			}
			l.Debug("level changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watcher error", slog.Any("err", err))
		}
	}
}
