/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package levels owns the compiled levels of a running session. It resolves
// level names to files, hands them to the background loader and picks up the
// results once per tick without ever waiting on a compile.
package levels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"smllc/internal/loader"
	applog "smllc/internal/log"
	"smllc/internal/scene"

	"github.com/google/uuid"
)

var ErrLevelNotFound = errors.New("level file not found")

// Source is the part of *loader.Loader the registry needs.
type Source interface {
	Submit(path string) (uuid.UUID, error)
	Poll() (loader.Result, bool)
}

// EventKind tells what Update observed.
type EventKind int

const (
	EventNone EventKind = iota
	EventLoaded
	EventNotFound
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventNotFound:
		return "not_found"
	case EventFailed:
		return "failed"
	default:
		return "none"
	}
}

// Event is the outcome Update applied during one tick.
type Event struct {
	Kind  EventKind
	Name  string
	Path  string
	Level *scene.Level
	Err   error
}

type Registry struct {
	dir string
	ext string
	src Source
	log *slog.Logger

	mu      sync.Mutex
	loaded  map[string]*scene.Level
	pending map[uuid.UUID]string // job id -> level name
}

func NewRegistry(dir, ext string, src Source) *Registry {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Registry{
		dir:     dir,
		ext:     ext,
		src:     src,
		log:     applog.WithComponent("levels"),
		loaded:  map[string]*scene.Level{},
		pending: map[uuid.UUID]string{},
	}
}

// Path returns the file a level name resolves to.
func (r *Registry) Path(name string) string {
	return filepath.Join(r.dir, name+r.ext)
}

// RequestLoad queues a compile of the named level unless it is loaded
// already. It returns ErrLevelNotFound when the file does not exist.
func (r *Registry) RequestLoad(name string) error {
	r.mu.Lock()
	_, loaded := r.loaded[name]
	r.mu.Unlock()
	if loaded {
		r.log.Info("level already loaded", slog.String("level", name))
		return nil
	}

	path := r.Path(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrLevelNotFound, path)
		}
		return fmt.Errorf("stat level %s: %w", path, err)
	}
	id, err := r.src.Submit(path)
	if err != nil {
		return fmt.Errorf("submit level %s: %w", name, err)
	}
	r.mu.Lock()
	r.pending[id] = name
	r.mu.Unlock()
	r.log.Debug("level requested", slog.String("level", name), slog.String("job", id.String()))
	return nil
}

// Pending returns the number of requested levels without a result yet.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Update polls the loader once when jobs are pending and applies the result.
// It never blocks.
func (r *Registry) Update() Event {
	if r.Pending() == 0 {
		return Event{}
	}
	res, ok := r.src.Poll()
	if !ok {
		return Event{}
	}

	r.mu.Lock()
	name, ours := r.pending[res.ID]
	delete(r.pending, res.ID)
	r.mu.Unlock()
	if !ours {
		name = strings.TrimSuffix(filepath.Base(res.Path), r.ext)
	}

	ev := Event{Name: name, Path: res.Path, Err: res.Err}
	switch res.Code {
	case loader.CodeOK:
		ev.Kind = EventLoaded
		ev.Level = res.Level
		r.mu.Lock()
		r.loaded[name] = res.Level
		r.mu.Unlock()
		r.log.Info("level loaded", slog.String("level", name), slog.Int("objects", len(res.Level.Objects)))
	case loader.CodeFileNotFound:
		ev.Kind = EventNotFound
		r.log.Error("level file vanished before compile", slog.String("level", name), slog.String("path", res.Path))
	default:
		ev.Kind = EventFailed
		r.log.Error("level failed to compile", slog.String("level", name), slog.String("err", errString(res.Err)))
	}
	return ev
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// LoadAndWait requests name and ticks every few milliseconds until it is
// loaded, fails or ctx ends. Results for other levels picked up meanwhile are
// applied as usual.
func (r *Registry) LoadAndWait(ctx context.Context, name string) (*scene.Level, error) {
	if err := r.RequestLoad(name); err != nil {
		return nil, err
	}
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	for {
		if lvl := r.Find(name); lvl != nil {
			return lvl, nil
		}
		ev := r.Update()
		if ev.Name == name {
			switch ev.Kind {
			case EventNotFound:
				return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, ev.Path)
			case EventFailed:
				return nil, ev.Err
			}
		}
		if ev.Kind != EventNone {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick.C:
		}
	}
}

// Find returns the loaded level or nil.
func (r *Registry) Find(name string) *scene.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded[name]
}

// Levels returns the names of the loaded levels, sorted.
func (r *Registry) Levels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.loaded))
	for n := range r.loaded {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Unload drops a loaded level. It reports whether the level was loaded.
func (r *Registry) Unload(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loaded[name]; !ok {
		return false
	}
	delete(r.loaded, name)
	r.log.Info("level unloaded", slog.String("level", name))
	return true
}
