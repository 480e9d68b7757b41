/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package loader compiles level files on a background goroutine. Requests go
// in through a bounded queue, results come out through a second queue that
// the consumer polls without blocking. One compile runs at a time.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"smllc/internal/journal"
	applog "smllc/internal/log"
	"smllc/internal/scene"
	"smllc/internal/smll"

	"github.com/google/uuid"
)

var (
	ErrQueueFull = errors.New("loader: request queue is full")
	ErrClosed    = errors.New("loader: closed")
)

// Code classifies a Result.
type Code int

const (
	CodeFileNotFound Code = -1
	CodeOK           Code = 0
	CodeFailed       Code = 1
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return journal.StatusOK
	case CodeFileNotFound:
		return journal.StatusNotFound
	default:
		return journal.StatusFailed
	}
}

type Request struct {
	ID   uuid.UUID
	Path string
}

// Result is the outcome of one Request. Level is set for CodeOK, Err for
// CodeFailed; a missing file carries neither.
type Result struct {
	ID       uuid.UUID
	Path     string
	Level    *scene.Level
	Err      error
	Code     Code
	Duration time.Duration
}

// CompileFunc compiles the level file at path.
type CompileFunc func(path string) (*scene.Level, error)

// Recorder stores finished jobs; *journal.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Reporter receives anonymous compile outcomes; *telemetry.Client implements it.
type Reporter interface {
	CompileFinished(status, kind string, d time.Duration)
}

type Options struct {
	QueueSize int         // capacity of each queue, 16 when <= 0
	Compile   CompileFunc // smll.Compile when nil
	Journal   Recorder    // optional
	Telemetry Reporter    // optional
}

type Loader struct {
	opts Options
	log  *slog.Logger

	in  chan Request
	out chan Result

	mu      sync.Mutex
	closed  bool
	started bool
	done    chan struct{}
}

func New(opts Options) *Loader {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.Compile == nil {
		opts.Compile = smll.Compile
	}
	return &Loader{
		opts: opts,
		log:  applog.WithComponent("loader"),
		in:   make(chan Request, opts.QueueSize),
		out:  make(chan Result, opts.QueueSize),
		done: make(chan struct{}),
	}
}

// Start launches the worker. It stops when ctx ends or, after Close, once the
// queued requests are compiled. Calling Start twice has no effect.
func (l *Loader) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true
	go l.work(ctx)
}

// Submit queues path for compilation without blocking.
func (l *Loader) Submit(path string) (uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return uuid.Nil, ErrClosed
	}
	req := Request{ID: uuid.New(), Path: path}
	select {
	case l.in <- req:
		return req.ID, nil
	default:
		return uuid.Nil, ErrQueueFull
	}
}

// Poll returns the next finished job, if any. An empty queue is normal.
func (l *Loader) Poll() (Result, bool) {
	select {
	case r := <-l.out:
		return r, true
	default:
		return Result{}, false
	}
}

// Close stops accepting requests. Requests already queued still compile.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.in)
}

// Done is closed when the worker has exited.
func (l *Loader) Done() <-chan struct{} { return l.done }

func (l *Loader) work(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-l.in:
			if !ok {
				return
			}
			res := l.run(ctx, req)
			select {
			case l.out <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *Loader) run(ctx context.Context, req Request) Result {
	ctx = applog.ContextWithJob(ctx, req.ID.String())
	start := time.Now()
	lvl, err := l.compile(req.Path)
	res := Result{ID: req.ID, Path: req.Path, Level: lvl, Duration: time.Since(start)}

	switch {
	case err == nil:
		res.Code = CodeOK
		l.log.InfoContext(ctx, "level compiled",
			slog.String("path", req.Path),
			slog.String("level", lvl.Name),
			slog.Duration("duration", res.Duration))
	case errors.Is(err, fs.ErrNotExist):
		res.Code = CodeFileNotFound
		res.Level = nil
		l.log.ErrorContext(ctx, "level file not found", slog.String("path", req.Path))
	default:
		res.Code = CodeFailed
		res.Err = err
		res.Level = nil
		l.log.ErrorContext(ctx, "level compile failed", slog.String("path", req.Path), slog.String("err", err.Error()))
	}

	l.record(ctx, res)
	return res
}

// compile runs one job; a panic becomes a compiler flaw error for that job only.
func (l *Loader) compile(path string) (lvl *scene.Level, err error) {
	defer func() {
		if r := recover(); r != nil {
			lvl = nil
			err = &smll.CompileError{
				Context: "level",
				Name:    smll.LevelName(path),
				Kind:    smll.KindCompilerFlaw,
				Detail:  fmt.Sprint(r),
			}
		}
	}()
	return l.opts.Compile(path)
}

func (l *Loader) record(ctx context.Context, res Result) {
	e := EntryFromResult(res)
	if l.opts.Journal != nil {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := l.opts.Journal.Record(rctx, e); err != nil {
			l.log.WarnContext(ctx, "journal record failed", slog.Any("err", err))
		}
		cancel()
	}
	if l.opts.Telemetry != nil {
		l.opts.Telemetry.CompileFinished(e.Status, e.Kind, res.Duration)
	}
}

// EntryFromResult converts a Result into a journal entry.
func EntryFromResult(res Result) journal.Entry {
	e := journal.Entry{
		ID:       res.ID,
		Path:     res.Path,
		Level:    smll.LevelName(res.Path),
		Status:   res.Code.String(),
		Duration: res.Duration,
	}
	if res.Level != nil {
		e.Level = res.Level.Name
	}
	if res.Err != nil {
		e.Message = res.Err.Error()
		var ce *smll.CompileError
		if errors.As(res.Err, &ce) {
			e.Kind = ce.Kind.String()
			e.Line = ce.Line
		} else {
			e.Kind = "io"
		}
	}
	return e
}
