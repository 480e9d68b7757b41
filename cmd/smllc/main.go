/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"smllc/internal/config"
	"smllc/internal/crash"
	"smllc/internal/export"
	"smllc/internal/journal"
	"smllc/internal/levels"
	"smllc/internal/loader"
	applog "smllc/internal/log"
	"smllc/internal/scene"
	"smllc/internal/smll"
	"smllc/internal/telemetry"
	"smllc/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "smllc: level script compiler")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  smllc version                         Show version")
	fmt.Fprintln(w, "  smllc compile <file> [--json <out>]   Compile one level file, optionally export it as JSON (- for stdout)")
	fmt.Fprintln(w, "  smllc check [<dir>]                   Compile every level file in <dir> on the background loader")
	fmt.Fprintln(w, "  smllc load <name>                     Load a level by name from the levels directory")
	fmt.Fprintln(w, "  smllc watch [<dir>]                   Recompile level files whenever they change")
	fmt.Fprintln(w, "  smllc history [<n>]                   Show the last n compile jobs from the journal")
	fmt.Fprintln(w, "  smllc history <file> [<n>]            Show the last n failed compiles of one level file")
}

func main() {
	cfg, cfgPath, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.String("path", cfgPath), slog.Any("err", cfgErr))
	}
	telemetry.SetDefault(telemetry.Config{
		OptIn:     cfg.Telemetry.OptIn,
		EventsURL: cfg.Telemetry.EventsURL,
		CrashURL:  cfg.Telemetry.CrashURL,
	})
	defer crash.Recover(filepath.Join(cfg.Levels.Dir, ".smllc"))

	code := run(cfg, os.Args[1:], os.Stdout)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	telemetry.Default().Flush(ctx)
	cancel()
	if code != 0 {
		os.Exit(code)
	}
}

// run executes one command and returns the process exit status.
func run(cfg config.AppConfig, args []string, out io.Writer) int {
	l := applog.WithComponent("cli")
	if len(args) == 0 {
		usage(out)
		return 2
	}
	crash.Note("command", args[0])
	l.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(out, "smllc", version.String())
		return 0
	case "compile":
		if len(args) < 2 {
			fmt.Fprintln(out, "compile requires <file>")
			usage(out)
			return 2
		}
		jsonOut := ""
		if len(args) >= 4 && args[2] == "--json" {
			jsonOut = args[3]
		} else if len(args) > 2 {
			fmt.Fprintln(out, "compile: unexpected arguments", args[2:])
			return 2
		}
		return cmdCompile(args[1], jsonOut, out)
	case "check":
		dir := cfg.Levels.Dir
		if len(args) >= 2 {
			dir = args[1]
		}
		return cmdCheck(cfg, dir, out)
	case "load":
		if len(args) < 2 {
			fmt.Fprintln(out, "load requires <name>")
			usage(out)
			return 2
		}
		return cmdLoad(cfg, args[1], out)
	case "watch":
		dir := cfg.Levels.Dir
		if len(args) >= 2 {
			dir = args[1]
		}
		return cmdWatch(cfg, dir, out)
	case "history":
		path, n := "", 20
		rest := args[1:]
		if len(rest) > 0 {
			if _, err := strconv.Atoi(rest[0]); err != nil {
				path, rest = rest[0], rest[1:]
			}
		}
		if len(rest) > 0 {
			v, err := strconv.Atoi(rest[0])
			if err != nil || v <= 0 {
				fmt.Fprintln(out, "history: <n> must be a positive number")
				return 2
			}
			n = v
		}
		return cmdHistory(cfg, path, n, out)
	}
	usage(out)
	return 2
}

func summary(lvl *scene.Level) string {
	return fmt.Sprintf("level %s: %d objects, %d point lights, %d colgroups, bounds %v..%v",
		lvl.Name, len(lvl.Objects), len(lvl.PointLights), len(lvl.ColGroups),
		lvl.Bounding.WorldMin(scene.Vec3{}), lvl.Bounding.WorldMax(scene.Vec3{}))
}

func cmdCompile(path, jsonOut string, out io.Writer) int {
	crash.Note("file", path)
	lvl, err := smll.Compile(path)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	fmt.Fprintln(out, summary(lvl))
	if jsonOut == "" {
		return 0
	}
	data, err := export.Marshal(lvl)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	if jsonOut == "-" {
		_, _ = out.Write(append(data, '\n'))
		return 0
	}
	if err := os.WriteFile(jsonOut, data, 0o644); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	fmt.Fprintln(out, "Wrote", jsonOut)
	return 0
}

// openJournal opens the configured journal. A journal that cannot be opened
// is logged and skipped; compiling never depends on it.
func openJournal(cfg config.AppConfig) *journal.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}
	j, err := journal.Open(cfg.JournalDSN())
	if err != nil {
		applog.WithComponent("cli").Warn("journal unavailable", slog.Any("err", err))
		return nil
	}
	return j
}

func newLoader(cfg config.AppConfig, j *journal.Journal) *loader.Loader {
	opts := loader.Options{QueueSize: cfg.Loader.QueueSize}
	if j != nil {
		opts.Journal = j
	}
	if c := telemetry.Default(); c.Enabled() {
		opts.Telemetry = c
	}
	return loader.New(opts)
}

func levelFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read levels dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func printResult(out io.Writer, r loader.Result) {
	switch r.Code {
	case loader.CodeOK:
		fmt.Fprintf(out, "OK   %s (%s, %s)\n", r.Path, summary(r.Level), r.Duration.Round(time.Microsecond))
	case loader.CodeFileNotFound:
		fmt.Fprintf(out, "GONE %s\n", r.Path)
	default:
		fmt.Fprintf(out, "FAIL %s: %v\n", r.Path, r.Err)
	}
}

func cmdCheck(cfg config.AppConfig, dir string, out io.Writer) int {
	files, err := levelFiles(dir, cfg.Levels.Extension)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "no %s files in %s\n", cfg.Levels.Extension, dir)
		return 0
	}

	j := openJournal(cfg)
	if j != nil {
		defer func() { _ = j.Close() }()
	}
	ld := newLoader(cfg, j)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ld.Start(ctx)
	defer ld.Close()

	failed, done, next := 0, 0, 0
	for done < len(files) {
		for next < len(files) {
			if _, err := ld.Submit(files[next]); err != nil {
				if errors.Is(err, loader.ErrQueueFull) {
					break
				}
				fmt.Fprintln(out, "Error:", err)
				return 1
			}
			next++
		}
		r, ok := ld.Poll()
		if !ok {
			time.Sleep(2 * time.Millisecond)
			continue
		}
		done++
		if r.Code != loader.CodeOK {
			failed++
		}
		printResult(out, r)
	}
	fmt.Fprintf(out, "%d checked, %d failed\n", len(files), failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func cmdLoad(cfg config.AppConfig, name string, out io.Writer) int {
	crash.Note("level", name)
	j := openJournal(cfg)
	if j != nil {
		defer func() { _ = j.Close() }()
	}
	ld := newLoader(cfg, j)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ld.Start(ctx)
	defer ld.Close()

	reg := levels.NewRegistry(cfg.Levels.Dir, cfg.Levels.Extension, ld)
	lvl, err := reg.LoadAndWait(ctx, name)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	fmt.Fprintln(out, summary(lvl))
	for _, info := range lvl.InitInfos() {
		fmt.Fprintf(out, "  %-16s template=%s static=%v at %v\n", info.ObjectName, info.TemplateName, info.Static, info.InitPos)
	}
	return 0
}

func cmdWatch(cfg config.AppConfig, dir string, out io.Writer) int {
	j := openJournal(cfg)
	if j != nil {
		defer func() { _ = j.Close() }()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ld := newLoader(cfg, j)
	ld.Start(ctx)
	defer ld.Close()

	submit := func(path string) {
		if _, err := ld.Submit(path); err != nil {
			applog.WithComponent("cli").Warn("resubmit skipped", slog.String("path", path), slog.Any("err", err))
		}
	}
	errc := make(chan error, 1)
	go func() { errc <- loader.Watch(ctx, dir, cfg.Levels.Extension, submit) }()

	fmt.Fprintf(out, "watching %s for %s changes, Ctrl+C to stop\n", dir, cfg.Levels.Extension)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case err := <-errc:
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				return 1
			}
			return 0
		case <-tick.C:
			for {
				r, ok := ld.Poll()
				if !ok {
					break
				}
				printResult(out, r)
			}
		}
	}
}

// cmdHistory lists recent journal entries, or only the failures of path when
// path is set.
func cmdHistory(cfg config.AppConfig, path string, n int, out io.Writer) int {
	j, err := journal.Open(cfg.JournalDSN())
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	defer func() { _ = j.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var entries []journal.Entry
	if path != "" {
		entries, err = j.Failures(ctx, path, n)
	} else {
		entries, err = j.Recent(ctx, n)
	}
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	if len(entries) == 0 {
		if path != "" {
			fmt.Fprintln(out, "no failed compiles recorded for", path)
		} else {
			fmt.Fprintln(out, "no compiles recorded")
		}
		return 0
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-9s %-12s %s", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Status, e.Level, e.Path)
		if e.Message != "" {
			line += "  " + e.Message
		}
		fmt.Fprintln(out, line)
	}
	return 0
}
