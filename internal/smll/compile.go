/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package smll compiles level scripts into scene data.
//
// A level script is a sequence of "function(args);" statements and
// "keyword{ ... }" blocks. Compilation normalizes the source, scans it block
// by block, fills one blueprint per block, validates required fields when a
// block closes and finally assembles the runtime scene.Level. Any error aborts
// the whole compile and is returned as a *CompileError.
package smll

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "smllc/internal/log"
	"smllc/internal/scene"
)

// LevelName derives a level name from its file path: the base name up to the
// first dot.
func LevelName(path string) string {
	name, _, _ := strings.Cut(filepath.Base(path), ".")
	return name
}

// Compile reads and compiles the level file at path.
func Compile(path string) (*scene.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	return CompileSource(LevelName(path), string(data))
}

// CompileSource compiles an in-memory level script.
func CompileSource(name, src string) (*scene.Level, error) {
	return CompileLines(name, strings.Split(src, "\n"))
}

// CompileLines compiles pre-split source lines.
func CompileLines(name string, raw []string) (*scene.Level, error) {
	start := time.Now()
	log := applog.WithOperation(applog.WithComponent("smll"), "compile")

	lines, err := Normalize(raw)
	if err != nil {
		log.Debug("normalize failed", slog.String("level", name), slog.Any("err", err))
		return nil, err
	}
	lvl, err := parseLevel(name, lines)
	if err != nil {
		log.Debug("compile failed", slog.String("level", name), slog.Any("err", err))
		return nil, err
	}
	log.Debug("compiled",
		slog.String("level", lvl.Name),
		slog.Int("lines", len(raw)),
		slog.Int("objects", len(lvl.Objects)),
		slog.Int("lights", len(lvl.PointLights)),
		slog.Int("colgroups", len(lvl.ColGroups)),
		slog.Duration("duration", time.Since(start)),
	)
	return lvl, nil
}
