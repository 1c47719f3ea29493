// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/tickerchat/internal/logging"
)

// Watch monitors the config file for changes and invokes onChange with the
// freshly loaded configuration. It also updates the global config. The
// returned stop function releases the watcher.
//
// Editors often replace files via rename, so the parent directory is
// watched rather than the file itself.
func Watch(onChange func(*Config)) (stop func(), err error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, loadErr := LoadFromPath(path)
				if loadErr != nil {
					logging.L().Warn("config reload failed", zap.Error(loadErr))
					continue
				}
				SetGlobal(cfg)
				logging.L().Info("config reloaded", zap.String("path", path))
				if onChange != nil {
					onChange(cfg)
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.L().Warn("config watcher error", zap.Error(watchErr))
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
