// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchSamples hot-reloads the sample dataset whenever the override file
// changes.
//
// Description:
//
//	Performs an initial Reload, then watches the file's directory (editors
//	replace files by rename, so watching the path itself misses updates).
//	A failed reload keeps the previous dataset and logs a warning. Returns
//	once ctx is done. Watch setup failure disables hot reload but is not
//	fatal to the caller.
func WatchSamples(ctx context.Context, provider *SampleProvider, path string) {
	if err := provider.Reload(path); err != nil {
		slog.Warn("Initial samples override load failed, keeping embedded dataset",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("Samples hot reload disabled, watcher unavailable",
			slog.String("error", err.Error()))
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		slog.Warn("Samples hot reload disabled, cannot watch directory",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return
	}
	slog.Info("Watching samples override for changes", slog.String("path", path))

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := provider.Reload(path); err != nil {
				slog.Warn("Samples reload failed, keeping previous dataset",
					slog.String("error", err.Error()))
				continue
			}
			slog.Info("Samples dataset reloaded", slog.String("path", path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Samples watcher error", slog.String("error", err.Error()))
		}
	}
}
