// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// sceneWatcher reports writes to one scene file.
type sceneWatcher struct {
	w    *fsnotify.Watcher
	name string
}

// newSceneWatcher starts watching path through its parent directory, so
// replacing the file counts as a write.
func newSceneWatcher(path string) (*sceneWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &sceneWatcher{w: w, name: filepath.Clean(path)}, nil
}

// run calls fn after every write to the file until ctx is done or the
// watcher fails.
func (sw *sceneWatcher) run(ctx context.Context, fn func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sw.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != sw.name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				fn()
			}
		case err, ok := <-sw.w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (sw *sceneWatcher) Close() error { return sw.w.Close() }
