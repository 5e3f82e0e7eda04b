package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// reloadDelay coalesces the burst of events a single save produces.
const reloadDelay = 150 * time.Millisecond

// Watch reloads path whenever it changes and hands the validated result to
// onChange. The parent directory is watched, so saves that replace the file
// (write to a temp file, then rename over it) are seen as well as in-place
// writes. Invalid reloads are logged and the previous config stays active.
// It runs until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	target := filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	log.Info().Str("path", target).Msg("watching config for changes")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				pending = time.After(reloadDelay)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				// The replacement arrives as a Create for the same name.
				log.Debug().Str("path", target).Str("op", event.Op.String()).Msg("config moved or removed")
			}

		case <-pending:
			pending = nil
			reload(target, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("config watcher error")
		}
	}
}

func reload(path string, onChange func(*Config)) {
	cfg, err := Load(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("config reload failed, keeping previous config")
		return
	}
	log.Info().Str("path", path).Msg("config reloaded")
	onChange(cfg)
}
