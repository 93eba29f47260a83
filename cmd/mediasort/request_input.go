package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"mediasort/internal/media"
	"mediasort/internal/services"
)

// collectFiles turns CLI arguments into download-relative, slash-separated
// paths. Absolute arguments must live below root. dir, when set, adds every
// regular file below root/dir.
func collectFiles(fs afero.Fs, root string, args []string, dir string) ([]string, error) {
	var files []string
	for _, arg := range args {
		rel, err := relativeTo(root, arg)
		if err != nil {
			return nil, err
		}
		files = append(files, rel)
	}
	if dir = strings.TrimSpace(dir); dir != "" {
		relDir, err := relativeTo(root, dir)
		if err != nil {
			return nil, err
		}
		base := filepath.Join(root, filepath.FromSlash(relDir))
		err = afero.Walk(fs, base, func(p string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, services.Wrap(services.ErrMalformedRequest, "cli", "collect files", dir, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func relativeTo(root, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", services.Wrap(services.ErrMalformedRequest, "cli", "collect files", "empty path", nil)
	}
	if filepath.IsAbs(value) {
		rel, err := filepath.Rel(root, value)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", services.Wrap(services.ErrMalformedRequest, "cli", "collect files", fmt.Sprintf("%s is outside the download directory %s", value, root), nil)
		}
		value = rel
	}
	return filepath.ToSlash(filepath.Clean(value)), nil
}

// parseMeta reads key=value pairs. Values that look like JSON arrays or
// objects are decoded; a comma separated category list becomes a list.
func parseMeta(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, services.Wrap(services.ErrMalformedRequest, "cli", "parse meta", fmt.Sprintf("%q is not key=value", pair), nil)
		}
		value = strings.TrimSpace(value)
		switch {
		case strings.HasPrefix(value, "[") || strings.HasPrefix(value, "{"):
			var decoded any
			if err := json.Unmarshal([]byte(value), &decoded); err != nil {
				return nil, services.Wrap(services.ErrMalformedRequest, "cli", "parse meta", key, err)
			}
			out[key] = decoded
		case key == media.MetaCategory && strings.Contains(value, ","):
			out[key] = strings.Split(value, ",")
		default:
			out[key] = value
		}
	}
	return out, nil
}

// readPlan accepts a bare action list or any object with a "plan" field,
// such as the JSON printed by `mediasort plan --json`.
func readPlan(path string) ([]media.PlanAction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	var plan []media.PlanAction
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &plan)
	} else {
		var wrapper struct {
			Plan []media.PlanAction `json:"plan"`
		}
		err = json.Unmarshal(data, &wrapper)
		plan = wrapper.Plan
	}
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedRequest, "cli", "read plan", path, err)
	}
	for _, action := range plan {
		if err := action.Validate(); err != nil {
			return nil, services.Wrap(services.ErrMalformedRequest, "cli", "read plan", path, err)
		}
	}
	return plan, nil
}
