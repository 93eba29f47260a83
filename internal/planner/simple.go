package planner

import (
	"path"
	"strings"

	"mediasort/internal/media"
)

// simplePlan moves whole entries under the category root without renaming.
// A lone file moves by itself. Files without a shared top-level directory
// move entry by entry. A shared top-level directory moves as a unit when any
// file sits directly in it; otherwise each of its subdirectories moves and the
// wrapper is dropped.
func simplePlan(category media.Category, files []string) []media.PlanAction {
	root := string(category)
	if target, ok := media.TargetFor(category); ok {
		root = string(target)
	}
	files = distinct(files)
	if len(files) == 1 {
		return []media.PlanAction{media.Move(files[0], path.Join(root, media.BaseName(files[0])))}
	}

	type entry struct {
		prefix string
		parts  []string
	}
	entries := make([]entry, len(files))
	shared := true
	for i, file := range files {
		clean := path.Clean(strings.ReplaceAll(file, `\`, "/"))
		prefix := ""
		if strings.HasPrefix(clean, "/") {
			prefix = "/"
			clean = strings.TrimPrefix(clean, "/")
		}
		entries[i] = entry{prefix: prefix, parts: strings.Split(clean, "/")}
		if len(entries[i].parts) < 2 || entries[i].parts[0] != entries[0].parts[0] || prefix != entries[0].prefix {
			shared = false
		}
	}

	var (
		out  []media.PlanAction
		seen = make(map[string]struct{})
	)
	add := func(source, name string) {
		if _, ok := seen[source]; ok {
			return
		}
		seen[source] = struct{}{}
		out = append(out, media.Move(source, path.Join(root, name)))
	}

	if !shared {
		for _, e := range entries {
			add(e.prefix+e.parts[0], e.parts[0])
		}
		return out
	}

	top := entries[0].prefix + entries[0].parts[0]
	for _, e := range entries {
		if len(e.parts) == 2 {
			return []media.PlanAction{media.Move(top, path.Join(root, entries[0].parts[0]))}
		}
	}
	for _, e := range entries {
		add(top+"/"+e.parts[1], e.parts[1])
	}
	return out
}
