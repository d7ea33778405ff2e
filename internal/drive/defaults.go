package drive

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed defaults
var defaultsFS embed.FS

// Defaults returns the documents a fresh drive starts with: a sample
// graph, the theme, and the initial runtime, mode and flag values.
func Defaults() map[string][]byte {
	docs := make(map[string][]byte)
	err := fs.WalkDir(defaultsFS, "defaults", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := defaultsFS.ReadFile(p)
		if err != nil {
			return err
		}
		docs[strings.TrimPrefix(p, "defaults/")] = raw
		return nil
	})
	if err != nil {
		// the tree is compiled in; failing here is a build problem
		panic(fmt.Sprintf("reading embedded defaults: %v", err))
	}
	return docs
}

// Seed writes every document of docs that d does not have yet and
// returns the paths it wrote. Existing documents are left alone.
func Seed(ctx context.Context, d Drive, docs map[string][]byte) ([]string, error) {
	paths := make([]string, 0, len(docs))
	for p := range docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var written []string
	for _, p := range paths {
		_, err := d.Get(ctx, p)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return written, err
		}
		if err := d.Put(ctx, p, docs[p], Origin{}); err != nil {
			return written, fmt.Errorf("seeding %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// Reset overwrites the runtime and mode documents with their defaults,
// leaving entries, style and flags alone.
func Reset(ctx context.Context, d Drive, origin Origin) ([]string, error) {
	docs := Defaults()
	paths := make([]string, 0, len(docs))
	for p := range docs {
		switch KindOf(p) {
		case KindRuntime, KindMode:
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := d.Put(ctx, p, docs[p], origin); err != nil {
			return nil, fmt.Errorf("resetting %s: %w", p, err)
		}
	}
	return paths, nil
}
