package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// ExtractAll extracts each document in order and concatenates the pages into one continuous
// sequence: the second document's page 1 follows the first document's last page. The first
// failing document aborts the whole set.
func ExtractAll(ctx context.Context, ex PageExtractor, paths []string) (entity.Pages, error) {
	all := entity.Pages{}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages, err := ex.Extract(ctx, p)
		if err != nil {
			return nil, err
		}
		all = all.Append(pages)
	}
	return all, nil
}

// CollectDocuments walks root and returns the documents whose extension is in includeExts
// (or the default pdf/txt set), sorted by path. Hidden files and directories are skipped when
// skipHidden is set.
func CollectDocuments(root string, includeExts []string, skipHidden bool) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}

	exts := map[string]struct{}{}
	if len(includeExts) == 0 {
		exts = constants.AllowedExtensions
	} else {
		for _, e := range includeExts {
			if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if skipHidden && path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := exts[constants.NormalizeExt(filepath.Ext(path))]; ok {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(docs)
	return docs, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
