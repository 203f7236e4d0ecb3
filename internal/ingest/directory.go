package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CollectPDFs expands args into PDF file paths. Directories are walked
// recursively; hidden entries are skipped when skipHidden is set. Plain
// file arguments are kept as given, whatever their extension.
func CollectPDFs(args []string, skipHidden bool) ([]string, error) {
	var out []string
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if skipHidden && path != arg && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	if len(out) == 0 {
		return nil, errors.New("no PDF files found")
	}
	return out, nil
}
