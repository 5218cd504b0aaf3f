package services

import (
	"os"
	"path/filepath"
	"strings"
)

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// allTrue folds verdicts with logical AND. No verdicts is a pass.
func allTrue(verdicts []bool) bool {
	for _, v := range verdicts {
		if !v {
			return false
		}
	}
	return true
}

// quotedList renders items the way the report prints path lists: ['a', 'b']
func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
