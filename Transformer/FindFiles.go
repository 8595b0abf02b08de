package Transformer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFiles lists files under root whose extension is ext, case-insensitive.
func FindFiles(root string, ext string) []string {
	var files []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), "."+ext) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}
