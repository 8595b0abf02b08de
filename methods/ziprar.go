package methods

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"
)

// Unzip extracts a zip archive into dest. Entries escaping dest are rejected
// by the archiver.
func Unzip(src, dest string) error {
	z := archiver.NewZip()
	z.OverwriteExisting = true
	if err := z.Unarchive(src, dest); err != nil {
		return fmt.Errorf("unzip %s: %w", filepath.Base(src), err)
	}
	return nil
}

// UnzipBytes writes data to a scratch file inside dest and extracts it there.
func UnzipBytes(data []byte, dest string) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dest, "upload-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return Unzip(tmp.Name(), dest)
}

// ZipFileOut packs every regular file below folderPath into an in-memory zip.
// Entry names are prefixed with prefix, e.g. "shapefile/points.shp".
func ZipFileOut(folderPath, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	z := archiver.NewZip()
	if err := z.Create(&buf); err != nil {
		return nil, err
	}
	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(folderPath, path)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		return z.Write(archiver.File{
			FileInfo: archiver.FileInfo{
				FileInfo:   info,
				CustomName: filepath.ToSlash(filepath.Join(prefix, relPath)),
			},
			ReadCloser: file,
		})
	})
	if err != nil {
		z.Close()
		return nil, fmt.Errorf("zip %s: %w", folderPath, err)
	}
	if err := z.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
