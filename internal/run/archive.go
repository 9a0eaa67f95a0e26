package run

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// ArchiveName is <team>_ALL_RUNS.zip.
func ArchiveName(team string) string {
	return team + "_ALL_RUNS.zip"
}

// Archive packs the files of reports into dir/ArchiveName(team), flat, in
// the order given.
func Archive(dir, team string, reports []Report) (string, error) {
	path := filepath.Join(dir, ArchiveName(team))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}
	zw := zip.NewWriter(out)
	for _, r := range reports {
		if err := addFile(zw, r.Path); err != nil {
			zw.Close()
			out.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("finishing archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing archive: %w", err)
	}
	return path, nil
}

func addFile(zw *zip.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()
	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:   filepath.Base(path),
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("adding %s: %w", path, err)
	}
	if _, err := io.Copy(entry, in); err != nil {
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	return nil
}
