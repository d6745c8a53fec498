package report

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Archive bundles the output directory, the stats directory and the
// given report files into the configured zip archive and returns its
// path. Directories that do not exist are skipped.
func (b *Builder) Archive(extras ...string) (string, error) {
	archivePath := filepath.Join(b.cfg.Report.Dir, b.cfg.Report.ArchiveName)
	if err := os.MkdirAll(b.cfg.Report.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	count := 0

	for _, dir := range []string{b.layout.OutDir, b.layout.StatsDir} {
		n, err := addDir(zw, dir, archivePath)
		if err != nil {
			zw.Close()
			return "", err
		}
		count += n
	}
	for _, path := range extras {
		if err := addFile(zw, path, filepath.Base(path)); err != nil {
			zw.Close()
			return "", err
		}
		count++
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalizing archive: %w", err)
	}
	b.log.Info("archive written", zap.String("path", archivePath), zap.Int("files", count))
	return archivePath, nil
}

// addDir stores every regular file under dir, prefixed with the
// directory's base name so the archive unpacks into tidy folders.
func addDir(zw *zip.Writer, dir, archivePath string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	prefix := filepath.Base(filepath.Clean(dir))
	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || path == archivePath {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(filepath.Join(prefix, rel))); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("archiving %s: %w", dir, err)
	}
	return count, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	return nil
}
