package exporter

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeArchive zips srcs into dst, storing each file under its base name
func writeArchive(dst string, srcs []string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	for _, src := range srcs {
		if err := addToArchive(zw, src); err != nil {
			zw.Close()
			out.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("failed to sync archive: %w", err)
	}
	return out.Close()
}

func addToArchive(zw *zip.Writer, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(src)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", header.Name, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to compress %s: %w", header.Name, err)
	}
	return nil
}
