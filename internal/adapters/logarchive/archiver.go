// Package logarchive compresses toolchain logs of previous runs with zstd.
package logarchive

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	archiveExt = ".zst"
	// DefaultKeep is the number of archives kept per log name.
	DefaultKeep = 10
	stampLayout = "20060102T150405.000000000"
)

var _ ports.LogArchiver = (*Archiver)(nil)

// Archiver implements ports.LogArchiver.
type Archiver struct {
	keep int
}

// New creates an Archiver that keeps the newest keep archives per log name.
func New(keep int) *Archiver {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Archiver{keep: keep}
}

// Archive compresses the log at path into dir and removes the original.
// The archive is named after the log and its modification time, e.g.
// build-20240501T100000.000000000.log.zst. It returns "" when there is no log.
func (a *Archiver) Archive(path, dir string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to stat log"), "path", path)
	}
	if info.Size() == 0 {
		return "", removeLog(path)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	target := filepath.Join(dir, name+"-"+info.ModTime().UTC().Format(stampLayout)+ext+archiveExt)

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create archive directory"), "path", dir)
	}
	if err := compress(path, target); err != nil {
		_ = os.Remove(target)
		return "", zerr.With(zerr.With(err, "path", path), "archive", target)
	}
	if err := removeLog(path); err != nil {
		return "", err
	}
	if err := a.rotate(dir, name+"-", ext+archiveExt); err != nil {
		return "", err
	}
	return target, nil
}

func compress(src, dst string) error {
	//nolint:gosec // Log paths are derived from the bake directory
	in, err := os.Open(src)
	if err != nil {
		return zerr.Wrap(err, "failed to open log")
	}
	defer func() { _ = in.Close() }()

	//nolint:gosec // Archive paths are derived from the bake directory
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return zerr.Wrap(err, "failed to create archive")
	}

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = out.Close()
		return zerr.Wrap(err, "failed to create encoder")
	}
	if _, err := io.Copy(enc, in); err != nil {
		_ = enc.Close()
		_ = out.Close()
		return zerr.Wrap(err, "failed to compress log")
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return zerr.Wrap(err, "failed to flush archive")
	}
	if err := out.Close(); err != nil {
		return zerr.Wrap(err, "failed to close archive")
	}
	return nil
}

func removeLog(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return zerr.With(zerr.Wrap(err, "failed to remove log"), "path", path)
	}
	return nil
}

// rotate deletes the oldest archives beyond the keep limit.
// The timestamp layout sorts lexically.
func (a *Archiver) rotate(dir, prefix, suffix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to list archives"), "path", dir)
	}

	var archives []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			archives = append(archives, name)
		}
	}
	if len(archives) <= a.keep {
		return nil
	}

	slices.Sort(archives)
	for _, name := range archives[:len(archives)-a.keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return zerr.With(zerr.Wrap(err, "failed to remove archive"), "path", name)
		}
	}
	return nil
}

// Read decompresses an archive written by Archive.
func Read(path string) ([]byte, error) {
	//nolint:gosec // Archive path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open archive"), "path", path)
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create decoder"), "path", path)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decompress archive"), "path", path)
	}
	return data, nil
}
