package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints module source trees.
type Hasher struct {
	walker  *Walker
	ignores []string
}

// NewHasher creates a new Hasher. Files matching one of the ignore patterns
// do not take part in the fingerprint.
func NewHasher(walker *Walker, ignores ...string) *Hasher {
	return &Hasher{walker: walker, ignores: ignores}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeModuleHash computes a single hash over the module name, the salt
// values and every file of the module's source tree. Paths are hashed
// relative to the source dir so the result does not depend on the checkout
// location.
func (h *Hasher) ComputeModuleHash(module *domain.Module, mode domain.ChecksumMode, salt []string) (string, error) {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(module.Name)
	_, _ = hasher.Write([]byte{0})

	sorted := slices.Clone(salt)
	slices.Sort(sorted)
	for _, s := range sorted {
		_, _ = hasher.WriteString(s)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0}) // Section separator

	if module.SourceDir != "" {
		if err := h.hashTree(module.SourceDir, mode, hasher); err != nil {
			return "", zerr.With(err, "module", module.Name)
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func (h *Hasher) hashTree(root string, mode domain.ChecksumMode, mainHasher io.Writer) error {
	info, err := os.Stat(root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat source dir"), "path", root)
	}
	if !info.IsDir() {
		return h.hashFile(root, filepath.Base(root), mode, mainHasher)
	}

	files, walkErr := h.walker.WalkFiles(root, h.ignores)
	for path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}
		if err := h.hashFile(path, filepath.ToSlash(rel), mode, mainHasher); err != nil {
			return err
		}
	}
	if err := walkErr(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to walk source dir"), "path", root)
	}
	return nil
}

func (h *Hasher) hashFile(path, rel string, mode domain.ChecksumMode, mainHasher io.Writer) error {
	_, _ = mainHasher.Write([]byte(rel))
	_, _ = mainHasher.Write([]byte{0})

	if mode == domain.ChecksumModTime {
		info, err := os.Stat(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
		}
		if err := binary.Write(mainHasher, binary.LittleEndian, info.Size()); err != nil {
			return zerr.Wrap(err, "failed to write size to digest")
		}
		if err := binary.Write(mainHasher, binary.LittleEndian, info.ModTime().UnixNano()); err != nil {
			return zerr.Wrap(err, "failed to write modification time to digest")
		}
		return nil
	}

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(mainHasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
