package dedupe

import (
	"crypto/sha256"
	"errors"
	"io"
	"io/fs"
	"os"

	internal "github.com/ZanzyTHEbar/dupesweep/sweep"

	"github.com/rs/zerolog"
)

// Digester computes a content digest, reporting false when the file cannot be compared
type Digester interface {
	Hash(path string) (Digest, bool)
}

// Hasher streams files through SHA-256 in fixed-size blocks
type Hasher struct {
	blockSize int
	logger    zerolog.Logger
}

// NewHasher creates a hasher; a non-positive blockSize selects 8 KiB
func NewHasher(blockSize int, logger zerolog.Logger) *Hasher {
	if blockSize <= 0 {
		blockSize = internal.DefaultHashBlockSize
	}
	return &Hasher{blockSize: blockSize, logger: logger}
}

// Hash digests the file at path. Missing files, symbolic links, non-regular
// files and read failures yield false instead of an error.
func (h *Hasher) Hash(path string) (Digest, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		h.logAbsent(path, err)
		return Digest{}, false
	}
	if info.Mode()&fs.ModeSymlink != 0 || !info.Mode().IsRegular() {
		h.logger.Debug().Str("path", path).Str("mode", info.Mode().String()).Msg("Not hashing non-regular file")
		return Digest{}, false
	}

	f, err := os.Open(path)
	if err != nil {
		h.logAbsent(path, err)
		return Digest{}, false
	}
	defer f.Close()

	sum := sha256.New()
	buf := make([]byte, h.blockSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			sum.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.logAbsent(path, err)
			return Digest{}, false
		}
	}

	var d Digest
	copy(d[:], sum.Sum(nil))
	return d, true
}

func (h *Hasher) logAbsent(path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		h.logger.Debug().Str("path", path).Msg("File vanished before hashing")
		return
	}
	h.logger.Warn().Err(err).Str("path", path).Msg("Error reading file")
}

var _ Digester = (*Hasher)(nil)
