// Package chunk splits large database files into fixed-size parts so they
// fit under source-control blob limits, and reassembles them. Reassembly is
// plain concatenation in lexical filename order; there are no headers or
// checksums, the numeric suffix alone carries the ordering.
package chunk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// DefaultSize is the part size used when none is given.
const DefaultSize = 50 << 20

// Split writes src as a sequence of size-byte part files next to it, named
// src.part000, src.part001 and so on. It returns the part paths in order.
// An existing set of parts for the same file is removed first so a shorter
// re-split cannot leave stale trailing parts behind.
func Split(src string, size int64, logger *zap.Logger) ([]string, error) {
	if size <= 0 {
		size = DefaultSize
	}
	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	stale, err := Parts(src)
	if err != nil {
		return nil, err
	}
	for _, p := range stale {
		if err := os.Remove(p); err != nil {
			return nil, fmt.Errorf("remove stale part: %w", err)
		}
	}

	var parts []string
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s.part%03d", src, i)
		n, err := writePart(name, in, size)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			_ = os.Remove(name)
			break
		}
		parts = append(parts, name)
		logger.Info("wrote part", zap.String("path", name), zap.Int64("bytes", n))
		if n < size {
			break
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("source %s is empty", src)
	}
	return parts, nil
}

func writePart(name string, in io.Reader, size int64) (int64, error) {
	out, err := os.Create(name)
	if err != nil {
		return 0, fmt.Errorf("create part: %w", err)
	}
	n, err := io.CopyN(out, in, size)
	if cerr := out.Close(); err == nil || err == io.EOF {
		err = cerr
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("write part %s: %w", name, err)
	}
	return n, nil
}

// Parts lists the existing part files for dst in lexical order.
func Parts(dst string) ([]string, error) {
	parts, err := filepath.Glob(dst + ".part*")
	if err != nil {
		return nil, fmt.Errorf("glob parts: %w", err)
	}
	sort.Strings(parts)
	return parts, nil
}

// Join concatenates the part files for dst back into dst. The write goes
// through a temp file and a rename so a failed join never leaves a
// truncated database behind.
func Join(dst string, logger *zap.Logger) error {
	parts, err := Parts(dst)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("no part files found for %s", dst)
	}

	tmp := dst + ".joining"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	var total int64
	for _, p := range parts {
		n, err := appendPart(out, p)
		if err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
			return err
		}
		total += n
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace output: %w", err)
	}
	logger.Info("joined parts",
		zap.String("path", dst), zap.Int("parts", len(parts)), zap.Int64("bytes", total))
	return nil
}

func appendPart(out io.Writer, path string) (int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open part: %w", err)
	}
	n, err := io.Copy(out, in)
	if cerr := in.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("read part %s: %w", path, err)
	}
	return n, nil
}
