package dict

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ignoredNames are placeholder entries in the .cnv files that must not end
// up in the dictionary.
var ignoredNames = map[string]bool{
	"ignorado":           true,
	"municipio ignorado": true,
	"município ignorado": true,
}

// LoadMunicipalities reads every Munic*.cnv file under dir and stores the
// resulting code→name map on the set. Data lines carry a 6-digit code
// followed by the name tokens, optionally trailed by the code repeated;
// lines starting with ';' are comments. Malformed lines are skipped
// silently and a missing directory yields an empty map, not an error.
func (s *Set) LoadMunicipalities(dir string, logger *zap.Logger) {
	patterns := []string{"Munic*.cnv", "munic*.cnv"}
	var files []string
	for _, p := range patterns {
		matches, _ := filepath.Glob(filepath.Join(dir, p))
		files = append(files, matches...)
	}
	if len(files) == 0 {
		logger.Warn("no municipality dictionary files found, raw codes will be used as labels",
			zap.String("dir", dir))
		return
	}

	for _, path := range files {
		if err := s.loadMunicFile(path); err != nil {
			logger.Warn("skipping unreadable municipality file",
				zap.String("file", filepath.Base(path)), zap.Error(err))
		}
	}
	logger.Info("municipality dictionary loaded",
		zap.Int("entries", len(s.Municipalities)), zap.Int("files", len(files)))
}

func (s *Set) loadMunicFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := decodeLatin1(scanner.Bytes())
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		code, name, ok := parseMunicLine(line)
		if !ok {
			continue
		}
		if ignoredNames[strings.ToLower(name)] {
			continue
		}
		s.Municipalities[code] = name
	}
	return scanner.Err()
}

// parseMunicLine extracts the 6-digit code token and the name tokens around
// it. Lines come in two layouts: "code name [code]" and the tabulation
// layout "seq name code", where seq is a short ordinal.
func parseMunicLine(line string) (code, name string, ok bool) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return "", "", false
	}
	for i, p := range parts {
		if !isSixDigits(p) {
			continue
		}
		nameParts := parts[i+1:]
		if len(nameParts) > 0 && isSixDigits(nameParts[len(nameParts)-1]) {
			nameParts = nameParts[:len(nameParts)-1]
		}
		if len(nameParts) == 0 {
			// Code at end of line, name before it. A short leading token
			// is the tabulation ordinal, not part of the name.
			nameParts = parts[:i]
			if len(nameParts) > 1 && len(nameParts[0]) <= 2 && isDigits(nameParts[0]) {
				nameParts = nameParts[1:]
			}
		}
		if len(nameParts) == 0 {
			return "", "", false
		}
		return p, strings.Join(nameParts, " "), true
	}
	return "", "", false
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// decodeLatin1 converts a Latin-1 byte slice to UTF-8. Latin-1 code points
// map directly onto the first 256 Unicode code points.
func decodeLatin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
