package dict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeLatin1(t *testing.T, path string, lines []string) {
	t.Helper()
	var b []byte
	for _, line := range lines {
		for _, r := range line {
			b = append(b, byte(r)) // test fixtures stay within Latin-1
		}
		b = append(b, '\n')
	}
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func TestLoadMunicipalities_ParsesCnvLayouts(t *testing.T) {
	dir := t.TempDir()
	writeLatin1(t, filepath.Join(dir, "MunicBR.cnv"), []string{
		"; comment line",
		"",
		"355030 São Paulo 355030",
		"  1 Belo Horizonte 310620",
		"330455 Rio de Janeiro",
		"  2 Município Ignorado 999999",
		"garbage line",
	})

	s := New()
	s.LoadMunicipalities(dir, zap.NewNop())

	assert.Equal(t, "São Paulo", s.Municipality("355030"))
	assert.Equal(t, "Belo Horizonte", s.Municipality("310620"))
	assert.Equal(t, "Rio de Janeiro", s.Municipality("330455"))
	_, ignored := s.Municipalities["999999"]
	assert.False(t, ignored, "placeholder entries stay out of the dictionary")
	assert.Len(t, s.Municipalities, 3)
}

func TestLoadMunicipalities_MissingDirIsNotFatal(t *testing.T) {
	s := New()
	s.LoadMunicipalities(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	assert.Empty(t, s.Municipalities)
}

func TestParseMunicLine(t *testing.T) {
	t.Run("code first with trailing repeat", func(t *testing.T) {
		code, name, ok := parseMunicLine("355030 São Paulo 355030")
		require.True(t, ok)
		assert.Equal(t, "355030", code)
		assert.Equal(t, "São Paulo", name)
	})
	t.Run("ordinal then name then code", func(t *testing.T) {
		code, name, ok := parseMunicLine("12 Porto Alegre 431490")
		require.True(t, ok)
		assert.Equal(t, "431490", code)
		assert.Equal(t, "Porto Alegre", name)
	})
	t.Run("no six digit token", func(t *testing.T) {
		_, _, ok := parseMunicLine("just words here")
		assert.False(t, ok)
	})
}
