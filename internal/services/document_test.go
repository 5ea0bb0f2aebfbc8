package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDocumentWritesPDF(t *testing.T) {
	dir := t.TempDir()
	report := `# COBS Bread Review Analysis

## SECTION 1: 5-STAR REVIEWS

Customers **love** the sourdough loaf.

- Cheese buns mentioned 14 times
- Cinnamon buns mentioned 9 times

1. Staff friendliness
2) Fresh bread at opening

**Bottom line**

Regular paragraph with an **inline bold** run and a trailing sentence.`

	path, err := RenderDocument("COBS Bread, 123 Main St, Vancouver, BC", report, dir)
	assert.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "COBS_Research_"), name)
	assert.True(t, strings.HasSuffix(name, ".pdf"), name)
	// Commas are outside the safe filename set
	assert.NotContains(t, name, ",")

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}

func TestRenderDocumentCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	_, err := RenderDocument("Test St.", "body", dir)
	assert.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestSanitizeLocation(t *testing.T) {
	assert.Equal(t, "COBS Bread_ 123 Main St_ Vancouver_ BC",
		sanitizeLocation("COBS Bread, 123 Main St, Vancouver, BC"))

	long := strings.Repeat("a", 80)
	assert.Len(t, sanitizeLocation(long), 50)
}
