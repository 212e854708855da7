package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anime-shed/palette-inspector/internal/analyzer"
	"github.com/anime-shed/palette-inspector/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid minimal PNG data for a 1x1 transparent pixel
var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func writeFiles(t *testing.T, files map[string][]byte) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, data := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		paths = append(paths, p)
	}
	return paths
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Palette Inspector 1.2.3")
	assert.Contains(t, out, "Go version:")
}

func TestAnalyzeCommand_Text(t *testing.T) {
	paths := writeFiles(t, map[string][]byte{"a.png": pngData, "b.png": pngData})

	out, err := execute(t, append([]string{"analyze", "--step", "0"}, paths...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "[1/7] Uploading images...")
	assert.Contains(t, out, "[7/7] Generating recommendations...")
	assert.Contains(t, out, "Bright Spring")
	for _, c := range analyzer.DemoResult().RecommendedColors {
		assert.Contains(t, out, c)
	}
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	paths := writeFiles(t, map[string][]byte{
		"a.png":     pngData,
		"b.png":     pngData,
		"notes.txt": []byte("just some words"),
	})

	out, err := execute(t, append([]string{"analyze", "--step", "0", "--json"}, paths...)...)
	require.NoError(t, err)

	jsonStart := strings.Index(out, "{")
	require.GreaterOrEqual(t, jsonStart, 0)
	assert.Contains(t, out[:jsonStart], "Skipped 1 file(s)")

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out[jsonStart:]), &result))
	assert.Equal(t, *analyzer.DemoResult(), result)
}

func TestAnalyzeCommand_NeedsTwoImages(t *testing.T) {
	paths := writeFiles(t, map[string][]byte{"a.png": pngData, "notes.txt": []byte("hi")})

	_, err := execute(t, append([]string{"analyze", "--step", "0"}, paths...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need at least 2 images")
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "analyze", "--step", "0", "does-not-exist.png", "nor-this.png")
	assert.Error(t, err)
}

func TestAnalyzeCommand_RemoteServer(t *testing.T) {
	var parts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for name := range r.MultipartForm.File {
			parts = append(parts, name)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.AnalysisResult{
			Season:            "Deep Autumn",
			RecommendedColors: []string{"#800000"},
		})
	}))
	defer srv.Close()

	paths := writeFiles(t, map[string][]byte{"a.png": pngData, "b.png": pngData})
	out, err := execute(t, append([]string{"analyze", "--step", "0", "--server", srv.URL}, paths...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Deep Autumn")
	assert.ElementsMatch(t, []string{"image0", "image1"}, parts)
}

func TestAnalyzeCommand_BadServerURL(t *testing.T) {
	paths := writeFiles(t, map[string][]byte{"a.png": pngData, "b.png": pngData})
	_, err := execute(t, append([]string{"analyze", "--server", "ftp://example.com"}, paths...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --server")
}

func TestRenderResult(t *testing.T) {
	out := renderResult(analyzer.DemoResult())

	assert.Contains(t, out, "Your Natural Colors")
	assert.Contains(t, out, "#F4C2A1")
	assert.Contains(t, out, "Colors to Avoid")
	assert.Contains(t, out, "#2C3E50")
}

func TestRunAnalyze_Cancelled(t *testing.T) {
	paths := writeFiles(t, map[string][]byte{"a.png": pngData, "b.png": pngData})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runAnalyze(ctx, &out, paths, &analyzeOptions{step: time.Hour, timeout: time.Minute})
	assert.ErrorIs(t, err, context.Canceled)
}
