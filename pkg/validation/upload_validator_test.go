package validation

import (
	"fmt"
	"testing"

	"github.com/anime-shed/palette-inspector/pkg/models"

	"github.com/stretchr/testify/assert"
)

func file(name, contentType string) models.UploadedFile {
	return models.UploadedFile{Name: name, ContentType: contentType, Data: []byte(name)}
}

func names(files []models.UploadedFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

// Every combination of 0-5 dropped files, each either image or non-image typed,
// yields only the image entries in drop order, truncated to three.
func TestUploadGate_AcceptAllCombinations(t *testing.T) {
	gate := NewUploadGate()

	for n := 0; n <= 5; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			var dropped []models.UploadedFile
			var want []string
			for i := 0; i < n; i++ {
				name := fmt.Sprintf("f%d", i)
				if mask&(1<<i) != 0 {
					dropped = append(dropped, file(name, "image/jpeg"))
					want = append(want, name)
				} else {
					dropped = append(dropped, file(name, "text/plain"))
				}
			}
			if len(want) > MaxFiles {
				want = want[:MaxFiles]
			}

			got := names(gate.Accept(nil, dropped))
			if len(want) == 0 {
				assert.Empty(t, got, "n=%d mask=%b", n, mask)
				continue
			}
			assert.Equal(t, want, got, "n=%d mask=%b", n, mask)
		}
	}
}

func TestUploadGate_AcceptAppendsToExisting(t *testing.T) {
	gate := NewUploadGate()
	existing := []models.UploadedFile{file("a", "image/png")}

	got := gate.Accept(existing, []models.UploadedFile{
		file("b", "image/webp"),
		file("notes", "application/pdf"),
		file("c", "IMAGE/JPEG"),
		file("d", "image/png"),
	})

	assert.Equal(t, []string{"a", "b", "c"}, names(got))
	assert.Len(t, existing, 1, "input must not be mutated")
}

func TestUploadGate_AcceptWhenFull(t *testing.T) {
	gate := NewUploadGate()
	full := []models.UploadedFile{file("a", "image/png"), file("b", "image/png"), file("c", "image/png")}

	got := gate.Accept(full, []models.UploadedFile{file("d", "image/png")})

	assert.Equal(t, []string{"a", "b", "c"}, names(got))
	assert.True(t, gate.IsFull(got))
	assert.Equal(t, 0, gate.Remaining(got))
}

func TestUploadGate_Remove(t *testing.T) {
	gate := NewUploadGate()
	files := []models.UploadedFile{file("a", "image/png"), file("b", "image/png"), file("c", "image/png")}

	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{"first", 0, []string{"b", "c"}},
		{"middle", 1, []string{"a", "c"}},
		{"last", 2, []string{"a", "b"}},
		{"negative", -1, []string{"a", "b", "c"}},
		{"past end", 3, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(gate.Remove(files, tt.index)))
		})
	}
	assert.Len(t, files, 3)
}

func TestUploadGate_CanAnalyze(t *testing.T) {
	gate := NewUploadGate()
	var files []models.UploadedFile

	for i := 0; i <= MaxFiles; i++ {
		assert.Equal(t, i >= MinFiles, gate.CanAnalyze(files), "len=%d", i)
		files = append(files, file(fmt.Sprintf("f%d", i), "image/jpeg"))
	}
}
