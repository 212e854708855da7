package transport

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"regexp"
	"strings"

	"github.com/anime-shed/palette-inspector/pkg/models"
	"github.com/anime-shed/palette-inspector/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// page is the data every screen template receives
type page struct {
	Title     string
	Refresh   int
	CSRFField template.HTML
	Error     string
	Success   string
	Data      interface{}
}

type swatchView struct {
	Color string
	Label string
	Size  string
	Avoid bool
}

var templateFuncs = template.FuncMap{
	"inc":          func(i int) int { return i + 1 },
	"dataURL":      dataURL,
	"swatchColor":  swatchColor,
	"percentWidth": percentWidth,
	"swatch": func(color, label, size string, avoid bool) swatchView {
		return swatchView{Color: color, Label: label, Size: size, Avoid: avoid}
	},
}

func loadTemplates() *template.Template {
	return template.Must(template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.gohtml"))
}

func render(c *gin.Context, name string, p page) {
	p.CSRFField = csrf.TemplateField(c.Request)
	c.HTML(http.StatusOK, name, p)
}

// dataURL inlines an uploaded image for preview. Non-image entries render nothing.
func dataURL(f models.UploadedFile) template.URL {
	if !validation.IsImage(f) {
		return ""
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	return template.URL("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(f.Data))
}

// swatchColor passes hex colors through; anything else from a remote analyzer is blanked
func swatchColor(color string) template.CSS {
	if hexColor.MatchString(color) {
		return template.CSS(color)
	}
	return "transparent"
}

func percentWidth(p float64) template.CSS {
	switch {
	case p < 0:
		p = 0
	case p > 100:
		p = 100
	}
	return template.CSS(fmt.Sprintf("%.0f%%", p))
}
