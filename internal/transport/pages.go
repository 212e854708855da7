package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/anime-shed/palette-inspector/internal/errors"
	"github.com/anime-shed/palette-inspector/internal/logger"
	"github.com/anime-shed/palette-inspector/internal/service"
	"github.com/anime-shed/palette-inspector/pkg/models"
	"github.com/anime-shed/palette-inspector/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Flash codes carried on redirects back to the upload screen
const (
	flashNeedFiles      = "need_files"
	flashAnalysisFailed = "analysis_failed"
	flashTooLarge       = "too_large"
	flashBadUpload      = "bad_upload"
)

var flashMessages = map[string]string{
	flashNeedFiles:      "Please upload at least 2 photos to analyze.",
	flashAnalysisFailed: "Failed to analyze images. Please try again.",
	flashTooLarge:       "Those photos are too large. Please try smaller files.",
	flashBadUpload:      "We couldn't read that upload. Please try again.",
}

type uploadView struct {
	Files      []models.UploadedFile
	Min        int
	Max        int
	Full       bool
	CanAnalyze bool
	Accept     string
}

type styleTip struct {
	Heading string
	Items   []string
}

type resultView struct {
	Result *models.AnalysisResult
	Tips   []styleTip
}

// styleTips is the static copy shown under every result
var styleTips = []styleTip{
	{
		Heading: "Best Accessories",
		Items: []string{
			"Gold jewelry and warm metals",
			"Bright, clear gemstones",
			"Colorful scarves and bags",
			"Bold statement pieces",
		},
	},
	{
		Heading: "Clothing Styles",
		Items: []string{
			"Clean, crisp lines",
			"Bright, saturated colors",
			"High contrast combinations",
			"Modern, structured pieces",
		},
	},
}

func uploadRedirect(flash string) string {
	return "/upload?error=" + flash
}

func welcomePage(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}
		d.Service.CancelAnalysis(st)
		render(c, "welcome.gohtml", page{Title: "Welcome"})
	}
}

func uploadPage(d Deps) gin.HandlerFunc {
	gate := validation.NewUploadGate()
	accept := "image/*," + strings.Join(validation.AcceptedExtensions, ",")

	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}
		// Leaving the analysis screen abandons the run
		d.Service.CancelAnalysis(st)

		files := st.Files()
		render(c, "upload.gohtml", page{
			Title: "Upload",
			Error: flashMessages[c.Query("error")],
			Data: uploadView{
				Files:      files,
				Min:        validation.MinFiles,
				Max:        validation.MaxFiles,
				Full:       gate.IsFull(files),
				CanAnalyze: gate.CanAnalyze(files),
				Accept:     accept,
			},
		})
	}
}

func uploadFiles(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Warn("Upload rejected")
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.Redirect(http.StatusSeeOther, uploadRedirect(flashTooLarge))
				return
			}
			c.Redirect(http.StatusSeeOther, uploadRedirect(flashBadUpload))
			return
		}

		files, err := readUploads(form.File["files"])
		if err != nil {
			logger.WithError(err).Warn("Failed to read uploaded files")
			c.Redirect(http.StatusSeeOther, uploadRedirect(flashBadUpload))
			return
		}

		accepted := d.Service.AddFiles(st, files)
		logger.WithFields(logrus.Fields{
			"offered": len(files),
			"total":   len(accepted),
		}).Info("Photos uploaded")

		c.Redirect(http.StatusSeeOther, "/upload")
	}
}

func removeFile(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid file index",
				apperrors.NewValidationError("index must be a number", err))
			return
		}

		d.Service.RemoveFile(st, index)
		c.Redirect(http.StatusSeeOther, "/upload")
	}
}

func startAnalysis(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}

		if err := d.Service.StartAnalysis(st); err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNavigationPrecondition) {
				c.Redirect(http.StatusSeeOther, uploadRedirect(flashNeedFiles))
				return
			}
			logger.WithError(err).Error("Failed to start analysis")
			c.Redirect(http.StatusSeeOther, uploadRedirect(flashAnalysisFailed))
			return
		}
		c.Redirect(http.StatusSeeOther, "/analyze")
	}
}

// analyzePage shows the running phase and refreshes until the run settles.
// Arriving with enough photos and no run in flight starts one.
func analyzePage(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}

		resp := d.Service.Progress(st)
		switch {
		case resp.Analyzing:
		case resp.Redirect == "/result":
			c.Redirect(http.StatusFound, "/result")
			return
		case resp.Error != "":
			c.Redirect(http.StatusFound, uploadRedirect(flashAnalysisFailed))
			return
		default:
			if err := d.Service.StartAnalysis(st); err != nil {
				flash := flashAnalysisFailed
				if apperrors.IsType(err, apperrors.ErrorTypeNavigationPrecondition) {
					flash = flashNeedFiles
				}
				c.Redirect(http.StatusFound, uploadRedirect(flash))
				return
			}
			resp = d.Service.Progress(st)
		}

		render(c, "analyze.gohtml", page{
			Title:   "Analyzing",
			Refresh: 1,
			Data:    resp.Progress,
		})
	}
}

func analyzeProgress(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, d.Service.Progress(st))
	}
}

func resultPage(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}

		result, err := d.Service.Result(st)
		if err != nil {
			c.Redirect(http.StatusFound, "/")
			return
		}

		p := page{
			Title: "Your Results",
			Data:  resultView{Result: result, Tips: styleTips},
		}
		if c.Query("saved") == "1" {
			p.Success = service.SaveConfirmation
		}
		render(c, "result.gohtml", p)
	}
}

func saveResult(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}

		if _, err := d.Service.SaveResult(st); err != nil {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		c.Redirect(http.StatusSeeOther, "/result?saved=1")
	}
}

func resetFlow(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionState(c)
		if !ok {
			return
		}
		d.Service.Reset(st)
		c.Redirect(http.StatusSeeOther, "/")
	}
}
