package analyzer

import "github.com/anime-shed/palette-inspector/pkg/models"

// SeasonBrightSpring is the season of the demo profile
const SeasonBrightSpring = "Bright Spring"

// DemoResult returns a fresh copy of the fixed demo profile
func DemoResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		SkinColor:         "#F4C2A1",
		PupilColor:        "#8B4513",
		HairColor:         "#654321",
		Season:            SeasonBrightSpring,
		ResultText:        "You have a warm and vibrant color palette that suits bright, clear colors.",
		RecommendedColors: []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7"},
		AvoidColors:       []string{"#2C3E50", "#8E44AD", "#34495E", "#7F8C8D"},
	}
}
