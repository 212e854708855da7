package state

import (
	"context"
	"errors"
	"testing"

	"github.com/anime-shed/palette-inspector/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var autumn = &models.AnalysisResult{
	SkinColor:         "#F5DEB3",
	PupilColor:        "#8B4513",
	HairColor:         "#654321",
	ResultText:        "You have a warm undertone",
	Season:            "Autumn",
	RecommendedColors: []string{"#FF6B35", "#F7931E", "#FFD23F"},
	AvoidColors:       []string{"#0077BE", "#6A0DAD", "#FF1493"},
}

var twoFiles = []models.UploadedFile{
	{Name: "test1.jpg", ContentType: "image/jpeg", Data: []byte("test1")},
	{Name: "test2.jpg", ContentType: "image/jpeg", Data: []byte("test2")},
}

func assertInitial(t *testing.T, c *Container) {
	t.Helper()
	snap := c.Snapshot()
	assert.NotNil(t, snap.Files)
	assert.Empty(t, snap.Files)
	assert.Nil(t, snap.Result)
	assert.False(t, snap.Analyzing)
}

func TestContainer_InitialState(t *testing.T) {
	assertInitial(t, NewContainer())
}

func TestContainer_Setters(t *testing.T) {
	c := NewContainer()

	c.SetFiles(twoFiles)
	require.Len(t, c.Files(), 2)
	assert.Equal(t, "test1.jpg", c.Files()[0].Name)

	c.SetResult(autumn)
	assert.Equal(t, autumn, c.Result())

	c.SetAnalyzing(true)
	assert.True(t, c.IsAnalyzing())
}

func TestContainer_ResetFromAnyState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Container)
	}{
		{"initial", func(c *Container) {}},
		{"files only", func(c *Container) { c.SetFiles(twoFiles) }},
		{"everything set", func(c *Container) {
			c.SetFiles(twoFiles)
			c.SetResult(autumn)
			c.SetAnalyzing(true)
		}},
		{"run in flight", func(c *Container) {
			c.SetFiles(twoFiles)
			_, cancel := context.WithCancel(context.Background())
			c.BeginRun(cancel)
		}},
		{"failed run", func(c *Container) {
			_, cancel := context.WithCancel(context.Background())
			id := c.BeginRun(cancel)
			c.FinishRun(id, nil, errors.New("boom"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContainer()
			tt.setup(c)
			c.Reset()
			assertInitial(t, c)
			assert.NoError(t, c.LastError())
			assert.Equal(t, models.RunIdle, c.Progress().State)
		})
	}
}

func TestContainer_SetResultNilAfterValue(t *testing.T) {
	c := NewContainer()
	c.SetResult(autumn)
	require.NotNil(t, c.Result())

	c.SetResult(nil)
	assert.Nil(t, c.Result())
}

func TestContainer_SetEmptyFiles(t *testing.T) {
	c := NewContainer()
	c.SetFiles(twoFiles)
	c.SetFiles([]models.UploadedFile{})
	assert.Empty(t, c.Files())
}

func TestContainer_MultipleUpdates(t *testing.T) {
	c := NewContainer()
	c.SetAnalyzing(true)
	c.SetFiles(twoFiles)
	c.SetResult(autumn)
	c.SetAnalyzing(false)

	assert.False(t, c.IsAnalyzing())
	assert.Len(t, c.Files(), 2)
	assert.Equal(t, autumn, c.Result())
}

func TestContainer_NoAliasing(t *testing.T) {
	c := NewContainer()
	c.SetResult(autumn)

	got := c.Result()
	got.RecommendedColors[0] = "#000000"
	assert.Equal(t, "#FF6B35", c.Result().RecommendedColors[0])

	files := c.Files()
	files = append(files, twoFiles...)
	assert.Empty(t, c.Files())
	_ = files
}

func TestContainer_RunLifecycle(t *testing.T) {
	c := NewContainer()
	ctx, cancel := context.WithCancel(context.Background())
	id := c.BeginRun(cancel)

	assert.True(t, c.IsAnalyzing())
	assert.True(t, c.UpdateProgress(id, models.Progress{State: models.RunStepping, Step: 0, Total: 7}))
	assert.True(t, c.FinishRun(id, autumn, nil))

	assert.False(t, c.IsAnalyzing())
	assert.Equal(t, autumn, c.Result())
	assert.Equal(t, models.RunDone, c.Progress().State)
	assert.ErrorIs(t, ctx.Err(), context.Canceled, "finishing releases the run context")
}

func TestContainer_StaleRunCannotWrite(t *testing.T) {
	c := NewContainer()
	ctx, cancel := context.WithCancel(context.Background())
	id := c.BeginRun(cancel)

	c.Reset()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, c.UpdateProgress(id, models.Progress{State: models.RunStepping}))
	assert.False(t, c.FinishRun(id, autumn, nil))
	assertInitial(t, c)
}

func TestContainer_NewRunSupersedesOld(t *testing.T) {
	c := NewContainer()
	oldCtx, oldCancel := context.WithCancel(context.Background())
	oldID := c.BeginRun(oldCancel)

	_, newCancel := context.WithCancel(context.Background())
	newID := c.BeginRun(newCancel)

	assert.ErrorIs(t, oldCtx.Err(), context.Canceled)
	assert.False(t, c.FinishRun(oldID, autumn, nil))
	assert.True(t, c.FinishRun(newID, nil, errors.New("analysis failed")))
	assert.Nil(t, c.Result())
	assert.EqualError(t, c.LastError(), "analysis failed")
}

func TestContainer_CancelRun(t *testing.T) {
	c := NewContainer()
	c.SetFiles(twoFiles)
	ctx, cancel := context.WithCancel(context.Background())
	id := c.BeginRun(cancel)

	c.CancelRun()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, c.IsAnalyzing())
	assert.Equal(t, models.RunCancelled, c.Progress().State)
	assert.False(t, c.FinishRun(id, autumn, nil))
	assert.Len(t, c.Files(), 2, "cancel keeps the uploads")
}

func TestFromContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrOutsideProvider)

	c := NewContainer()
	got, err := FromContext(WithContainer(context.Background(), c))
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestContainer_SnapshotCarriesRun(t *testing.T) {
	c := NewContainer()
	_, cancel := context.WithCancel(context.Background())
	id := c.BeginRun(cancel)
	c.UpdateProgress(id, models.Progress{State: models.RunStepping, Step: 2, Total: 7, Label: "Analyzing skin tone..."})

	snap := c.Snapshot()
	assert.True(t, snap.Analyzing)
	assert.Equal(t, models.RunStepping, snap.Progress.State)
	assert.Equal(t, 2, snap.Progress.Step)
	assert.NoError(t, snap.LastErr)

	c.FinishRun(id, nil, errors.New("boom"))

	snap = c.Snapshot()
	assert.False(t, snap.Analyzing)
	assert.Equal(t, models.RunFailed, snap.Progress.State)
	assert.EqualError(t, snap.LastErr, "boom")
}
