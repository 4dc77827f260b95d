package export

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScriptMaster-server/engine"
	"ScriptMaster-server/models"
)

func singleTemplateProject() *models.Project {
	bg := models.NewAsset("Background", models.AssetTypeImage)
	bg.Format = "PNG"
	tpl := models.NewTemplate("互动场景")
	tpl.ID = "t1"
	tpl.Presets = []models.Asset{bg}
	return &models.Project{
		ID:            "p1",
		Title:         "Lesson 1",
		Templates:     []models.Template{tpl},
		CoursePresets: []models.CoursePreset{},
		Segments:      []models.Segment{},
	}
}

func apply(t *testing.T, p *models.Project, cmds ...engine.Command) *models.Project {
	t.Helper()
	next, err := engine.Apply(p, cmds...)
	require.NoError(t, err)
	return next
}

var (
	assetRow = regexp.MustCompile(`<td class="group-cell" rowspan="(\d+)">`)
	extraRow = regexp.MustCompile(`(?s)<tr class="extra-row">(.*?)</tr>`)
)

func TestRenderEmptyProject(t *testing.T) {
	_, err := Render(singleTemplateProject())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmptyProject))
}

func TestRenderSkipsUnexportableSegments(t *testing.T) {
	p := apply(t, singleTemplateProject(),
		engine.AddSegment{ID: "empty"},
		engine.AddSegment{ID: "no-assets"},
	)
	p.Segments[1].TemplateID = "t1"

	_, err := Render(p)
	assert.True(t, errors.Is(err, models.ErrEmptyProject))
}

func TestRenderSingleSegment(t *testing.T) {
	p := apply(t, singleTemplateProject(), engine.AddSegment{ID: "s1"}, engine.ApplyTemplate{SegmentID: "s1", TemplateID: "t1"})
	id := p.Segments[0].Assets[0].ID
	desc := "**bold** note"
	p = apply(t, p, engine.UpdateAsset{
		Container: engine.Container{SegmentID: "s1"},
		AssetID:   id,
		Patch:     engine.AssetPatch{Description: &desc},
	})

	doc, stats, err := RenderWithStats(p)
	require.NoError(t, err)

	assert.Len(t, assetRow.FindAllString(doc, -1), 1)
	assert.Empty(t, extraRow.FindAllString(doc, -1))
	assert.Contains(t, doc, "<strong>bold</strong> note")
	assert.Contains(t, doc, `<meta charset="utf-8">`)
	assert.Contains(t, doc, "<h2>Lesson 1 - 课程脚本单</h2>")
	assert.Contains(t, doc, "环节 1: 互动场景")
	assert.Contains(t, doc, "(模版: 互动场景)")
	assert.Contains(t, doc, "<td>PNG</td>", "没有 formats 时使用 format")
	assert.Contains(t, doc, "<td>图片 (Image)</td>")
	assert.NotContains(t, doc, "TG")
	assert.Equal(t, Stats{Segments: 1, Assets: 1, Rows: 1}, stats)
}

func TestRenderAfterTypeChange(t *testing.T) {
	p := apply(t, singleTemplateProject(), engine.AddSegment{ID: "s1"}, engine.ApplyTemplate{SegmentID: "s1", TemplateID: "t1"})
	ctr := engine.Container{SegmentID: "s1"}
	id := p.Segments[0].Assets[0].ID
	audio := models.AssetTypeAudio
	p = apply(t, p,
		engine.SetAssetSelectedTypes{Container: ctr, AssetID: id, Types: []string{string(models.AssetTypeImage)}},
		engine.UpdateAsset{Container: ctr, AssetID: id, Patch: engine.AssetPatch{Type: &audio}},
	)

	doc, err := Render(p)
	require.NoError(t, err)
	assert.Contains(t, doc, "<td>音频 (Audio)</td>")
	assert.NotContains(t, doc, "图片 (Image)")
	assert.NotContains(t, doc, "PNG")
}

func TestRenderExtrasRowSpan(t *testing.T) {
	p := apply(t, singleTemplateProject(), engine.AddSegment{ID: "s1"}, engine.ApplyTemplate{SegmentID: "s1", TemplateID: "t1"})
	ctr := engine.Container{SegmentID: "s1"}
	id := p.Segments[0].Assets[0].ID
	disabled := false
	p = apply(t, p,
		engine.AddExtra{Container: ctr, AssetID: id},
		engine.AddExtra{Container: ctr, AssetID: id},
		engine.AddExtra{Container: ctr, AssetID: id},
		engine.UpdateExtra{Container: ctr, AssetID: id, Index: 2, Patch: engine.ExtraPatch{Enabled: &disabled}},
		engine.SetExtraFormats{Container: ctr, AssetID: id, Index: 0, Formats: []string{"PNG", "JPG"}},
	)

	doc, err := Render(p)
	require.NoError(t, err)

	spans := assetRow.FindAllStringSubmatch(doc, -1)
	require.Len(t, spans, 1)
	assert.Equal(t, "3", spans[0][1])

	rows := extraRow.FindAllStringSubmatch(doc, -1)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 6, strings.Count(r[1], "<td"))
	}
	assert.Contains(t, rows[0][1], "<td>PNG, JPG</td>")
	assert.Contains(t, rows[1][1], "<td>未选择</td>")
	assert.Contains(t, rows[1][1], "<td>图片 (Image)</td>")
}

func TestRenderSegmentNoteAndCustomFields(t *testing.T) {
	p := apply(t, singleTemplateProject(),
		engine.AddSegment{ID: "skip"},
		engine.AddSegment{ID: "s1", Title: "Warm-up"},
		engine.ApplyTemplate{SegmentID: "s1", TemplateID: "t1"},
		engine.UpdateSegment{SegmentID: "s1", Note: strPtr("- one\n- two")},
		engine.SetTemplateThumbnail{TemplateID: "t1", Thumbnail: "https://cdn/t1.png"},
	)
	ctr := engine.Container{SegmentID: "s1"}
	id := p.Segments[1].Assets[0].ID
	p = apply(t, p,
		engine.SetAssetNote{Container: ctr, AssetID: id, Note: "*注意*"},
		engine.SetCustomField{Container: ctr, AssetID: id, Key: "Remark", Value: "a\nb"},
		engine.SetCustomField{Container: ctr, AssetID: id, Key: "Empty", Value: ""},
		engine.SetCustomField{Container: ctr, AssetID: id, Key: "Owner", Value: "<li>"},
		engine.SetAssetSelectedTypes{Container: ctr, AssetID: id, Types: []string{"图片 (Image)", "音频 (Audio)"}},
	)

	doc, err := Render(p)
	require.NoError(t, err)

	assert.Contains(t, doc, "环节 2: Warm-up", "序号取环节在列表中的位置")
	assert.Contains(t, doc, `<td colspan="7"`)
	assert.Contains(t, doc, "<ul><li>one</li><li>two</li></ul>")
	assert.Contains(t, doc, `<img src="https://cdn/t1.png"`)
	assert.Contains(t, doc, "<em>注意</em><br/>Remark：a<br/>b；Owner：&lt;li&gt;")
	assert.NotContains(t, doc, "Empty：")
	assert.NotContains(t, doc, "selected_types")
	assert.Contains(t, doc, "<td>图片 (Image), 音频 (Audio)</td>")
}

func TestRenderSkipsDisabledAssetsButKeepsNumbering(t *testing.T) {
	p := apply(t, singleTemplateProject(),
		engine.AddSegment{ID: "s1"},
		engine.ApplyTemplate{SegmentID: "s1", TemplateID: "t1"},
		engine.AddAsset{Container: engine.Container{SegmentID: "s1"}, ID: "second", Name: "Second"},
	)
	disabled := false
	p = apply(t, p, engine.UpdateAsset{
		Container: engine.Container{SegmentID: "s1"},
		AssetID:   p.Segments[0].Assets[0].ID,
		Patch:     engine.AssetPatch{Enabled: &disabled},
	})

	doc, err := Render(p)
	require.NoError(t, err)
	assert.NotContains(t, doc, "Background")
	assert.Contains(t, doc, `<td class="group-cell" rowspan="1">2</td>`)
	assert.Contains(t, doc, "<td>-</td>")
}

func TestRenderEscapesPlainCells(t *testing.T) {
	p := apply(t, singleTemplateProject(),
		engine.SetProjectTitle{Title: "A & B"},
		engine.AddSegment{ID: "s1", Title: "<script>"},
		engine.ApplyTemplate{SegmentID: "s1", TemplateID: "t1"},
	)
	doc, err := Render(p)
	require.NoError(t, err)
	assert.Contains(t, doc, "A &amp; B - 课程脚本单")
	assert.Contains(t, doc, "&lt;script&gt;")
	assert.Equal(t, "A & B_完整脚本.xls", FileName(p))
}

func strPtr(s string) *string { return &s }
