package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssetDefaults(t *testing.T) {
	a := NewAsset("背景", AssetTypeImage)
	b := NewAsset("背景", AssetTypeImage)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Equals(b))
	assert.Equal(t, AssetStatusPending, a.Status)
	assert.True(t, a.IsEnabled())
	assert.Empty(t, a.Formats)
	assert.Equal(t, 0, a.CustomFields.Len())
}

func TestPermittedFormats(t *testing.T) {
	assert.Equal(t, []string{"MP3", "WAV", "OGG", FormatUnspecified}, PermittedFormats(AssetTypeAudio))
	assert.Equal(t, []string{FormatUnspecified}, PermittedFormats(AssetTypeDefault))
	assert.Equal(t, []string{FormatUnspecified}, PermittedFormats("未知"))

	// 返回副本
	f := PermittedFormats(AssetTypeImage)
	f[0] = "BMP"
	assert.Equal(t, "PNG", PermittedFormats(AssetTypeImage)[0])
}

func TestAssetSetFormatsFiltersByType(t *testing.T) {
	a := NewAsset("按钮", AssetTypeComponent)
	a.SetFormats([]string{"ZIP", "PNG", "JSON", "ZIP"})
	assert.Equal(t, []string{"ZIP", "JSON"}, a.Formats)

	a.SetType(AssetTypeComponent)
	assert.Equal(t, []string{"ZIP", "JSON"}, a.Formats, "相同类型不清空")

	a.SetType(AssetTypeAudio)
	assert.Empty(t, a.Formats)
}

func TestSetSelectedTypes(t *testing.T) {
	a := NewAsset("素材", AssetTypeImage)
	a.SetFormats([]string{"PNG"})

	a.SetSelectedTypes([]string{"其他", string(AssetTypeVideo), string(AssetTypeAudio)})
	assert.Equal(t, AssetTypeVideo, a.Type)
	assert.Empty(t, a.Formats)
	assert.Equal(t, "其他|视频 (Video)|音频 (Audio)", a.CustomFields.Value(FieldSelectedTypes))
	assert.Equal(t, []string{"其他", string(AssetTypeVideo), string(AssetTypeAudio)}, a.SelectedTypes())

	a.SetSelectedTypes([]string{"无法识别"})
	assert.Equal(t, AssetTypeVideo, a.Type, "无可识别标签时保留原主类型")
}

func TestExtraSetFormatsFallsBackToAssetType(t *testing.T) {
	ex := NewExtra("第一页", "")
	ex.SetFormats([]string{"MP3", "PNG"}, AssetTypeAudio)
	assert.Equal(t, []string{"MP3"}, ex.Formats)
	assert.True(t, ex.IsEnabled())
}

func TestFieldsKeepInsertionOrder(t *testing.T) {
	f := NewFields("b", "2", "a", "1", "c", "3")
	assert.Equal(t, []string{"b", "a", "c"}, f.Keys())

	f.Set("a", "10")
	assert.Equal(t, []string{"b", "a", "c"}, f.Keys())

	assert.True(t, f.Rename("a", "z"))
	assert.Equal(t, []string{"b", "z", "c"}, f.Keys())
	assert.Equal(t, "10", f.Value("z"))
	assert.False(t, f.Has("a"))

	assert.False(t, f.Rename("missing", "x"))

	// 目标键已存在时两边的值都保留
	assert.False(t, f.Rename("b", "c"))
	assert.Equal(t, "2", f.Value("b"))
	assert.Equal(t, "3", f.Value("c"))

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"2","z":"10","c":"3"}`, string(b))
}

func TestFieldsCloneIsIndependent(t *testing.T) {
	f := NewFields("note", "x")
	c := f.Clone()
	c.Set("note", "y")
	c.Set("k", "v")
	assert.Equal(t, "x", f.Value("note"))
	assert.Equal(t, 1, f.Len())
}

func TestAssetCloneIsDeep(t *testing.T) {
	a := NewAsset("背景", AssetTypeImage)
	a.Formats = []string{"PNG"}
	a.SetNote("原始")
	a.Extras = append(a.Extras, NewExtra("分项", AssetTypeImage))

	c := a.Clone()
	c.Formats[0] = "JPG"
	c.SetNote("修改")
	c.Extras[0].Content = "改"
	*c.Enabled = false

	assert.Equal(t, "PNG", a.Formats[0])
	assert.Equal(t, "原始", a.Note())
	assert.Equal(t, "分项", a.Extras[0].Content)
	assert.True(t, a.IsEnabled())
}

func TestNewProjectSeedsDefaults(t *testing.T) {
	p := NewProject("Lesson 1")
	require.Len(t, p.Templates, 3)
	require.Len(t, p.CoursePresets, 1)
	assert.Empty(t, p.Segments)

	ids := map[string]bool{}
	for _, tpl := range p.Templates {
		assert.NotEqual(t, "t1", tpl.ID)
		ids[tpl.ID] = true
	}
	for _, st := range p.CoursePresets[0].Steps {
		assert.True(t, ids[st.TemplateID], "步骤 %s 引用的模版必须存在", st.Title)
	}

	// 两个新项目互不共享 ID
	q := NewProject("Lesson 2")
	assert.NotEqual(t, p.Templates[0].ID, q.Templates[0].ID)
	assert.NotEqual(t, p.Templates[0].Presets[0].ID, q.Templates[0].Presets[0].ID)
}

func TestProjectCloneIsDeep(t *testing.T) {
	p := NewProject("Lesson 1")
	seg := NewSegment("")
	seg.Assets = append(seg.Assets, NewAsset("a", AssetTypeImage))
	p.Segments = append(p.Segments, seg)

	c := p.Clone()
	c.Templates[0].Name = "改名"
	c.Segments[0].Assets[0].Name = "b"
	c.CoursePresets[0].Steps[0].Note = "备注"

	assert.NotEqual(t, "改名", p.Templates[0].Name)
	assert.Equal(t, "a", p.Segments[0].Assets[0].Name)
	assert.Empty(t, p.CoursePresets[0].Steps[0].Note)
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("同步失败: %w", Errorf(KindTemplateMissing, "模版 %s 不存在", "t9"))
	assert.True(t, errors.Is(err, ErrTemplateMissing))
	assert.False(t, errors.Is(err, ErrLastTemplate))
	assert.Equal(t, KindTemplateMissing, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("x")))
	assert.Contains(t, err.Error(), "TEMPLATE_MISSING")
}

func TestDefaultComponentPresetsKeepFreeFormFormat(t *testing.T) {
	tpls := DefaultTemplates()
	nav := tpls[0].Presets[2]
	assert.Equal(t, AssetTypeComponent, nav.Type)
	assert.Equal(t, "React", nav.Format)
	assert.False(t, IsPermittedFormat(nav.Type, nav.Format))
	assert.Empty(t, nav.Formats)

	subs := tpls[1].Presets[1]
	assert.Equal(t, "SRT", subs.Format)
	assert.Empty(t, subs.Formats)
}
