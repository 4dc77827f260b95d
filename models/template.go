package models

// 保留名称
const (
	NameNewTemplate        = "新模版 (New Template)"
	NameNewCoursePreset    = "新课型 (New Course Type)"
	NameNewPresetComponent = "新组件"
	NameAdHocAsset         = "临时组件"
	TitleNewStep           = "新环节"
	TitleNewSegment        = "新环节 (New Segment)"
)

// Template 环节蓝图：预设组件与自定义列
type Template struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Presets       []Asset  `json:"presets"`
	CustomColumns []string `json:"customColumns"`

	ext extension
}

func NewTemplate(name string) Template {
	if name == "" {
		name = NameNewTemplate
	}
	return Template{
		ID:            NewID(),
		Name:          name,
		Presets:       []Asset{},
		CustomColumns: []string{},
	}
}

// PresetIndex 未找到返回 -1
func (t Template) PresetIndex(id string) int {
	for i, p := range t.Presets {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// MatchPreset 按 (名称, 类型) 查找预设
func (t Template) MatchPreset(a Asset) (Asset, bool) {
	for _, p := range t.Presets {
		if p.KeyMatches(a) {
			return p, true
		}
	}
	return Asset{}, false
}

func (t Template) HasColumn(name string) bool {
	for _, c := range t.CustomColumns {
		if c == name {
			return true
		}
	}
	return false
}

func (t Template) Clone() Template {
	out := t
	out.Presets = cloneAssets(t.Presets)
	out.CustomColumns = cloneStrings(t.CustomColumns)
	out.ext = t.ext.clone()
	return out
}

type templateJSON Template

func (t Template) MarshalJSON() ([]byte, error) { return encodeObject(templateJSON(t), t.ext) }

func (t *Template) UnmarshalJSON(data []byte) error {
	var v templateJSON
	ext, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*t = Template(v)
	t.ext = ext
	if t.Presets == nil {
		t.Presets = []Asset{}
	}
	if t.CustomColumns == nil {
		t.CustomColumns = []string{}
	}
	return nil
}

func cloneAssets(in []Asset) []Asset {
	if in == nil {
		return nil
	}
	out := make([]Asset, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
