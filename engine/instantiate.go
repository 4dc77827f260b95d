package engine

import "ScriptMaster-server/models"

// instantiatePresets 按预设逐个复制出新组件：新 ID、状态 PENDING、启用
func instantiatePresets(presets []models.Asset) []models.Asset {
	out := make([]models.Asset, 0, len(presets))
	for _, preset := range presets {
		out = append(out, fromPreset(preset))
	}
	return out
}

func fromPreset(preset models.Asset) models.Asset {
	a := preset.Clone()
	a.ID = models.NewID()
	a.Status = models.AssetStatusPending
	a.Enabled = models.Bool(true)
	if a.Formats == nil {
		a.Formats = []string{}
	}
	if a.Extras == nil {
		a.Extras = []models.Extra{}
	}
	return a
}

// GenerateSegment 由模版生成新环节；titleOverride 为空时使用模版名
func GenerateSegment(p *models.Project, templateID, titleOverride string) (models.Segment, error) {
	tpl := p.Template(templateID)
	if tpl == nil {
		return models.Segment{}, models.Errorf(models.KindTemplateMissing, "template %q not found", templateID)
	}
	title := titleOverride
	if title == "" {
		title = tpl.Name
	}
	return models.Segment{
		ID:           models.NewID(),
		Title:        title,
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		Assets:       instantiatePresets(tpl.Presets),
	}, nil
}

// LoadCoursePreset 按课型步骤追加环节。已有环节时必须 Confirm，否则返回 CONFIRMATION_REQUIRED。
// 引用的模版已不存在的步骤被跳过。
type LoadCoursePreset struct {
	PresetID string `json:"presetId"`
	Confirm  bool   `json:"confirm,omitempty"`
}

func (LoadCoursePreset) Op() string { return "segment.load_course_preset" }

func (c LoadCoursePreset) apply(p *models.Project) error {
	preset := p.CoursePreset(c.PresetID)
	if preset == nil {
		return nil
	}
	if len(p.Segments) > 0 && !c.Confirm {
		return models.Errorf(models.KindConfirmationRequired, "script already has %d segments", len(p.Segments))
	}
	for _, st := range preset.Steps {
		seg, err := GenerateSegment(p, st.TemplateID, st.Title)
		if err != nil {
			continue
		}
		seg.Note = st.Note
		p.Segments = append(p.Segments, seg)
	}
	return nil
}

// ApplyTemplate 用模版重建环节的组件列表；占位标题会被替换为模版名
type ApplyTemplate struct {
	SegmentID  string `json:"segmentId"`
	TemplateID string `json:"templateId"`
}

func (ApplyTemplate) Op() string { return "segment.apply_template" }

func (c ApplyTemplate) apply(p *models.Project) error {
	tpl := p.Template(c.TemplateID)
	seg := p.Segment(c.SegmentID)
	if tpl == nil || seg == nil {
		return nil
	}
	seg.TemplateID = tpl.ID
	seg.TemplateName = tpl.Name
	if seg.Title == models.TitleNewSegment {
		seg.Title = tpl.Name
	}
	seg.Assets = instantiatePresets(tpl.Presets)
	return nil
}

// SyncSegment 按所绑定模版刷新组件结构。
// 同名同类型的已有组件保留 ID、描述、状态、启用、自定义字段和分项；其余由预设新建。
type SyncSegment struct {
	SegmentID string `json:"segmentId"`
}

func (SyncSegment) Op() string { return "segment.sync" }

func (c SyncSegment) apply(p *models.Project) error {
	seg := p.Segment(c.SegmentID)
	if seg == nil {
		return nil
	}
	tpl := p.Template(seg.TemplateID)
	if tpl == nil {
		return models.Errorf(models.KindTemplateMissing, "template %q of segment %q not found", seg.TemplateID, seg.Title)
	}

	assets := make([]models.Asset, 0, len(tpl.Presets))
	used := make(map[int]bool, len(seg.Assets))
	for _, preset := range tpl.Presets {
		idx := -1
		for i, a := range seg.Assets {
			if !used[i] && a.KeyMatches(preset) {
				idx = i
				break
			}
		}
		if idx < 0 {
			assets = append(assets, fromPreset(preset))
			continue
		}
		used[idx] = true
		existing := seg.Assets[idx]

		a := preset.Clone()
		a.ID = existing.ID
		a.Description = existing.Description
		a.Status = existing.Status
		a.Enabled = models.Bool(existing.IsEnabled())
		a.CustomFields = existing.CustomFields.Clone()
		a.Extras = existing.Clone().Extras
		if a.Formats == nil {
			a.Formats = []string{}
		}
		if a.Extras == nil {
			a.Extras = []models.Extra{}
		}
		assets = append(assets, a)
	}
	seg.Assets = assets
	seg.TemplateName = tpl.Name
	return nil
}
