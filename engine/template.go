package engine

import "ScriptMaster-server/models"

// SetProjectTitle 修改项目标题
type SetProjectTitle struct {
	Title string `json:"title"`
}

func (SetProjectTitle) Op() string { return "project.set_title" }

func (c SetProjectTitle) apply(p *models.Project) error {
	p.Title = c.Title
	return nil
}

// CreateTemplate 新建空模版；ID 为空时自动分配
type CreateTemplate struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (CreateTemplate) Op() string { return "template.create" }

func (c CreateTemplate) apply(p *models.Project) error {
	t := models.NewTemplate(c.Name)
	if c.ID != "" {
		if p.Template(c.ID) != nil {
			return nil
		}
		t.ID = c.ID
	}
	p.Templates = append(p.Templates, t)
	return nil
}

type RenameTemplate struct {
	TemplateID string `json:"templateId"`
	Name       string `json:"name"`
}

func (RenameTemplate) Op() string { return "template.rename" }

// 只改模版本身，环节中的 templateName 快照不变
func (c RenameTemplate) apply(p *models.Project) error {
	if t := p.Template(c.TemplateID); t != nil {
		t.Name = c.Name
	}
	return nil
}

type SetTemplateThumbnail struct {
	TemplateID string `json:"templateId"`
	Thumbnail  string `json:"thumbnail"`
}

func (SetTemplateThumbnail) Op() string { return "template.set_thumbnail" }

func (c SetTemplateThumbnail) apply(p *models.Project) error {
	if t := p.Template(c.TemplateID); t != nil {
		t.Thumbnail = c.Thumbnail
	}
	return nil
}

// SetTemplatePresets 整体替换预设列表
type SetTemplatePresets struct {
	TemplateID string         `json:"templateId"`
	Presets    []models.Asset `json:"presets"`
}

func (SetTemplatePresets) Op() string { return "template.set_presets" }

func (c SetTemplatePresets) apply(p *models.Project) error {
	t := p.Template(c.TemplateID)
	if t == nil {
		return nil
	}
	presets := make([]models.Asset, 0, len(c.Presets))
	seen := make(map[string]bool, len(c.Presets))
	for _, a := range c.Presets {
		a = a.Clone()
		if a.ID == "" || seen[a.ID] {
			a.ID = models.NewID()
		}
		seen[a.ID] = true
		if a.Formats == nil {
			a.Formats = []string{}
		}
		if a.Extras == nil {
			a.Extras = []models.Extra{}
		}
		a.SetFormats(a.Formats)
		presets = append(presets, a)
	}
	t.Presets = presets
	propagatePresetNotes(p, t.ID)
	return nil
}

// DeleteTemplate 至少保留一个模版；环节保留 templateName 快照
type DeleteTemplate struct {
	TemplateID string `json:"templateId"`
}

func (DeleteTemplate) Op() string { return "template.delete" }

func (c DeleteTemplate) apply(p *models.Project) error {
	i := p.TemplateIndex(c.TemplateID)
	if i < 0 {
		return nil
	}
	if len(p.Templates) <= 1 {
		return models.Errorf(models.KindLastTemplate, "cannot delete the only template %q", p.Templates[i].Name)
	}
	p.Templates = removeAt(p.Templates, i)
	return nil
}
