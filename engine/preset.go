package engine

import "ScriptMaster-server/models"

type CreateCoursePreset struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (CreateCoursePreset) Op() string { return "course_preset.create" }

func (c CreateCoursePreset) apply(p *models.Project) error {
	cp := models.NewCoursePreset(c.Name)
	if c.ID != "" {
		if p.CoursePreset(c.ID) != nil {
			return nil
		}
		cp.ID = c.ID
	}
	p.CoursePresets = append(p.CoursePresets, cp)
	return nil
}

type RenameCoursePreset struct {
	PresetID string `json:"presetId"`
	Name     string `json:"name"`
}

func (RenameCoursePreset) Op() string { return "course_preset.rename" }

func (c RenameCoursePreset) apply(p *models.Project) error {
	if cp := p.CoursePreset(c.PresetID); cp != nil {
		cp.Name = c.Name
	}
	return nil
}

// DeleteCoursePreset 已生成的环节不受影响
type DeleteCoursePreset struct {
	PresetID string `json:"presetId"`
}

func (DeleteCoursePreset) Op() string { return "course_preset.delete" }

func (c DeleteCoursePreset) apply(p *models.Project) error {
	p.CoursePresets = removeAt(p.CoursePresets, p.CoursePresetIndex(c.PresetID))
	return nil
}

// AddStep 默认标题“新环节”，默认使用第一个模版
type AddStep struct {
	PresetID   string `json:"presetId"`
	ID         string `json:"id,omitempty"`
	Title      string `json:"title,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
}

func (AddStep) Op() string { return "step.add" }

func (c AddStep) apply(p *models.Project) error {
	cp := p.CoursePreset(c.PresetID)
	if cp == nil {
		return nil
	}
	templateID := c.TemplateID
	if templateID == "" && len(p.Templates) > 0 {
		templateID = p.Templates[0].ID
	}
	st := models.NewStep(c.Title, templateID)
	if c.ID != "" {
		if cp.StepIndex(c.ID) >= 0 {
			return nil
		}
		st.ID = c.ID
	}
	cp.Steps = append(cp.Steps, st)
	return nil
}

// UpdateStep 仅修改非 nil 的字段；修改备注时同步到匹配的环节
type UpdateStep struct {
	PresetID   string  `json:"presetId"`
	StepID     string  `json:"stepId"`
	Title      *string `json:"title,omitempty"`
	TemplateID *string `json:"templateId,omitempty"`
	Note       *string `json:"note,omitempty"`
}

func (UpdateStep) Op() string { return "step.update" }

func (c UpdateStep) apply(p *models.Project) error {
	cp := p.CoursePreset(c.PresetID)
	if cp == nil {
		return nil
	}
	i := cp.StepIndex(c.StepID)
	if i < 0 {
		return nil
	}
	st := &cp.Steps[i]
	if c.Title != nil {
		st.Title = *c.Title
	}
	if c.TemplateID != nil {
		st.TemplateID = *c.TemplateID
	}
	if c.Note != nil {
		st.Note = *c.Note
		syncStepNoteToSegments(p, *st, *c.Note)
	}
	return nil
}

type RemoveStep struct {
	PresetID string `json:"presetId"`
	StepID   string `json:"stepId"`
}

func (RemoveStep) Op() string { return "step.remove" }

func (c RemoveStep) apply(p *models.Project) error {
	if cp := p.CoursePreset(c.PresetID); cp != nil {
		cp.Steps = removeAt(cp.Steps, cp.StepIndex(c.StepID))
	}
	return nil
}

type MoveStep struct {
	PresetID string `json:"presetId"`
	StepID   string `json:"stepId"`
	To       int    `json:"to"`
}

func (MoveStep) Op() string { return "step.move" }

func (c MoveStep) apply(p *models.Project) error {
	if cp := p.CoursePreset(c.PresetID); cp != nil {
		cp.Steps = move(cp.Steps, cp.StepIndex(c.StepID), c.To)
	}
	return nil
}
