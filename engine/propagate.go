package engine

import "ScriptMaster-server/models"

// propagatePresetNotes 预设列表变化后，把预设的非空备注补到绑定环节中备注为空的同名同类型组件上。
// 其他字段一律不覆盖。
func propagatePresetNotes(p *models.Project, templateID string) {
	tpl := p.Template(templateID)
	if tpl == nil {
		return
	}
	for si := range p.Segments {
		seg := &p.Segments[si]
		if seg.TemplateID != templateID {
			continue
		}
		for ai := range seg.Assets {
			a := &seg.Assets[ai]
			preset, ok := tpl.MatchPreset(*a)
			if !ok {
				continue
			}
			note := preset.Note()
			if note == "" || !a.HasBlankNote() {
				continue
			}
			a.SetNote(note)
		}
	}
}

// syncStepNoteToSegments 步骤备注写入标题相同或（步骤模版非空时）模版相同的环节
func syncStepNoteToSegments(p *models.Project, step models.Step, note string) {
	for i := range p.Segments {
		seg := &p.Segments[i]
		if seg.Title == step.Title || (step.TemplateID != "" && seg.TemplateID == step.TemplateID) {
			seg.Note = note
		}
	}
}

// syncSegmentNoteToSteps 环节备注写回标题相同或模版相同的课型步骤；空标题、空模版不参与匹配
func syncSegmentNoteToSteps(p *models.Project, seg models.Segment, note string) {
	for ci := range p.CoursePresets {
		steps := p.CoursePresets[ci].Steps
		for i := range steps {
			st := &steps[i]
			byTitle := seg.Title != "" && st.Title == seg.Title
			byTemplate := seg.TemplateID != "" && st.TemplateID == seg.TemplateID
			if byTitle || byTemplate {
				st.Note = note
			}
		}
	}
}
