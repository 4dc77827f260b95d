package models

// Project 顶层文档，作为一个整体被编辑和保存
type Project struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Templates     []Template     `json:"templates"`
	CoursePresets []CoursePreset `json:"coursePresets"`
	Segments      []Segment      `json:"segments"`
	// UpdatedAt 毫秒时间戳，由存储层写入
	UpdatedAt *int64 `json:"updatedAt,omitempty"`

	ext extension
}

// NewProject 新建项目并带上默认模版与默认课型
func NewProject(title string) *Project {
	templates, presets := seedDefaults()
	return &Project{
		ID:            NewID(),
		Title:         title,
		Templates:     templates,
		CoursePresets: presets,
		Segments:      []Segment{},
	}
}

func (p *Project) TemplateIndex(id string) int {
	for i, t := range p.Templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Template 未找到返回 nil
func (p *Project) Template(id string) *Template {
	if i := p.TemplateIndex(id); i >= 0 {
		return &p.Templates[i]
	}
	return nil
}

func (p *Project) SegmentIndex(id string) int {
	for i, s := range p.Segments {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (p *Project) Segment(id string) *Segment {
	if i := p.SegmentIndex(id); i >= 0 {
		return &p.Segments[i]
	}
	return nil
}

func (p *Project) CoursePresetIndex(id string) int {
	for i, c := range p.CoursePresets {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (p *Project) CoursePreset(id string) *CoursePreset {
	if i := p.CoursePresetIndex(id); i >= 0 {
		return &p.CoursePresets[i]
	}
	return nil
}

// Clone 深拷贝，副本与原值不共享任何可变状态
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	if p.Templates != nil {
		out.Templates = make([]Template, len(p.Templates))
		for i, t := range p.Templates {
			out.Templates[i] = t.Clone()
		}
	}
	if p.CoursePresets != nil {
		out.CoursePresets = make([]CoursePreset, len(p.CoursePresets))
		for i, c := range p.CoursePresets {
			out.CoursePresets[i] = c.Clone()
		}
	}
	if p.Segments != nil {
		out.Segments = make([]Segment, len(p.Segments))
		for i, s := range p.Segments {
			out.Segments[i] = s.Clone()
		}
	}
	if p.UpdatedAt != nil {
		ts := *p.UpdatedAt
		out.UpdatedAt = &ts
	}
	out.ext = p.ext.clone()
	return &out
}

type projectJSON Project

func (p Project) MarshalJSON() ([]byte, error) { return encodeObject(projectJSON(p), p.ext) }

func (p *Project) UnmarshalJSON(data []byte) error {
	var v projectJSON
	ext, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*p = Project(v)
	p.ext = ext
	return nil
}
