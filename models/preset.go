package models

// CoursePreset 课型：有序的环节流程
type CoursePreset struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Steps []Step `json:"steps"`

	ext extension
}

// Step 课型中的一步，按 ID 引用模版
type Step struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TemplateID string `json:"templateId"`
	Note       string `json:"note,omitempty"`

	ext extension
}

func NewCoursePreset(name string) CoursePreset {
	if name == "" {
		name = NameNewCoursePreset
	}
	return CoursePreset{ID: NewID(), Name: name, Steps: []Step{}}
}

func NewStep(title, templateID string) Step {
	if title == "" {
		title = TitleNewStep
	}
	return Step{ID: NewID(), Title: title, TemplateID: templateID}
}

func (c CoursePreset) StepIndex(id string) int {
	for i, st := range c.Steps {
		if st.ID == id {
			return i
		}
	}
	return -1
}

func (c CoursePreset) Clone() CoursePreset {
	out := c
	if c.Steps != nil {
		out.Steps = make([]Step, len(c.Steps))
		for i, st := range c.Steps {
			out.Steps[i] = st.Clone()
		}
	}
	out.ext = c.ext.clone()
	return out
}

func (s Step) Clone() Step {
	out := s
	out.ext = s.ext.clone()
	return out
}

type coursePresetJSON CoursePreset

func (c CoursePreset) MarshalJSON() ([]byte, error) {
	return encodeObject(coursePresetJSON(c), c.ext)
}

func (c *CoursePreset) UnmarshalJSON(data []byte) error {
	var v coursePresetJSON
	ext, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*c = CoursePreset(v)
	c.ext = ext
	if c.Steps == nil {
		c.Steps = []Step{}
	}
	return nil
}

type stepJSON Step

func (s Step) MarshalJSON() ([]byte, error) { return encodeObject(stepJSON(s), s.ext) }

func (s *Step) UnmarshalJSON(data []byte) error {
	var v stepJSON
	ext, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*s = Step(v)
	s.ext = ext
	return nil
}
