package models

// Segment 脚本中的一个环节；TemplateName 是绑定时的快照，模版删除后仍可导出
type Segment struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	TemplateID   string  `json:"templateId"`
	TemplateName string  `json:"templateName"`
	Assets       []Asset `json:"assets"`
	Note         string  `json:"note,omitempty"`

	ext extension
}

// NewSegment 空环节，未绑定模版
func NewSegment(title string) Segment {
	if title == "" {
		title = TitleNewSegment
	}
	return Segment{ID: NewID(), Title: title, Assets: []Asset{}}
}

func (s Segment) AssetIndex(id string) int {
	for i, a := range s.Assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Exportable 未绑定模版或没有组件的环节不导出
func (s Segment) Exportable() bool {
	return s.TemplateID != "" && len(s.Assets) > 0
}

func (s Segment) Clone() Segment {
	out := s
	out.Assets = cloneAssets(s.Assets)
	out.ext = s.ext.clone()
	return out
}

type segmentJSON Segment

func (s Segment) MarshalJSON() ([]byte, error) { return encodeObject(segmentJSON(s), s.ext) }

func (s *Segment) UnmarshalJSON(data []byte) error {
	var v segmentJSON
	ext, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*s = Segment(v)
	s.ext = ext
	if s.Assets == nil {
		s.Assets = []Asset{}
	}
	return nil
}
