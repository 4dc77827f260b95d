package engine

import "ScriptMaster-server/models"

// AddSegment 追加未绑定模版的空环节
type AddSegment struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

func (AddSegment) Op() string { return "segment.add" }

func (c AddSegment) apply(p *models.Project) error {
	seg := models.NewSegment(c.Title)
	if c.ID != "" {
		if p.Segment(c.ID) != nil {
			return nil
		}
		seg.ID = c.ID
	}
	p.Segments = append(p.Segments, seg)
	return nil
}

// UpdateSegment 修改备注时写回匹配的课型步骤（按修改前的标题匹配）
type UpdateSegment struct {
	SegmentID string  `json:"segmentId"`
	Title     *string `json:"title,omitempty"`
	Note      *string `json:"note,omitempty"`
}

func (UpdateSegment) Op() string { return "segment.update" }

func (c UpdateSegment) apply(p *models.Project) error {
	seg := p.Segment(c.SegmentID)
	if seg == nil {
		return nil
	}
	before := *seg
	if c.Title != nil {
		seg.Title = *c.Title
	}
	if c.Note != nil {
		seg.Note = *c.Note
		syncSegmentNoteToSteps(p, before, *c.Note)
	}
	return nil
}

type RemoveSegment struct {
	SegmentID string `json:"segmentId"`
}

func (RemoveSegment) Op() string { return "segment.remove" }

func (c RemoveSegment) apply(p *models.Project) error {
	p.Segments = removeAt(p.Segments, p.SegmentIndex(c.SegmentID))
	return nil
}

type MoveSegment struct {
	SegmentID string `json:"segmentId"`
	To        int    `json:"to"`
}

func (MoveSegment) Op() string { return "segment.move" }

func (c MoveSegment) apply(p *models.Project) error {
	p.Segments = move(p.Segments, p.SegmentIndex(c.SegmentID), c.To)
	return nil
}

// SetDescriptions 批量写入环节内组件的描述，未知 ID 忽略
type SetDescriptions struct {
	SegmentID    string            `json:"segmentId"`
	Descriptions map[string]string `json:"descriptions"`
}

func (SetDescriptions) Op() string { return "segment.set_descriptions" }

func (c SetDescriptions) apply(p *models.Project) error {
	seg := p.Segment(c.SegmentID)
	if seg == nil {
		return nil
	}
	for i := range seg.Assets {
		if d, ok := c.Descriptions[seg.Assets[i].ID]; ok {
			seg.Assets[i].Description = d
		}
	}
	return nil
}
