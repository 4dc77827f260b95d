package engine

import (
	"strings"

	"ScriptMaster-server/models"
)

// 自定义列登记在模版上，列值按列名存放在组件的 customFields 中。
// 重命名、删除会迁移该模版的预设以及所有绑定环节中的组件（含分项）。

type AddColumn struct {
	TemplateID string `json:"templateId"`
	Name       string `json:"name"`
}

func (AddColumn) Op() string { return "column.add" }

func (c AddColumn) apply(p *models.Project) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return nil
	}
	if models.IsReservedField(name) {
		return models.Errorf(models.KindReservedColumnName, "column name %q is reserved", name)
	}
	t := p.Template(c.TemplateID)
	if t == nil || t.HasColumn(name) {
		return nil
	}
	t.CustomColumns = append(t.CustomColumns, name)
	return nil
}

type RenameColumn struct {
	TemplateID string `json:"templateId"`
	From       string `json:"from"`
	To         string `json:"to"`
}

func (RenameColumn) Op() string { return "column.rename" }

func (c RenameColumn) apply(p *models.Project) error {
	to := strings.TrimSpace(c.To)
	if to == "" || to == c.From {
		return nil
	}
	if models.IsReservedField(to) {
		return models.Errorf(models.KindReservedColumnName, "column name %q is reserved", to)
	}
	t := p.Template(c.TemplateID)
	if t == nil || t.HasColumn(to) {
		return nil
	}
	idx := -1
	for i, col := range t.CustomColumns {
		if col == c.From {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	t.CustomColumns[idx] = to
	forEachBoundFields(p, t.ID, func(f *models.Fields) { f.Rename(c.From, to) })
	return nil
}

type DeleteColumn struct {
	TemplateID string `json:"templateId"`
	Name       string `json:"name"`
}

func (DeleteColumn) Op() string { return "column.delete" }

func (c DeleteColumn) apply(p *models.Project) error {
	t := p.Template(c.TemplateID)
	if t == nil || models.IsReservedField(c.Name) {
		return nil
	}
	cols := t.CustomColumns[:0]
	found := false
	for _, col := range t.CustomColumns {
		if col == c.Name {
			found = true
			continue
		}
		cols = append(cols, col)
	}
	if !found {
		return nil
	}
	t.CustomColumns = cols
	forEachBoundFields(p, t.ID, func(f *models.Fields) { f.Delete(c.Name) })
	return nil
}

// MoveColumn 只调整列顺序
type MoveColumn struct {
	TemplateID string `json:"templateId"`
	Name       string `json:"name"`
	To         int    `json:"to"`
}

func (MoveColumn) Op() string { return "column.move" }

func (c MoveColumn) apply(p *models.Project) error {
	t := p.Template(c.TemplateID)
	if t == nil {
		return nil
	}
	for i, col := range t.CustomColumns {
		if col == c.Name {
			t.CustomColumns = move(t.CustomColumns, i, c.To)
			return nil
		}
	}
	return nil
}

// forEachBoundFields 遍历模版预设与绑定环节中所有组件、分项的自定义字段
func forEachBoundFields(p *models.Project, templateID string, fn func(f *models.Fields)) {
	visit := func(assets []models.Asset) {
		for i := range assets {
			fn(&assets[i].CustomFields)
			for j := range assets[i].Extras {
				fn(&assets[i].Extras[j].CustomFields)
			}
		}
	}
	if t := p.Template(templateID); t != nil {
		visit(t.Presets)
	}
	for i := range p.Segments {
		if p.Segments[i].TemplateID == templateID {
			visit(p.Segments[i].Assets)
		}
	}
}
