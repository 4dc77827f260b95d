package engine

import "ScriptMaster-server/models"

// Container 组件所在位置：环节（SegmentID）或模版的预设列表（TemplateID），二选一，SegmentID 优先
type Container struct {
	SegmentID  string `json:"segmentId,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
}

// assets 返回组件列表的指针；位置不存在时返回 nil
func (c Container) assets(p *models.Project) *[]models.Asset {
	if c.SegmentID != "" {
		if seg := p.Segment(c.SegmentID); seg != nil {
			return &seg.Assets
		}
		return nil
	}
	if c.TemplateID != "" {
		if t := p.Template(c.TemplateID); t != nil {
			return &t.Presets
		}
	}
	return nil
}

// edited 修改预设列表后触发备注传播
func (c Container) edited(p *models.Project) {
	if c.SegmentID == "" && c.TemplateID != "" {
		propagatePresetNotes(p, c.TemplateID)
	}
}

// withAsset 找到组件后执行 fn，并处理传播
func (c Container) withAsset(p *models.Project, assetID string, fn func(a *models.Asset)) {
	list := c.assets(p)
	if list == nil {
		return
	}
	for i := range *list {
		if (*list)[i].ID == assetID {
			fn(&(*list)[i])
			c.edited(p)
			return
		}
	}
}

func (c Container) withExtra(p *models.Project, assetID string, index int, fn func(a *models.Asset, ex *models.Extra)) {
	c.withAsset(p, assetID, func(a *models.Asset) {
		if index < 0 || index >= len(a.Extras) {
			return
		}
		fn(a, &a.Extras[index])
	})
}

// AddAsset 追加组件；环节中默认名为“临时组件”，模版中为“新组件”
type AddAsset struct {
	Container
	ID   string           `json:"id,omitempty"`
	Name string           `json:"name,omitempty"`
	Type models.AssetType `json:"type,omitempty"`
}

func (AddAsset) Op() string { return "asset.add" }

func (c AddAsset) apply(p *models.Project) error {
	list := c.assets(p)
	if list == nil {
		return nil
	}
	name := c.Name
	if name == "" {
		name = models.NameAdHocAsset
		if c.SegmentID == "" {
			name = models.NameNewPresetComponent
		}
	}
	t := c.Type
	if t == "" {
		t = models.AssetTypeDefault
	}
	a := models.NewAsset(name, t)
	if c.ID != "" {
		for _, existing := range *list {
			if existing.ID == c.ID {
				return nil
			}
		}
		a.ID = c.ID
	}
	*list = append(*list, a)
	c.edited(p)
	return nil
}

// AssetPatch 仅修改非 nil 的字段
type AssetPatch struct {
	Name               *string           `json:"name,omitempty"`
	Title              *string           `json:"title,omitempty"`
	ExtrasTitle        *string           `json:"extrasTitle,omitempty"`
	Type               *models.AssetType `json:"type,omitempty"`
	Description        *string           `json:"description,omitempty"`
	Dimensions         *string           `json:"dimensions,omitempty"`
	Format             *string           `json:"format,omitempty"`
	FileSize           *string           `json:"fileSize,omitempty"`
	UploadInstructions *string           `json:"uploadInstructions,omitempty"`
	Status             *string           `json:"status,omitempty"`
	Enabled            *bool             `json:"enabled,omitempty"`
	SectionID          *string           `json:"sectionId,omitempty"`
}

type UpdateAsset struct {
	Container
	AssetID string     `json:"assetId"`
	Patch   AssetPatch `json:"patch"`
}

func (UpdateAsset) Op() string { return "asset.update" }

func (c UpdateAsset) apply(p *models.Project) error {
	c.withAsset(p, c.AssetID, func(a *models.Asset) {
		patch := c.Patch
		// 先换类型，同一补丁里的 format 才不会被清掉
		if patch.Type != nil {
			a.SetType(*patch.Type)
		}
		setString(&a.Name, patch.Name)
		setString(&a.Title, patch.Title)
		setString(&a.ExtrasTitle, patch.ExtrasTitle)
		setString(&a.Description, patch.Description)
		setString(&a.Dimensions, patch.Dimensions)
		setString(&a.Format, patch.Format)
		setString(&a.FileSize, patch.FileSize)
		setString(&a.UploadInstructions, patch.UploadInstructions)
		setString(&a.Status, patch.Status)
		setString(&a.SectionID, patch.SectionID)
		if patch.Enabled != nil {
			a.Enabled = models.Bool(*patch.Enabled)
		}
	})
	return nil
}

type SetAssetSelectedTypes struct {
	Container
	AssetID string   `json:"assetId"`
	Types   []string `json:"types"`
}

func (SetAssetSelectedTypes) Op() string { return "asset.set_selected_types" }

func (c SetAssetSelectedTypes) apply(p *models.Project) error {
	c.withAsset(p, c.AssetID, func(a *models.Asset) { a.SetSelectedTypes(c.Types) })
	return nil
}

// SetAssetFormats 不允许的格式被丢弃
type SetAssetFormats struct {
	Container
	AssetID string   `json:"assetId"`
	Formats []string `json:"formats"`
}

func (SetAssetFormats) Op() string { return "asset.set_formats" }

func (c SetAssetFormats) apply(p *models.Project) error {
	c.withAsset(p, c.AssetID, func(a *models.Asset) { a.SetFormats(c.Formats) })
	return nil
}

// SetCustomField 写入自定义字段；selected_types 走多选类型逻辑
type SetCustomField struct {
	Container
	AssetID string `json:"assetId"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

func (SetCustomField) Op() string { return "asset.set_custom_field" }

func (c SetCustomField) apply(p *models.Project) error {
	if c.Key == "" {
		return nil
	}
	c.withAsset(p, c.AssetID, func(a *models.Asset) {
		if c.Key == models.FieldSelectedTypes {
			a.SetSelectedTypes(models.SplitSelectedTypes(c.Value))
			return
		}
		a.CustomFields.Set(c.Key, c.Value)
	})
	return nil
}

type DeleteCustomField struct {
	Container
	AssetID string `json:"assetId"`
	Key     string `json:"key"`
}

func (DeleteCustomField) Op() string { return "asset.delete_custom_field" }

func (c DeleteCustomField) apply(p *models.Project) error {
	c.withAsset(p, c.AssetID, func(a *models.Asset) { a.CustomFields.Delete(c.Key) })
	return nil
}

type SetAssetNote struct {
	Container
	AssetID string `json:"assetId"`
	Note    string `json:"note"`
}

func (SetAssetNote) Op() string { return "asset.set_note" }

func (c SetAssetNote) apply(p *models.Project) error {
	c.withAsset(p, c.AssetID, func(a *models.Asset) { a.SetNote(c.Note) })
	return nil
}

// CopyPreviousAsset 用上一行的内容覆盖当前组件，名称与 ID 不变
type CopyPreviousAsset struct {
	Container
	AssetID string `json:"assetId"`
}

func (CopyPreviousAsset) Op() string { return "asset.copy_previous" }

func (c CopyPreviousAsset) apply(p *models.Project) error {
	list := c.assets(p)
	if list == nil {
		return nil
	}
	assets := *list
	for i := 1; i < len(assets); i++ {
		if assets[i].ID != c.AssetID {
			continue
		}
		prev := assets[i-1].Clone()
		cur := &assets[i]
		cur.Description = prev.Description
		cur.Type = prev.Type
		cur.Formats = prev.Formats
		if cur.Formats == nil {
			cur.Formats = []string{}
		}
		cur.Format = prev.Format
		cur.Dimensions = prev.Dimensions
		cur.FileSize = prev.FileSize
		cur.CustomFields = prev.CustomFields
		cur.Extras = prev.Extras
		if cur.Extras == nil {
			cur.Extras = []models.Extra{}
		}
		c.edited(p)
		return nil
	}
	return nil
}

type RemoveAsset struct {
	Container
	AssetID string `json:"assetId"`
}

func (RemoveAsset) Op() string { return "asset.remove" }

func (c RemoveAsset) apply(p *models.Project) error {
	list := c.assets(p)
	if list == nil {
		return nil
	}
	for i, a := range *list {
		if a.ID == c.AssetID {
			*list = removeAt(*list, i)
			c.edited(p)
			return nil
		}
	}
	return nil
}

type MoveAsset struct {
	Container
	AssetID string `json:"assetId"`
	To      int    `json:"to"`
}

func (MoveAsset) Op() string { return "asset.move" }

func (c MoveAsset) apply(p *models.Project) error {
	list := c.assets(p)
	if list == nil {
		return nil
	}
	for i, a := range *list {
		if a.ID == c.AssetID {
			*list = move(*list, i, c.To)
			c.edited(p)
			return nil
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
