package engine

import "ScriptMaster-server/models"

// AddExtra 追加分项，内容与类型取自所属组件
type AddExtra struct {
	Container
	AssetID string `json:"assetId"`
}

func (AddExtra) Op() string { return "extra.add" }

func (c AddExtra) apply(p *models.Project) error {
	c.withAsset(p, c.AssetID, func(a *models.Asset) {
		a.Extras = append(a.Extras, models.NewExtra(a.Description, a.Type))
	})
	return nil
}

type ExtraPatch struct {
	Key        *string           `json:"key,omitempty"`
	Value      *string           `json:"value,omitempty"`
	Title      *string           `json:"title,omitempty"`
	Content    *string           `json:"content,omitempty"`
	Type       *models.AssetType `json:"type,omitempty"`
	Dimensions *string           `json:"dimensions,omitempty"`
	FileSize   *string           `json:"fileSize,omitempty"`
	Collapsed  *bool             `json:"collapsed,omitempty"`
	Enabled    *bool             `json:"enabled,omitempty"`
}

// UpdateExtra 分项没有 ID，按下标定位
type UpdateExtra struct {
	Container
	AssetID string     `json:"assetId"`
	Index   int        `json:"index"`
	Patch   ExtraPatch `json:"patch"`
}

func (UpdateExtra) Op() string { return "extra.update" }

func (c UpdateExtra) apply(p *models.Project) error {
	c.withExtra(p, c.AssetID, c.Index, func(_ *models.Asset, ex *models.Extra) {
		patch := c.Patch
		if patch.Type != nil {
			ex.SetType(*patch.Type)
		}
		setString(&ex.Key, patch.Key)
		setString(&ex.Value, patch.Value)
		setString(&ex.Title, patch.Title)
		setString(&ex.Content, patch.Content)
		setString(&ex.Dimensions, patch.Dimensions)
		setString(&ex.FileSize, patch.FileSize)
		if patch.Collapsed != nil {
			ex.Collapsed = models.Bool(*patch.Collapsed)
		}
		if patch.Enabled != nil {
			ex.Enabled = models.Bool(*patch.Enabled)
		}
	})
	return nil
}

type SetExtraSelectedTypes struct {
	Container
	AssetID string   `json:"assetId"`
	Index   int      `json:"index"`
	Types   []string `json:"types"`
}

func (SetExtraSelectedTypes) Op() string { return "extra.set_selected_types" }

func (c SetExtraSelectedTypes) apply(p *models.Project) error {
	c.withExtra(p, c.AssetID, c.Index, func(_ *models.Asset, ex *models.Extra) {
		ex.SetSelectedTypes(c.Types)
	})
	return nil
}

type SetExtraFormats struct {
	Container
	AssetID string   `json:"assetId"`
	Index   int      `json:"index"`
	Formats []string `json:"formats"`
}

func (SetExtraFormats) Op() string { return "extra.set_formats" }

func (c SetExtraFormats) apply(p *models.Project) error {
	c.withExtra(p, c.AssetID, c.Index, func(a *models.Asset, ex *models.Extra) {
		ex.SetFormats(c.Formats, a.Type)
	})
	return nil
}

type SetExtraCustomField struct {
	Container
	AssetID string `json:"assetId"`
	Index   int    `json:"index"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

func (SetExtraCustomField) Op() string { return "extra.set_custom_field" }

func (c SetExtraCustomField) apply(p *models.Project) error {
	if c.Key == "" {
		return nil
	}
	c.withExtra(p, c.AssetID, c.Index, func(_ *models.Asset, ex *models.Extra) {
		if c.Key == models.FieldSelectedTypes {
			ex.SetSelectedTypes(models.SplitSelectedTypes(c.Value))
			return
		}
		ex.CustomFields.Set(c.Key, c.Value)
	})
	return nil
}

type RemoveExtra struct {
	Container
	AssetID string `json:"assetId"`
	Index   int    `json:"index"`
}

func (RemoveExtra) Op() string { return "extra.remove" }

func (c RemoveExtra) apply(p *models.Project) error {
	c.withAsset(p, c.AssetID, func(a *models.Asset) { a.Extras = removeAt(a.Extras, c.Index) })
	return nil
}

type MoveExtra struct {
	Container
	AssetID string `json:"assetId"`
	Index   int    `json:"index"`
	To      int    `json:"to"`
}

func (MoveExtra) Op() string { return "extra.move" }

func (c MoveExtra) apply(p *models.Project) error {
	c.withAsset(p, c.AssetID, func(a *models.Asset) { a.Extras = move(a.Extras, c.Index, c.To) })
	return nil
}
