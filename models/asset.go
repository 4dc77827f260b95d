package models

import "strings"

// Asset 既是模版中的预设组件，也是环节中实例化后的组件，两者结构相同
type Asset struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Title              string    `json:"title,omitempty"`
	ExtrasTitle        string    `json:"extrasTitle,omitempty"`
	Type               AssetType `json:"type"`
	Description        string    `json:"description"`
	Dimensions         string    `json:"dimensions,omitempty"`
	Format             string    `json:"format,omitempty"`
	Formats            []string  `json:"formats"`
	UploadInstructions string    `json:"uploadInstructions"`
	FileSize           string    `json:"fileSize,omitempty"`
	Extras             []Extra   `json:"extras"`
	CustomFields       Fields    `json:"customFields"`
	Enabled            *bool     `json:"enabled,omitempty"`
	SectionID          string    `json:"sectionId,omitempty"`
	Status             string    `json:"status"`

	ext extension
}

// Extra 组件下的分项行
type Extra struct {
	Key          string    `json:"key,omitempty"`
	Value        string    `json:"value,omitempty"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	Type         AssetType `json:"type,omitempty"`
	Formats      []string  `json:"formats"`
	Dimensions   string    `json:"dimensions,omitempty"`
	FileSize     string    `json:"fileSize,omitempty"`
	Collapsed    *bool     `json:"collapsed,omitempty"`
	Enabled      *bool     `json:"enabled,omitempty"`
	CustomFields Fields    `json:"customFields"`

	ext extension
}

// NewAsset 分配新 ID；状态 PENDING、启用、空格式与空自定义字段
func NewAsset(name string, t AssetType) Asset {
	return Asset{
		ID:      NewID(),
		Name:    name,
		Type:    t,
		Formats: []string{},
		Extras:  []Extra{},
		Enabled: Bool(true),
		Status:  AssetStatusPending,
	}
}

// NewExtra 分项默认启用、展开
func NewExtra(content string, t AssetType) Extra {
	return Extra{
		Content:   content,
		Type:      t,
		Formats:   []string{},
		Collapsed: Bool(false),
	}
}

// Bool 返回指针，便于填写可选布尔字段
func Bool(v bool) *bool { return &v }

// Equals 实体以 ID 判等
func (a Asset) Equals(other Asset) bool { return a.ID == other.ID }

// IsEnabled 未设置视为启用
func (a Asset) IsEnabled() bool { return a.Enabled == nil || *a.Enabled }

func (a Asset) Note() string { return a.CustomFields.Value(FieldNote) }

// HasBlankNote 备注为空或全空白
func (a Asset) HasBlankNote() bool { return strings.TrimSpace(a.Note()) == "" }

func (a *Asset) SetNote(note string) { a.CustomFields.Set(FieldNote, note) }

// SelectedTypes 多选类型标签
func (a Asset) SelectedTypes() []string {
	return SplitSelectedTypes(a.CustomFields.Value(FieldSelectedTypes))
}

// SetType 更换主类型时清空格式；已有多选时改写为新类型，保持主类型等于首个可识别的标签
func (a *Asset) SetType(t AssetType) {
	if a.Type == t {
		return
	}
	a.Type = t
	a.Formats = []string{}
	a.Format = ""
	if a.CustomFields.Value(FieldSelectedTypes) != "" {
		a.CustomFields.Set(FieldSelectedTypes, string(t))
	}
}

// SetSelectedTypes 写入多选并同步主类型：第一个可识别的标签，否则保留原主类型；格式随之清空
func (a *Asset) SetSelectedTypes(labels []string) {
	a.CustomFields.Set(FieldSelectedTypes, strings.Join(nonEmpty(labels), "|"))
	next := primaryFromSelection(labels, a.Type)
	if next != a.Type {
		a.Format = ""
	}
	a.Type = next
	a.Formats = []string{}
}

// SetFormats 仅保留当前类型允许的格式
func (a *Asset) SetFormats(formats []string) {
	a.Formats = FilterFormats(a.Type, formats)
}

// KeyMatches 同步与备注传播按 (名称, 类型) 匹配
func (a Asset) KeyMatches(other Asset) bool {
	return a.Name == other.Name && a.Type == other.Type
}

func (a Asset) Clone() Asset {
	out := a
	out.Formats = cloneStrings(a.Formats)
	out.CustomFields = a.CustomFields.Clone()
	if a.Enabled != nil {
		out.Enabled = Bool(*a.Enabled)
	}
	if a.Extras != nil {
		out.Extras = make([]Extra, len(a.Extras))
		for i, ex := range a.Extras {
			out.Extras[i] = ex.Clone()
		}
	}
	out.ext = a.ext.clone()
	return out
}

func (e Extra) IsEnabled() bool { return e.Enabled == nil || *e.Enabled }

func (e Extra) Note() string { return e.CustomFields.Value(FieldNote) }

func (e Extra) SelectedTypes() []string {
	return SplitSelectedTypes(e.CustomFields.Value(FieldSelectedTypes))
}

func (e *Extra) SetType(t AssetType) {
	if e.Type == t {
		return
	}
	e.Type = t
	e.Formats = []string{}
	if e.CustomFields.Value(FieldSelectedTypes) != "" {
		e.CustomFields.Set(FieldSelectedTypes, string(t))
	}
}

func (e *Extra) SetSelectedTypes(labels []string) {
	e.CustomFields.Set(FieldSelectedTypes, strings.Join(nonEmpty(labels), "|"))
	e.Type = primaryFromSelection(labels, e.Type)
	e.Formats = []string{}
}

// SetFormats 分项未设类型时按 fallback（所属组件的类型）校验
func (e *Extra) SetFormats(formats []string, fallback AssetType) {
	t := e.Type
	if t == "" {
		t = fallback
	}
	e.Formats = FilterFormats(t, formats)
}

func (e Extra) Clone() Extra {
	out := e
	out.Formats = cloneStrings(e.Formats)
	out.CustomFields = e.CustomFields.Clone()
	if e.Collapsed != nil {
		out.Collapsed = Bool(*e.Collapsed)
	}
	if e.Enabled != nil {
		out.Enabled = Bool(*e.Enabled)
	}
	out.ext = e.ext.clone()
	return out
}

type assetJSON Asset

func (a Asset) MarshalJSON() ([]byte, error) { return encodeObject(assetJSON(a), a.ext) }

func (a *Asset) UnmarshalJSON(data []byte) error {
	var v assetJSON
	ext, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*a = Asset(v)
	a.ext = ext
	if a.Status == "" {
		a.Status = AssetStatusPending
	}
	if a.Formats == nil {
		a.Formats = []string{}
	}
	if a.Extras == nil {
		a.Extras = []Extra{}
	}
	return nil
}

type extraJSON Extra

func (e Extra) MarshalJSON() ([]byte, error) { return encodeObject(extraJSON(e), e.ext) }

func (e *Extra) UnmarshalJSON(data []byte) error {
	var v extraJSON
	ext, err := decodeObject(data, &v)
	if err != nil {
		return err
	}
	*e = Extra(v)
	e.ext = ext
	if e.Formats == nil {
		e.Formats = []string{}
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
