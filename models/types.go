package models

import "strings"

// AssetType 组件主类型；取值即文档中的类型标签，需原样往返
type AssetType string

const (
	AssetTypeImage     AssetType = "图片 (Image)"
	AssetTypeAudio     AssetType = "音频 (Audio)"
	AssetTypeVideo     AssetType = "视频 (Video)"
	AssetTypeAnimation AssetType = "动画 (Animation)"
	AssetTypeComponent AssetType = "React组件 (Component)"
	AssetTypeDefault   AssetType = "默认 (Default)"
)

// AllAssetTypes 按界面顺序列出全部类型
var AllAssetTypes = []AssetType{
	AssetTypeImage,
	AssetTypeAudio,
	AssetTypeVideo,
	AssetTypeAnimation,
	AssetTypeComponent,
	AssetTypeDefault,
}

// ParseAssetType 识别类型标签
func ParseAssetType(label string) (AssetType, bool) {
	for _, t := range AllAssetTypes {
		if string(t) == label {
			return t, true
		}
	}
	return "", false
}

// 组件状态
const (
	AssetStatusPending  = "PENDING"
	AssetStatusReady    = "READY"
	AssetStatusUploaded = "UPLOADED"
	AssetStatusApproved = "APPROVED"
)

// FormatUnspecified 各类型通用的“未明确规定”格式
const FormatUnspecified = "未明确规定"

var permittedFormats = map[AssetType][]string{
	AssetTypeImage:     {"PNG", "JPG", "JPEG", "GIF", "WEBP", FormatUnspecified},
	AssetTypeAudio:     {"MP3", "WAV", "OGG", FormatUnspecified},
	AssetTypeVideo:     {"MP4", "WEBM", "MOV", FormatUnspecified},
	AssetTypeAnimation: {"GIF", "MP4", "WEBM", "JSON", FormatUnspecified},
	AssetTypeComponent: {"ZIP", "JSON", "JS", "HTML", "CSS", FormatUnspecified},
	AssetTypeDefault:   {FormatUnspecified},
}

// PermittedFormats 返回类型允许的格式列表（副本）；未知类型只允许“未明确规定”
func PermittedFormats(t AssetType) []string {
	opts, ok := permittedFormats[t]
	if !ok {
		return []string{FormatUnspecified}
	}
	return append([]string(nil), opts...)
}

// IsPermittedFormat 判断格式是否属于类型的允许范围
func IsPermittedFormat(t AssetType, format string) bool {
	for _, f := range PermittedFormats(t) {
		if f == format {
			return true
		}
	}
	return false
}

// FilterFormats 仅保留允许的格式，去重并保持顺序
func FilterFormats(t AssetType, formats []string) []string {
	out := make([]string, 0, len(formats))
	seen := make(map[string]struct{}, len(formats))
	for _, f := range formats {
		if !IsPermittedFormat(t, f) {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// SplitSelectedTypes 拆分 selected_types（竖线分隔），丢弃空项
func SplitSelectedTypes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// primaryFromSelection 取第一个可识别的类型，否则沿用原主类型
func primaryFromSelection(labels []string, previous AssetType) AssetType {
	for _, l := range labels {
		if t, ok := ParseAssetType(l); ok {
			return t
		}
	}
	return previous
}
