// Package export 把项目导出为可被表格软件直接打开的 HTML（.xls）脚本单。
package export

import (
	"fmt"
	"html"
	"strings"

	"ScriptMaster-server/markup"
	"ScriptMaster-server/models"
)

const (
	ContentType = "application/vnd.ms-excel"
	FileSuffix  = "_完整脚本.xls"

	unselectedFormats = "未选择"
	emptyCell         = "-"
)

// FileName 导出文件名
func FileName(p *models.Project) string {
	return p.Title + FileSuffix
}

// Stats 导出统计，供任务记录使用
type Stats struct {
	Segments int
	Assets   int
	Rows     int
}

// Render 生成完整的导出文档；没有可导出的环节时返回 EMPTY_PROJECT
func Render(p *models.Project) (string, error) {
	doc, _, err := RenderWithStats(p)
	return doc, err
}

func RenderWithStats(p *models.Project) (string, Stats, error) {
	var stats Stats
	var body strings.Builder
	for i, seg := range p.Segments {
		if !seg.Exportable() {
			continue
		}
		stats.Segments++
		writeSegment(&body, p, i, seg, &stats)
	}
	if stats.Segments == 0 {
		return "", stats, models.Errorf(models.KindEmptyProject, "project %q has no exportable segment", p.Title)
	}

	var b strings.Builder
	b.Grow(len(preamble) + body.Len() + 256)
	b.WriteString(preamble)
	fmt.Fprintf(&b, "<h2>%s - 课程脚本单</h2>\n<hr/>\n", html.EscapeString(p.Title))
	b.WriteString(body.String())
	b.WriteString("</body>\n</html>\n")
	return b.String(), stats, nil
}

func writeSegment(b *strings.Builder, p *models.Project, index int, seg models.Segment, stats *Stats) {
	thumb := ""
	if tpl := p.Template(seg.TemplateID); tpl != nil && tpl.Thumbnail != "" {
		thumb = fmt.Sprintf(`<img src="%s" alt="模板示意图" width="140" height="90" style="border:1px solid #000; border-radius:4px;" />`,
			html.EscapeString(tpl.Thumbnail))
	}
	fmt.Fprintf(b, `<table class="seg-head">
<tr>
<td class="seg-title">环节 %d: %s <span style="font-size:0.8em; color:#666; font-weight:normal;">(模版: %s)</span></td>
<td class="seg-thumb" width="170" align="right" valign="middle">%s</td>
</tr>
</table>
`, index+1, html.EscapeString(seg.Title), html.EscapeString(seg.TemplateName), thumb)

	b.WriteString(tableHead)
	if seg.Note != "" {
		fmt.Fprintf(b, `<tr>
<td style="background:#f9fafb; font-size:12px; font-weight:700; text-align:center; width:40px;">TG</td>
<td colspan="7" style="background:#f9fafb; font-size:12px; white-space:normal; line-height:1.4;">%s</td>
</tr>
`, markup.Render(seg.Note))
	}

	for i, a := range seg.Assets {
		if !a.IsEnabled() {
			continue
		}
		stats.Assets++
		writeAsset(b, i, a, stats)
	}
	b.WriteString("</tbody>\n</table>\n")
}

func writeAsset(b *strings.Builder, index int, a models.Asset, stats *Stats) {
	extras := make([]models.Extra, 0, len(a.Extras))
	for _, ex := range a.Extras {
		if ex.IsEnabled() {
			extras = append(extras, ex)
		}
	}
	rowSpan := 1 + len(extras)

	typeCell := strings.Join(a.SelectedTypes(), ", ")
	if typeCell == "" {
		typeCell = string(a.Type)
	}
	formatCell := strings.Join(a.Formats, ", ")
	if formatCell == "" {
		formatCell = a.Format
	}

	fmt.Fprintf(b, `<tr>
<td class="group-cell" rowspan="%d">%d</td>
<td rowspan="%d">%s</td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
</tr>
`, rowSpan, index+1, rowSpan, html.EscapeString(a.Name),
		orDash(markup.Render(a.Description)),
		text(typeCell),
		text(formatCell),
		text(a.Dimensions),
		text(a.FileSize),
		describe(a.CustomFields))
	stats.Rows++

	for _, ex := range extras {
		exType := strings.Join(ex.SelectedTypes(), ", ")
		if exType == "" {
			exType = string(ex.Type)
		}
		if exType == "" {
			exType = string(a.Type)
		}
		exFormats := strings.Join(ex.Formats, ", ")
		if exFormats == "" {
			exFormats = unselectedFormats
		}
		fmt.Fprintf(b, `<tr class="extra-row">
<td>%s</td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
<td>%s</td>
</tr>
`, orDash(markup.Render(ex.Content)),
			text(exType),
			html.EscapeString(exFormats),
			text(ex.Dimensions),
			text(ex.FileSize),
			describe(ex.CustomFields))
		stats.Rows++
	}
}

// describe 组合“内容描述 / 制作说明”列：渲染后的备注，加上其余自定义字段 key：value（；分隔）
func describe(f models.Fields) string {
	var lines []string
	if note := f.Value(models.FieldNote); note != "" {
		lines = append(lines, markup.Render(note))
	}
	var pairs []string
	f.Range(func(k, v string) bool {
		if v == "" || models.IsReservedField(k) {
			return true
		}
		pairs = append(pairs, html.EscapeString(k)+"："+markup.SoftBreaks(html.EscapeString(v)))
		return true
	})
	if len(pairs) > 0 {
		lines = append(lines, strings.Join(pairs, "；"))
	}
	if len(lines) == 0 {
		return emptyCell
	}
	return strings.Join(lines, "<br/>")
}

// text 普通属性单元格：转义，空值为 “-”
func text(s string) string {
	if s == "" {
		return emptyCell
	}
	return html.EscapeString(s)
}

func orDash(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}
