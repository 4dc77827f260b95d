// Package markup 把脚本中的轻量标记转换为导出表格里使用的 HTML 片段。
//
// 按行扫描：分隔线、引用、无序列表、有序列表为块级结构，其余为行内文本。
// 只做有限的替换，不是通用的 Markdown 解析器。
package markup

import (
	"regexp"
	"strings"
)

const softBreak = "<br/>"

var (
	lineBreak = regexp.MustCompile(`\r?\n`)

	hrLine      = regexp.MustCompile(`^\s*---\s*$`)
	quoteLine   = regexp.MustCompile(`^\s*>`)
	quotePrefix = regexp.MustCompile(`^\s*> ?`)
	ulLine      = regexp.MustCompile(`^\s*-\s+`)
	olLine      = regexp.MustCompile(`^\s*\d+\.\s+`)
)

// 行内替换，按顺序执行
var inlineRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), `<strong>$1</strong>`},
	{regexp.MustCompile(`\*([^*]+)\*`), `<em>$1</em>`},
	{regexp.MustCompile(`~~([^~]+)~~`), `<del>$1</del>`},
	{regexp.MustCompile("`([^`]+)`"), `<code>$1</code>`},
	{regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`), `<a href="$2" target="_blank">$1</a>`},
}

// Render 渲染输入，永不失败；空输入得到空串
func Render(input string) string {
	if input == "" {
		return ""
	}
	lines := lineBreak.Split(input, -1)
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		line := lines[i]
		switch {
		case hrLine.MatchString(line):
			out = append(out, "<hr/>")
			i++
		case quoteLine.MatchString(line):
			var q []string
			for ; i < len(lines) && quoteLine.MatchString(lines[i]); i++ {
				q = append(q, quotePrefix.ReplaceAllString(lines[i], ""))
			}
			out = append(out, "<blockquote>"+strings.Join(q, softBreak)+"</blockquote>")
		case ulLine.MatchString(line):
			var b strings.Builder
			b.WriteString("<ul>")
			for ; i < len(lines) && ulLine.MatchString(lines[i]); i++ {
				b.WriteString("<li>" + ulLine.ReplaceAllString(lines[i], "") + "</li>")
			}
			b.WriteString("</ul>")
			out = append(out, b.String())
		case olLine.MatchString(line):
			var b strings.Builder
			b.WriteString("<ol>")
			for ; i < len(lines) && olLine.MatchString(lines[i]); i++ {
				b.WriteString("<li>" + olLine.ReplaceAllString(lines[i], "") + "</li>")
			}
			b.WriteString("</ol>")
			out = append(out, b.String())
		default:
			out = append(out, Inline(line))
			i++
		}
	}
	return strings.Join(out, softBreak)
}

// Inline 只做行内替换
func Inline(s string) string {
	for _, r := range inlineRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// SoftBreaks 把换行替换为 <br/>，不做其他处理
func SoftBreaks(s string) string {
	return lineBreak.ReplaceAllString(s, softBreak)
}
