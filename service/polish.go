package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ScriptMaster-server/models"
	"ScriptMaster-server/pkg/logger"
	"ScriptMaster-server/pkg/metrics"

	genai "google.golang.org/genai"
)

var ErrPolisherUnavailable = errors.New("polisher is not configured")

// Polisher 润色环节内组件描述，返回 组件ID -> 新描述
type Polisher interface {
	Polish(ctx context.Context, seg models.Segment) (map[string]string, error)
}

type PolishItem struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	CurrentDescription string `json:"currentDescription"`
}

type polishResult struct {
	ID                 string `json:"id"`
	RefinedDescription string `json:"refinedDescription"`
}

// PolishItems 只提交描述多于两个字符的组件
func PolishItems(seg models.Segment) []PolishItem {
	var items []PolishItem
	for _, a := range seg.Assets {
		if utf8.RuneCountInString(a.Description) <= 2 {
			continue
		}
		items = append(items, PolishItem{ID: a.ID, Name: a.Name, CurrentDescription: a.Description})
	}
	return items
}

const polishInstruction = `你是一个专业的英语课程脚本编辑助手。
你的任务是润色开发师输入的"组件内容描述"。
保持原意，但使其更清晰、专业，并适合美术或配音人员阅读。
如果是英文内容，检查拼写和语法。
如果是动作描述，使其更生动。

输入是 JSON 数组，包含 ID, 名称, 和当前描述。
输出是 JSON 数组，包含 ID 和 润色后的描述 (refinedDescription)。`

type GeminiPolisher struct {
	cli   *genai.Client
	model string
	log   *logger.Logger
}

func NewGeminiPolisher(ctx context.Context, apiKey, model string, log *logger.Logger) (*GeminiPolisher, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiPolisher{cli: cli, model: model, log: log}, nil
}

func (g *GeminiPolisher) Polish(ctx context.Context, seg models.Segment) (out map[string]string, err error) {
	items := PolishItems(seg)
	if len(items) == 0 {
		return map[string]string{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.LLMCallTotal.WithLabelValues("gemini", g.model, metrics.Status(err)).Inc()
		metrics.LLMCallDuration.WithLabelValues("gemini", g.model).Observe(time.Since(start).Seconds())
	}()

	in, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal polish items: %w", err)
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		genai.Text("请润色以下列表: "+string(in)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(polishInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema: &genai.Schema{
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":                 {Type: genai.TypeString},
						"refinedDescription": {Type: genai.TypeString},
					},
					Required: []string{"id", "refinedDescription"},
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	out, err = ParsePolishResponse(resp.Text())
	if err != nil {
		return nil, err
	}
	g.log.Debug("descriptions polished", "segment_id", seg.ID, "requested", len(items), "returned", len(out))
	return out, nil
}

// ParsePolishResponse 解析模型输出；空串视为空数组，空描述丢弃
func ParsePolishResponse(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]string{}, nil
	}
	var results []polishResult
	if err := json.Unmarshal([]byte(text), &results); err != nil {
		return nil, fmt.Errorf("decode polish response: %w", err)
	}
	out := make(map[string]string, len(results))
	for _, r := range results {
		if r.ID == "" || r.RefinedDescription == "" {
			continue
		}
		out[r.ID] = r.RefinedDescription
	}
	return out, nil
}
