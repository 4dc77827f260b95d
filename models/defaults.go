package models

// DefaultTemplates 系统内置模版，ID 固定为 t1/t2/t3
func DefaultTemplates() []Template {
	preset := func(id, name string, t AssetType, desc, format, dims, upload string) Asset {
		return Asset{
			ID:                 id,
			Name:               name,
			Type:               t,
			Description:        desc,
			Format:             format,
			Dimensions:         dims,
			UploadInstructions: upload,
			Formats:            []string{},
			Extras:             []Extra{},
			Status:             AssetStatusPending,
		}
	}
	// React、SRT 不在组件类型的可选格式内，沿用既有默认数据，只出现在单值 format 上
	return []Template{
		{
			ID:   "t1",
			Name: "互动场景 (Interactive Scene)",
			Presets: []Asset{
				preset("p1", "背景图片", AssetTypeImage, "场景大背景", "PNG", "1920x1080", "assets/bg/"),
				preset("p2", "标题音频", AssetTypeAudio, "页面标题朗读", "MP3", "-", "assets/audio/"),
				preset("p3", "下一步按钮", AssetTypeComponent, "通用导航", "React", "-", "components/NavBtn"),
			},
			CustomColumns: []string{},
		},
		{
			ID:   "t2",
			Name: "视频教学 (Video Lesson)",
			Presets: []Asset{
				preset("v1", "教学视频", AssetTypeVideo, "核心讲解视频", "MP4", "1920x1080", "assets/video/"),
				preset("v2", "字幕", AssetTypeComponent, "SRT文件", "SRT", "-", "assets/subs/"),
			},
			CustomColumns: []string{},
		},
		{
			ID:   "t3",
			Name: "单词卡片 (Flashcards)",
			Presets: []Asset{
				preset("f1", "卡片图片", AssetTypeImage, "单词对应的图片", "PNG", "800x600", "assets/cards/"),
				preset("f2", "单词发音", AssetTypeAudio, "单词朗读", "MP3", "-", "assets/audio/"),
			},
			CustomColumns: []string{},
		},
	}
}

// DefaultCoursePresets 内置课型，步骤引用 DefaultTemplates 的 ID
func DefaultCoursePresets() []CoursePreset {
	return []CoursePreset{
		{
			ID:   "cp1",
			Name: "标准绘本课 (Standard Story)",
			Steps: []Step{
				{ID: "s1", Title: "01. Warm-up", TemplateID: "t2"},
				{ID: "s2", Title: "02. Story Page 1", TemplateID: "t1"},
				{ID: "s3", Title: "03. Story Page 2", TemplateID: "t1"},
				{ID: "s4", Title: "04. Wrap-up", TemplateID: "t2"},
			},
		},
	}
}

// seedDefaults 为默认数据分配新 ID，并把步骤的模版引用映射到新 ID
func seedDefaults() ([]Template, []CoursePreset) {
	templates := DefaultTemplates()
	remap := make(map[string]string, len(templates))
	for i := range templates {
		id := NewID()
		remap[templates[i].ID] = id
		templates[i].ID = id
		for j := range templates[i].Presets {
			templates[i].Presets[j].ID = NewID()
		}
	}
	presets := DefaultCoursePresets()
	for i := range presets {
		presets[i].ID = NewID()
		for j := range presets[i].Steps {
			st := &presets[i].Steps[j]
			st.ID = NewID()
			st.TemplateID = remap[st.TemplateID]
		}
	}
	return templates, presets
}
