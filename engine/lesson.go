package engine

import (
	"regexp"
	"strconv"

	"ScriptMaster-server/models"
)

var lessonNumber = regexp.MustCompile(`(?i)Lesson\s*(\d+)`)

// NextLesson 基于当前项目生成下一节课：新项目 ID、标题中的课号加一、环节重新分配 ID
func NextLesson(p *models.Project) *models.Project {
	next := p.Clone()
	next.ID = models.NewID()
	next.Title = NextLessonTitle(p.Title)
	next.UpdatedAt = nil
	for i := range next.Segments {
		next.Segments[i].ID = models.NewID()
	}
	return next
}

// NextLessonTitle 替换第一个 “Lesson N”；没有课号时追加后缀
func NextLessonTitle(title string) string {
	loc := lessonNumber.FindStringSubmatchIndex(title)
	if loc == nil {
		return title + " - Next Lesson"
	}
	n, err := strconv.Atoi(title[loc[2]:loc[3]])
	if err != nil {
		return title + " - Next Lesson"
	}
	return title[:loc[0]] + "Lesson " + strconv.Itoa(n+1) + title[loc[1]:]
}
