// Package engine 以命令的形式修改项目。
//
// 每次 Apply 都在项目的深拷贝上执行全部命令：全部成功才返回新项目，
// 任一命令失败则返回原项目和错误，调用方看不到中间状态。
package engine

import (
	"fmt"

	"ScriptMaster-server/models"
)

// Command 一次对项目的编辑
type Command interface {
	// Op 命令名，与 JSON 信封中的 op 一致
	Op() string
	apply(p *models.Project) error
}

// Apply 原子地执行一组命令
func Apply(p *models.Project, cmds ...Command) (*models.Project, error) {
	next := p.Clone()
	for i, c := range cmds {
		if c == nil {
			continue
		}
		if err := c.apply(next); err != nil {
			if len(cmds) == 1 {
				return p, fmt.Errorf("%s: %w", c.Op(), err)
			}
			return p, fmt.Errorf("command #%d %s: %w", i, c.Op(), err)
		}
	}
	return next, nil
}

// move 把 from 位置的元素移到 to，越界时夹到两端
func move[T any](s []T, from, to int) []T {
	if from < 0 || from >= len(s) {
		return s
	}
	if to < 0 {
		to = 0
	}
	if to >= len(s) {
		to = len(s) - 1
	}
	if from == to {
		return s
	}
	item := s[from]
	s = append(s[:from], s[from+1:]...)
	s = append(s[:to], append([]T{item}, s[to:]...)...)
	return s
}

func removeAt[T any](s []T, i int) []T {
	if i < 0 || i >= len(s) {
		return s
	}
	return append(s[:i], s[i+1:]...)
}
