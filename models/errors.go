package models

import (
	"errors"
	"fmt"
)

// ErrorKind 核心操作对外暴露的错误类别
type ErrorKind string

const (
	KindTemplateMissing      ErrorKind = "TEMPLATE_MISSING"
	KindLastTemplate         ErrorKind = "LAST_TEMPLATE"
	KindInvalidDocument      ErrorKind = "INVALID_DOCUMENT"
	KindEmptyProject         ErrorKind = "EMPTY_PROJECT"
	KindReservedColumnName   ErrorKind = "RESERVED_COLUMN_NAME"
	KindConfirmationRequired ErrorKind = "CONFIRMATION_REQUIRED"
	KindUnknownCommand       ErrorKind = "UNKNOWN_COMMAND"
)

// Error 带类别的错误；errors.Is 只比较类别
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrTemplateMissing      = &Error{Kind: KindTemplateMissing}
	ErrLastTemplate         = &Error{Kind: KindLastTemplate}
	ErrInvalidDocument      = &Error{Kind: KindInvalidDocument}
	ErrEmptyProject         = &Error{Kind: KindEmptyProject}
	ErrReservedColumnName   = &Error{Kind: KindReservedColumnName}
	ErrConfirmationRequired = &Error{Kind: KindConfirmationRequired}
	ErrUnknownCommand       = &Error{Kind: KindUnknownCommand}
)

// Errorf 构造指定类别的错误
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError 保留底层错误
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf 取错误链上的类别，非核心错误返回空串
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
