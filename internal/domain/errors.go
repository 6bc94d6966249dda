package domain

import (
	"errors"
	"fmt"
)

// ErrorKind — категория ошибки генерации отчёта. Вызывающий код
// ветвится по категории, а не по конкретному типу.
type ErrorKind int

const (
	// ErrUnknown — категория по умолчанию для нераспознанных ошибок.
	ErrUnknown ErrorKind = iota
	// ErrInvalidParameter — ошибка во входных параметрах запроса.
	ErrInvalidParameter
	// ErrChannelUnavailable — канал не найден, приватен или недоступен.
	ErrChannelUnavailable
	// ErrEmptyResult — корректный запрос, но постов за период нет.
	ErrEmptyResult
	// ErrSourceUnavailable — нет соединения/авторизации у источника.
	ErrSourceUnavailable
	// ErrGenerationFailure — сбой сортировки или сборки документа.
	ErrGenerationFailure
)

// String возвращает короткое имя категории для логов и аналитики.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidParameter:
		return "InvalidParameter"
	case ErrChannelUnavailable:
		return "ChannelUnavailable"
	case ErrEmptyResult:
		return "EmptyResult"
	case ErrSourceUnavailable:
		return "SourceUnavailable"
	case ErrGenerationFailure:
		return "GenerationFailure"
	}
	return "Unknown"
}

// ReportError — тегированная ошибка пайплайна генерации отчёта.
type ReportError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ReportError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ReportError) Unwrap() error { return e.Err }

// NewError создаёт ошибку заданной категории.
func NewError(kind ErrorKind, format string, args ...any) *ReportError {
	return &ReportError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError оборачивает причину, сохраняя короткое описание без трейсов.
func WrapError(kind ErrorKind, err error, format string, args ...any) *ReportError {
	return &ReportError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf возвращает категорию ошибки; для посторонних ошибок — ErrUnknown.
func KindOf(err error) ErrorKind {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ErrUnknown
}
