package service

import (
	"errors"
	"fmt"
	"quizbank_sync/internal/model"
	"quizbank_sync/internal/util"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ConversionError 原始记录无法映射为合法题目
type ConversionError struct {
	Field  string
	Reason string
	Err    error
}

// Error 包含被包装的错误文本，异常文件列表里可以直接看到原因类别
func (e *ConversionError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%v (%s)", e.Err, e.Reason)
	}
	if e.Field == "" {
		return msg
	}
	return e.Field + ": " + msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Converter 把导出的原始 JSON 记录转换为五种题型之一，不做任何 I/O
type Converter struct {
	validate *validator.Validate
}

func NewConverter() *Converter {
	return &Converter{validate: validator.New()}
}

// Convert A3、B 以及未知题型返回 util.ErrUnsupportedMode；其余失败均为 *ConversionError
func (c *Converter) Convert(raw *model.RawQuizRecord) (q model.Quiz, err error) {
	defer func() {
		if r := recover(); r != nil {
			q = nil
			err = &ConversionError{Reason: fmt.Sprintf("malformed record: %v", r), Err: util.ErrSchemaViolation}
		}
	}()

	if raw == nil || raw.Mode == nil {
		return nil, missing("mode")
	}

	variant := model.Variant(strings.TrimSuffix(*raw.Mode, util.ModeSuffix))
	switch variant {
	case model.VariantA1, model.VariantA2, model.VariantX:
	case model.VariantA3, model.VariantB:
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedMode, variant)
	default:
		return nil, fmt.Errorf("%w: %q", util.ErrUnsupportedMode, *raw.Mode)
	}

	if err := requireFields(raw); err != nil {
		return nil, err
	}

	options, err := buildOptions(raw.Options)
	if err != nil {
		return nil, err
	}

	meta := model.Meta{
		Class: model.StringOf(raw.Class),
		Unit:  model.StringOf(raw.Unit),
		Tags:  []string{},
	}
	analysis := model.Analysis{
		Point:   raw.Point,
		Discuss: raw.Discuss,
		Link:    []string{},
	}
	question := model.StringOf(raw.Question)
	answer := NormalizeAnswer(*raw.Answer)

	switch variant {
	case model.VariantA1:
		q = model.A1{Type: variant, Meta: meta, Question: question, Options: options, Answer: model.OID(answer), Analysis: analysis}
	case model.VariantA2:
		q = model.A2{Type: variant, Meta: meta, Question: question, Options: options, Answer: model.OID(answer), Analysis: analysis}
	case model.VariantX:
		q = model.X{Type: variant, Meta: meta, Question: question, Options: options, Answer: SplitAnswer(answer), Analysis: analysis}
	}

	if err := c.validate.Struct(q); err != nil {
		return nil, schemaError(err)
	}
	return q, nil
}

// NormalizeAnswer 依次去掉 答 / 案 / ： / : ，不做其他处理
func NormalizeAnswer(s string) string {
	for _, marker := range util.AnswerMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	return s
}

// SplitAnswer 多选题答案按字符拆分
func SplitAnswer(s string) []model.OID {
	out := make([]model.OID, 0, len(s))
	for _, r := range s {
		out = append(out, model.OID(string(r)))
	}
	return out
}

func buildOptions(texts []string) ([]model.Option, error) {
	if len(texts) > len(model.OIDTable) {
		return nil, &ConversionError{
			Field:  "options",
			Reason: fmt.Sprintf("%d options, at most %d allowed", len(texts), len(model.OIDTable)),
			Err:    util.ErrOptionOverflow,
		}
	}
	options := make([]model.Option, len(texts))
	for i, text := range texts {
		options[i] = model.Option{OID: model.OIDTable[i], Text: text}
	}
	return options, nil
}

func requireFields(raw *model.RawQuizRecord) error {
	switch {
	case raw.Class == nil:
		return missing("class")
	case raw.Question == nil:
		return missing("question")
	case raw.Options == nil:
		return missing("options")
	case raw.Answer == nil:
		return missing("answer")
	}
	return nil
}

func missing(field string) error {
	return &ConversionError{Field: field, Reason: "no value in record", Err: util.ErrMissingField}
}

func schemaError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ConversionError{
			Field:  fe.Namespace(),
			Reason: fmt.Sprintf("failed %q validation (value %v)", fe.Tag(), fe.Value()),
			Err:    util.ErrSchemaViolation,
		}
	}
	return &ConversionError{Reason: err.Error(), Err: util.ErrSchemaViolation}
}
