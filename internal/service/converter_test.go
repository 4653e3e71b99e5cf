package service

import (
	"encoding/json"
	"errors"
	"quizbank_sync/internal/model"
	"quizbank_sync/internal/util"
	"reflect"
	"strings"
	"testing"
)

func decodeRaw(t *testing.T, data []byte) *model.RawQuizRecord {
	t.Helper()
	var raw model.RawQuizRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	return &raw
}

func TestConvertA1(t *testing.T) {
	raw := decodeRaw(t, rawJSON("A1型题", "心脏的正常起搏点是", []string{"窦房结", "房室结", "希氏束"}, "答案：A"))

	q, err := NewConverter().Convert(raw)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	a1, ok := q.(model.A1)
	if !ok {
		t.Fatalf("got %T, want model.A1", q)
	}
	if a1.Type != model.VariantA1 || a1.Answer != model.OIDA {
		t.Fatalf("type=%s answer=%s", a1.Type, a1.Answer)
	}
	want := []model.Option{{OID: "A", Text: "窦房结"}, {OID: "B", Text: "房室结"}, {OID: "C", Text: "希氏束"}}
	if !reflect.DeepEqual(a1.Options, want) {
		t.Fatalf("options = %+v", a1.Options)
	}
	if a1.Class != "内科学" || a1.Unit != "心血管" {
		t.Fatalf("meta = %+v", a1.Meta)
	}
	if a1.Tags == nil || len(a1.Tags) != 0 {
		t.Fatalf("tags should be empty, got %#v", a1.Tags)
	}
	if a1.Analysis.Link == nil || len(a1.Analysis.Link) != 0 {
		t.Fatalf("link should be empty, got %#v", a1.Analysis.Link)
	}
	if a1.Analysis.Point != nil {
		t.Fatalf("point should stay null")
	}
	if a1.Analysis.Discuss == nil || *a1.Analysis.Discuss != "解析" {
		t.Fatalf("discuss = %v", a1.Analysis.Discuss)
	}
}

func TestConvertA2(t *testing.T) {
	raw := decodeRaw(t, rawJSON("A2型题", "患者，男，45岁", []string{"a", "b"}, "B"))

	q, err := NewConverter().Convert(raw)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if q.QuizType() != model.VariantA2 {
		t.Fatalf("variant = %s", q.QuizType())
	}
	if q.(model.A2).Answer != model.OIDB {
		t.Fatalf("answer = %s", q.(model.A2).Answer)
	}
}

func TestConvertXSplitsAnswer(t *testing.T) {
	raw := decodeRaw(t, rawJSON("X型题", "下列属于", []string{"a", "b", "c", "d"}, "答案:AC"))

	q, err := NewConverter().Convert(raw)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	x, ok := q.(model.X)
	if !ok {
		t.Fatalf("got %T, want model.X", q)
	}
	if want := []model.OID{model.OIDA, model.OIDC}; !reflect.DeepEqual(x.Answer, want) {
		t.Fatalf("answer = %v, want %v", x.Answer, want)
	}
}

func TestConvertOptionOverflow(t *testing.T) {
	raw := decodeRaw(t, rawJSON("A1型题", "q", []string{"1", "2", "3", "4", "5", "6"}, "A"))

	_, err := NewConverter().Convert(raw)
	if !errors.Is(err, util.ErrOptionOverflow) {
		t.Fatalf("err = %v, want ErrOptionOverflow", err)
	}
	var ce *ConversionError
	if !errors.As(err, &ce) || ce.Field != "options" {
		t.Fatalf("want *ConversionError on options, got %#v", err)
	}
	if !strings.Contains(err.Error(), "option count exceeds limit") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestConversionErrorMessage(t *testing.T) {
	cases := []struct {
		err  *ConversionError
		want string
	}{
		{&ConversionError{Field: "class", Reason: "no value in record", Err: util.ErrMissingField}, "class: required field missing (no value in record)"},
		{&ConversionError{Field: "A1.Answer", Reason: "bad", Err: util.ErrSchemaViolation}, "A1.Answer: schema validation failed (bad)"},
		{&ConversionError{Reason: "malformed record"}, "malformed record"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestConvertFiveOptionsIsFine(t *testing.T) {
	raw := decodeRaw(t, rawJSON("A1型题", "q", []string{"1", "2", "3", "4", "5"}, "E"))
	q, err := NewConverter().Convert(raw)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := q.(model.A1).Options[4].OID; got != model.OIDE {
		t.Fatalf("5th option = %s", got)
	}
}

func TestConvertUnsupportedModes(t *testing.T) {
	for _, mode := range []string{"A3型题", "B型题", "A3", "B", "Z型题", ""} {
		raw := decodeRaw(t, rawJSON(mode, "q", []string{"a"}, "A"))
		if _, err := NewConverter().Convert(raw); !errors.Is(err, util.ErrUnsupportedMode) {
			t.Errorf("mode %q: err = %v, want ErrUnsupportedMode", mode, err)
		}
	}
}

func TestConvertUnsupportedBeforeValidation(t *testing.T) {
	// A3 记录即使缺字段也只报题型不支持
	raw := decodeRaw(t, []byte(`{"mode":"A3型题"}`))
	if _, err := NewConverter().Convert(raw); !errors.Is(err, util.ErrUnsupportedMode) {
		t.Fatalf("err = %v", err)
	}
}

func TestConvertMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		drop  string
		field string
	}{
		{"mode", "mode", "mode"},
		{"class", "cls", "class"},
		{"question", "test", "question"},
		{"options", "option", "options"},
		{"answer", "answer", "answer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m map[string]interface{}
			_ = json.Unmarshal(rawJSON("A1型题", "q", []string{"a", "b"}, "A"), &m)
			delete(m, tc.drop)
			data, _ := json.Marshal(m)

			_, err := NewConverter().Convert(decodeRaw(t, data))
			if !errors.Is(err, util.ErrMissingField) {
				t.Fatalf("err = %v, want ErrMissingField", err)
			}
			var ce *ConversionError
			if !errors.As(err, &ce) || ce.Field != tc.field {
				t.Fatalf("field = %+v, want %s", ce, tc.field)
			}
		})
	}
}

func TestConvertNewFieldNames(t *testing.T) {
	data := []byte(`{"class":"生理学","unit":"u","mode":"A1型题","question":"q","options":["a","b"],"answer":"B"}`)
	q, err := NewConverter().Convert(decodeRaw(t, data))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	a1 := q.(model.A1)
	if a1.Class != "生理学" || a1.Question != "q" || len(a1.Options) != 2 {
		t.Fatalf("got %+v", a1)
	}
}

func TestConvertRejectsInvalidAnswer(t *testing.T) {
	cases := []struct {
		mode   string
		answer string
	}{
		{"A1型题", "答案：F"},
		{"A1型题", "答案："},
		{"A2型题", "AB"},
		{"X型题", "答案：AF"},
		{"X型题", ""},
	}
	for _, tc := range cases {
		raw := decodeRaw(t, rawJSON(tc.mode, "q", []string{"a", "b"}, tc.answer))
		_, err := NewConverter().Convert(raw)
		if !errors.Is(err, util.ErrSchemaViolation) {
			t.Errorf("%s %q: err = %v, want ErrSchemaViolation", tc.mode, tc.answer, err)
		}
	}
}

func TestNormalizeAnswer(t *testing.T) {
	cases := []struct{ in, want string }{
		{"答案：C", "C"},
		{"答案:AB", "AB"},
		{"C", "C"},
		{"答C案:", "C"},
		{" D", " D"},
		{"答案：：A", "A"},
	}
	for _, tc := range cases {
		if got := NormalizeAnswer(tc.in); got != tc.want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
