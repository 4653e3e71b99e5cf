package model

import "encoding/json"

// RawQuizRecord 题库导出的单个 JSON 文件，字段均可能缺失
type RawQuizRecord struct {
	Name     *string
	Class    *string
	Unit     *string
	Mode     *string
	Question *string
	Options  []string
	Answer   *string
	Point    *string
	Discuss  *string
}

// UnmarshalJSON 兼容导出工具的旧字段名 cls/test/option
func (r *RawQuizRecord) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name     *string  `json:"name"`
		Cls      *string  `json:"cls"`
		Class    *string  `json:"class"`
		Unit     *string  `json:"unit"`
		Mode     *string  `json:"mode"`
		Test     *string  `json:"test"`
		Question *string  `json:"question"`
		Option   []string `json:"option"`
		Options  []string `json:"options"`
		Answer   *string  `json:"answer"`
		Point    *string  `json:"point"`
		Discuss  *string  `json:"discuss"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = RawQuizRecord{
		Name:     aux.Name,
		Class:    firstString(aux.Cls, aux.Class),
		Unit:     aux.Unit,
		Mode:     aux.Mode,
		Question: firstString(aux.Test, aux.Question),
		Options:  aux.Option,
		Answer:   aux.Answer,
		Point:    aux.Point,
		Discuss:  aux.Discuss,
	}
	if r.Options == nil {
		r.Options = aux.Options
	}
	return nil
}

func firstString(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// StringOf 解引用，缺失时返回空串
func StringOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
