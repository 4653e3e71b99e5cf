package model

import "strings"

// Variant 题型标记，同时决定落库的集合
type Variant string

const (
	VariantA1 Variant = "A1"
	VariantA2 Variant = "A2"
	VariantA3 Variant = "A3"
	VariantX  Variant = "X"
	VariantB  Variant = "B"
)

// Variants 按集合处理顺序排列
var Variants = []Variant{VariantA1, VariantA2, VariantA3, VariantB, VariantX}

// Collection 返回题型对应的集合名
func (v Variant) Collection() string {
	switch v {
	case VariantA1:
		return "a1"
	case VariantA2:
		return "a2"
	case VariantA3:
		return "a3"
	case VariantB:
		return "b"
	case VariantX:
		return "x"
	}
	return ""
}

// Flat 是否为 question + options 平铺结构（A1/A2/X）
func (v Variant) Flat() bool {
	switch v {
	case VariantA1, VariantA2, VariantX:
		return true
	}
	return false
}

// ParseVariant 接受题型标记或集合名，大小写不敏感
func ParseVariant(s string) (Variant, bool) {
	for _, v := range Variants {
		if strings.EqualFold(s, string(v)) || strings.EqualFold(s, v.Collection()) {
			return v, true
		}
	}
	return "", false
}

// OID 选项标识
type OID string

const (
	OIDA OID = "A"
	OIDB OID = "B"
	OIDC OID = "C"
	OIDD OID = "D"
	OIDE OID = "E"
)

// OIDTable 选项下标到标识的固定映射
var OIDTable = [...]OID{OIDA, OIDB, OIDC, OIDD, OIDE}

type Option struct {
	OID  OID    `bson:"oid" json:"oid" validate:"oneof=A B C D E"`
	Text string `bson:"text" json:"text"`
}

type Analysis struct {
	Point   *string  `bson:"point" json:"point"`
	Discuss *string  `bson:"discuss" json:"discuss"`
	Link    []string `bson:"link" json:"link" validate:"required"`
}

// Meta 各题型共有的分类信息
type Meta struct {
	Class string   `bson:"class" json:"class"`
	Unit  string   `bson:"unit" json:"unit"`
	Tags  []string `bson:"tags" json:"tags" validate:"required"`
}

// Quiz 五种题型的封闭联合，只有本包内的类型可以实现
type Quiz interface {
	QuizType() Variant
	quiz()
}

// A1 单句型最佳选择题
type A1 struct {
	Type     Variant  `bson:"type" json:"type" validate:"eq=A1"`
	Meta     `bson:",inline"`
	Question string   `bson:"question" json:"question"`
	Options  []Option `bson:"options" json:"options" validate:"required,max=5,dive"`
	Answer   OID      `bson:"answer" json:"answer" validate:"oneof=A B C D E"`
	Analysis Analysis `bson:"analysis" json:"analysis"`
}

// A2 病例摘要型最佳选择题
type A2 struct {
	Type     Variant  `bson:"type" json:"type" validate:"eq=A2"`
	Meta     `bson:",inline"`
	Question string   `bson:"question" json:"question"`
	Options  []Option `bson:"options" json:"options" validate:"required,max=5,dive"`
	Answer   OID      `bson:"answer" json:"answer" validate:"oneof=A B C D E"`
	Analysis Analysis `bson:"analysis" json:"analysis"`
}

// X 多项选择题
type X struct {
	Type     Variant  `bson:"type" json:"type" validate:"eq=X"`
	Meta     `bson:",inline"`
	Question string   `bson:"question" json:"question"`
	Options  []Option `bson:"options" json:"options" validate:"required,max=5,dive"`
	Answer   []OID    `bson:"answer" json:"answer" validate:"required,min=1,dive,oneof=A B C D E"`
	Analysis Analysis `bson:"analysis" json:"analysis"`
}

type SubQuiz struct {
	SubQuizID int      `bson:"subQuizId" json:"subQuizId"`
	Question  string   `bson:"question" json:"question"`
	Options   []Option `bson:"options" json:"options" validate:"required,max=5,dive"`
	Answer    OID      `bson:"answer" json:"answer" validate:"oneof=A B C D E"`
}

// A3 病例组型题，一个主题干带若干小题
type A3 struct {
	Type         Variant   `bson:"type" json:"type" validate:"eq=A3"`
	Meta         `bson:",inline"`
	MainQuestion string    `bson:"mainQuestion" json:"mainQuestion"`
	SubQuizs     []SubQuiz `bson:"subQuizs" json:"subQuizs" validate:"required,dive"`
	Analysis     Analysis  `bson:"analysis" json:"analysis"`
}

type BQuestion struct {
	QuestionID   int    `bson:"questionId" json:"questionId"`
	QuestionText string `bson:"questionText" json:"questionText"`
	Answer       OID    `bson:"answer" json:"answer" validate:"oneof=A B C D E"`
}

// B 共用选项题
type B struct {
	Type      Variant     `bson:"type" json:"type" validate:"eq=B"`
	Meta      `bson:",inline"`
	Questions []BQuestion `bson:"questions" json:"questions" validate:"required,dive"`
	Options   []Option    `bson:"options" json:"options" validate:"required,max=5,dive"`
	Analysis  Analysis    `bson:"analysis" json:"analysis"`
}

func (A1) QuizType() Variant { return VariantA1 }
func (A2) QuizType() Variant { return VariantA2 }
func (A3) QuizType() Variant { return VariantA3 }
func (X) QuizType() Variant  { return VariantX }
func (B) QuizType() Variant  { return VariantB }

func (A1) quiz() {}
func (A2) quiz() {}
func (A3) quiz() {}
func (X) quiz()  {}
func (B) quiz()  {}
