package service

import (
	"bytes"
	"encoding/json"
	"quizbank_sync/internal/model"
)

type fingerprintDoc struct {
	Type     model.Variant  `json:"type"`
	Question string         `json:"question"`
	Options  []model.Option `json:"options"`
}

// Fingerprint 以 {type, question, options[{oid,text}]} 的规范 JSON 作为题目身份，
// class/unit/answer/analysis 不参与比较，选项顺序敏感
func Fingerprint(doc model.QuizIdentity) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fingerprintDoc{Type: doc.Type, Question: doc.Question, Options: doc.Options}); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Duplicates docs 需按 _id 升序；每个指纹保留第一条，返回其余记录
func Duplicates(docs []model.QuizIdentity) ([]model.QuizIdentity, error) {
	seen := make(map[string]struct{}, len(docs))
	var dups []model.QuizIdentity
	for _, doc := range docs {
		fp, err := Fingerprint(doc)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[fp]; ok {
			dups = append(dups, doc)
			continue
		}
		seen[fp] = struct{}{}
	}
	return dups, nil
}
