package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRawQuizRecordLegacyKeys(t *testing.T) {
	data := []byte(`{"name":"12","cls":"内科学","unit":"心","mode":"A1型题","test":"题干","option":["a","b"],"answer":"答案：A","point":null}`)

	var raw RawQuizRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if StringOf(raw.Class) != "内科学" || StringOf(raw.Question) != "题干" {
		t.Fatalf("raw = %+v", raw)
	}
	if !reflect.DeepEqual(raw.Options, []string{"a", "b"}) {
		t.Fatalf("options = %v", raw.Options)
	}
	if raw.Point != nil || raw.Discuss != nil {
		t.Fatal("null and absent fields must stay nil")
	}
}

func TestRawQuizRecordLegacyKeysWin(t *testing.T) {
	data := []byte(`{"cls":"old","class":"new","test":"old q","question":"new q","option":["old"],"options":["new"]}`)

	var raw RawQuizRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if StringOf(raw.Class) != "old" || StringOf(raw.Question) != "old q" || raw.Options[0] != "old" {
		t.Fatalf("raw = %+v", raw)
	}
}

func TestRawQuizRecordEmptyVsMissing(t *testing.T) {
	var raw RawQuizRecord
	if err := json.Unmarshal([]byte(`{"answer":"","option":[]}`), &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if raw.Answer == nil || *raw.Answer != "" {
		t.Fatal("empty answer should be present")
	}
	if raw.Options == nil {
		t.Fatal("empty option list should be present")
	}
	if raw.Mode != nil {
		t.Fatal("mode should be missing")
	}
}
