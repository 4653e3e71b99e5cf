package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"quizbank_sync/internal/model"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/* ---------------- in-memory fakes ---------------- */

type fakeStore struct {
	mu sync.Mutex

	docs       map[model.Variant][]interface{}
	identities map[model.Variant][]model.QuizIdentity
	questions  map[model.Variant][]model.QuestionDoc
	updates    map[model.Variant][]model.FieldUpdate

	// reject 返回 true 的文档按无序插入的方式逐条拒绝
	reject    func(doc interface{}) bool
	insertErr error
	findErr   error
	// deleteShort 让 DeleteByIDs 少报告的条数
	deleteShort int64
	delay       time.Duration

	insertCalls int
	findCalls   int
	deleteCalls int
	active      int
	peak        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:       map[model.Variant][]interface{}{},
		identities: map[model.Variant][]model.QuizIdentity{},
		questions:  map[model.Variant][]model.QuestionDoc{},
		updates:    map[model.Variant][]model.FieldUpdate{},
	}
}

func (s *fakeStore) InsertMany(ctx context.Context, v model.Variant, docs []interface{}) (int, []model.InsertFailure, error) {
	s.mu.Lock()
	s.insertCalls++
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--

	if s.insertErr != nil {
		return 0, nil, s.insertErr
	}

	var failures []model.InsertFailure
	inserted := 0
	for i, doc := range docs {
		if s.reject != nil && s.reject(doc) {
			failures = append(failures, model.InsertFailure{Index: i, Code: 11000, Message: "E11000 duplicate key error"})
			continue
		}
		s.docs[v] = append(s.docs[v], doc)
		inserted++
	}
	if len(failures) > 0 {
		return inserted, failures, errors.New("bulk write exception")
	}
	return inserted, nil, nil
}

func (s *fakeStore) FindIdentities(ctx context.Context, v model.Variant) ([]model.QuizIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	return append([]model.QuizIdentity(nil), s.identities[v]...), nil
}

func (s *fakeStore) DeleteByIDs(ctx context.Context, v model.Variant, ids []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++

	drop := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []model.QuizIdentity
	var deleted int64
	for _, doc := range s.identities[v] {
		if drop[doc.ID] {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	s.identities[v] = kept
	return deleted - s.deleteShort, nil
}

// FindQuestions 忽略过滤条件，由调用方自行判断
func (s *fakeStore) FindQuestions(ctx context.Context, v model.Variant, filter bson.M) ([]model.QuestionDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	return append([]model.QuestionDoc(nil), s.questions[v]...), nil
}

func (s *fakeStore) UpdateFields(ctx context.Context, v model.Variant, updates []model.FieldUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[v] = append(s.updates[v], updates...)
	return int64(len(updates)), nil
}

func (s *fakeStore) count(v model.Variant) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[v])
}

type fakeSource struct {
	names []string
	files map[string][]byte
}

func newFakeSource() *fakeSource {
	return &fakeSource{files: map[string][]byte{}}
}

func (s *fakeSource) add(name string, data []byte) {
	s.names = append(s.names, name)
	s.files[name] = data
}

func (s *fakeSource) List(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.names...), nil
}

func (s *fakeSource) Read(ctx context.Context, name string) ([]byte, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: no such file", name)
	}
	return data, nil
}

type fakeReporter struct {
	mu      sync.Mutex
	total   int
	ticks   []model.FileOutcome
	reports []*model.RunReport
}

func (r *fakeReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *fakeReporter) Tick(o model.FileOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, o)
}

func (r *fakeReporter) Done(report *model.RunReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

type fakeLedger struct {
	mu     sync.Mutex
	synced map[string]bool
}

func newFakeLedger(names ...string) *fakeLedger {
	l := &fakeLedger{synced: map[string]bool{}}
	for _, n := range names {
		l.synced[n] = true
	}
	return l
}

func (l *fakeLedger) Seen(ctx context.Context, name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.synced[name], nil
}

func (l *fakeLedger) Mark(ctx context.Context, names ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range names {
		l.synced[n] = true
	}
	return nil
}

/* ---------------- fixtures ---------------- */

// rawJSON 按导出工具的旧字段名生成一条原始记录
func rawJSON(mode, question string, options []string, answer string) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"name":    "1",
		"cls":     "内科学",
		"unit":    "心血管",
		"mode":    mode,
		"test":    question,
		"option":  options,
		"answer":  answer,
		"point":   nil,
		"discuss": "解析",
	})
	return data
}

func a1JSON(question string) []byte {
	return rawJSON("A1型题", question, []string{"甲", "乙", "丙", "丁", "戊"}, "答案：C")
}

func oid(n byte) primitive.ObjectID {
	var id primitive.ObjectID
	id[11] = n
	return id
}
