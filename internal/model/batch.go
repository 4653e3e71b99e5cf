package model

// Bucket 同一题型在一个批次内的记录，Files 与 Quizzes 下标一一对应
type Bucket struct {
	Quizzes []Quiz
	Files   []string
}

// Batch 一个分块的累加器，只归属于处理它的那个 worker
type Batch struct {
	buckets map[Variant]*Bucket
	size    int
}

func NewBatch() *Batch {
	return &Batch{buckets: make(map[Variant]*Bucket, len(Variants))}
}

func (b *Batch) Add(file string, q Quiz) {
	v := q.QuizType()
	bucket, ok := b.buckets[v]
	if !ok {
		bucket = &Bucket{}
		b.buckets[v] = bucket
	}
	bucket.Quizzes = append(bucket.Quizzes, q)
	bucket.Files = append(bucket.Files, file)
	b.size++
}

// Bucket 返回题型对应的桶，没有记录时返回 nil
func (b *Batch) Bucket(v Variant) *Bucket {
	return b.buckets[v]
}

func (b *Batch) Len() int {
	return b.size
}

// PersistReport 一次批量写入的结果
type PersistReport struct {
	Inserted map[Variant]int
	Rejected []RejectedDoc
}

// RejectedDoc 无序插入中被拒绝的单条记录
type RejectedDoc struct {
	Variant Variant
	File    string
	Index   int
	Code    int
	Reason  string
}

// InsertFailure 由存储层返回，描述无序插入里失败的下标
type InsertFailure struct {
	Index   int
	Code    int
	Message string
}
