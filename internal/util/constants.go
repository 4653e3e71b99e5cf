package util

import "time"

const (
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	SourceLocal = "local"
	SourceMinio = "minio"
	SourceOSS   = "oss"
)

// 原始题目文件
const (
	QuizFileExt = ".json"
	ModeSuffix  = "型题"
)

// AnswerMarkers 按顺序从原始答案中剔除
var AnswerMarkers = []string{"答", "案", "：", ":"}

const (
	DefaultBatchSize   = 1000
	DefaultConcurrency = 5
	DefaultMinInterval = time.Second
	WatchDebounce      = time.Second
)

// 题目来源标记
const (
	SourceRealExam     = "西综真题"
	SourceQuestionBank = "本科生题库"
	SourceLegacyExam   = "真题"
)
