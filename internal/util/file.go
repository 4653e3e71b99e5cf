package util

import "strings"

// IsQuizFile 只接受 .json 后缀的文件名
func IsQuizFile(name string) bool {
	return strings.HasSuffix(name, QuizFileExt)
}
