package util

import (
	"regexp"
	"strconv"
)

var leadingYear = regexp.MustCompile(`^(\d{4})`)

// LeadingYearPattern 用于在 Mongo 中筛选以年份开头的题干
const LeadingYearPattern = `^\d{4}`

// ParseLeadingYear 提取题干开头的四位年份
func ParseLeadingYear(s string) (int, bool) {
	m := leadingYear.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}
