package util

import (
	"strconv"
	"strings"
)

// ParseUintList 解析逗号分隔的 ID 列表，空字符串返回空切片
func ParseUintList(s string) ([]uint, error) {
	ids := []uint{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
