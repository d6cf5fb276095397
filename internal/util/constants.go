package util

// gin 上下文键
const (
	ContextUserKey = "user"
)
