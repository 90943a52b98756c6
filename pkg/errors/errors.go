package errors

import "errors"

// ErrStateConflict 条件更新未命中任何行：记录状态已被其他操作修改
var ErrStateConflict = errors.New("记录状态已被其他操作修改，请刷新后重试")
