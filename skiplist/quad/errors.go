package quad

import "github.com/cockroachdb/errors"

// ErrInvalidEntry 表示要移除的 entry 其 key 不在表中
var ErrInvalidEntry = errors.New("invalid entry")
