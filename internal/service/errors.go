// Package service 包含了应用的业务逻辑层。
package service

import "errors"

// ErrNoKnowledge 表示该用户尚未摄取任何文档（对应 400，提示先上传）。
var ErrNoKnowledge = errors.New("no knowledge indexed for this user")
