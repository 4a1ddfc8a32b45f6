package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 生成 32 位无横线 ID（上传文件名等）
func NewID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }
