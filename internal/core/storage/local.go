package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"tienda-api/pkg/utils"
)

var (
	ErrTooLarge        = errors.New("storage: file too large")
	ErrUnsupportedType = errors.New("storage: unsupported file type")
)

// DefaultImageTypes 允许的图片类型 → 扩展名
var DefaultImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Local 把上传文件写到本地目录，返回对外访问路径（/uploads/xxx.jpg）
type Local struct {
	Dir          string
	PublicPrefix string
	MaxBytes     int64
	AllowedTypes map[string]string
}

func NewLocal(dir, publicPrefix string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{
		Dir:          dir,
		PublicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		MaxBytes:     maxBytes,
		AllowedTypes: DefaultImageTypes,
	}, nil
}

func (s *Local) Save(fh *multipart.FileHeader) (string, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// 按内容判断类型，不信任客户端的 Content-Type
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	ext, ok := s.AllowedTypes[http.DetectContentType(head[:n])]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := utils.NewID() + ext
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), src)); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("close file: %w", err)
	}
	return path.Join(s.PublicPrefix, name), nil
}

// Remove 删除 Save 返回的文件；不属于本目录的引用直接忽略
func (s *Local) Remove(ref string) error {
	if !strings.HasPrefix(ref, s.PublicPrefix+"/") {
		return nil
	}
	name := path.Base(ref)
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
