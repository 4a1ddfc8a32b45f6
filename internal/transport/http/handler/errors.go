package handler

import (
	"errors"
	"strconv"
	"strings"

	"tienda-api/internal/core/storage"
	"tienda-api/internal/domain"
	"tienda-api/internal/transport/http/ez"
)

const (
	MsgUserNotFound       = "Usuario no encontrado"
	MsgEmailTaken         = "El email ya está registrado"
	MsgInvalidCredentials = "Credenciales inválidas"
	MsgLoginMissing       = "Email y password son obligatorios"
	MsgUnknownCategory    = "La categoría no existe"
	MsgImageTooLarge      = "La imagen supera el tamaño máximo permitido"
	MsgImageType          = "Formato de imagen no soportado"

	MsgFilterPrecioMin = "precio_min debe ser un número"
	MsgFilterPrecioMax = "precio_max debe ser un número"
	MsgFilterStockMin  = "stock_min debe ser un entero"
)

// mapErr 领域错误 → HTTP；未识别的原样返回，由 ez 统一按 500 处理
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ez.Invalid(ve.Details)
	case errors.Is(err, domain.ErrNotFound):
		return ez.NotFound(MsgUserNotFound)
	case errors.Is(err, domain.ErrEmailTaken):
		return ez.Conflict(MsgEmailTaken)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return ez.Unauthorized(MsgInvalidCredentials)
	case errors.Is(err, domain.ErrUnknownCategory):
		return ez.BadRequest(MsgUnknownCategory)
	case errors.Is(err, storage.ErrTooLarge):
		return ez.BadRequest(MsgImageTooLarge)
	case errors.Is(err, storage.ErrUnsupportedType):
		return ez.BadRequest(MsgImageType)
	}
	return err
}

// pageOf 解析 pagina / limite；非数字按缺省值处理
func pageOf(pagina, limite string) domain.Page {
	n, _ := strconv.Atoi(pagina)
	l, _ := strconv.Atoi(limite)
	return domain.NewPage(n, l)
}

// idParam 非数字 id 与不存在的 id 一样返回 404
func idParam(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ez.NotFound(MsgUserNotFound)
	}
	return id, nil
}

// optFloat 空值视为未提供该过滤条件
func optFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optInt(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
