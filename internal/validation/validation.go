// Package validation checks loosely typed request payloads (JSON objects or
// multipart form fields) and reports every violated rule at once.
package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Payload 解码后的请求体；字段类型不可信
type Payload map[string]any

const (
	MsgNameRequired     = "Nombre es requerido y debe ser texto"
	MsgNameLength       = "Nombre debe tener entre 2 y 100 caracteres"
	MsgEmailRequired    = "Email es requerido y debe ser texto"
	MsgEmailFormat      = "Email debe tener formato válido"
	MsgPasswordRequired = "Password es requerido y debe ser texto"
	MsgPasswordLength   = "Password debe tener entre 6 y 12 caracteres"
	MsgAgeRange         = "Edad debe ser un número entre 0 y 150"

	MsgProductNameRequired = "Nombre es requerido"
	MsgPriceRequired       = "Precio es requerido"
	MsgPriceInvalid        = "Precio debe ser un número positivo"
	MsgStockInvalid        = "Stock debe ser un número no negativo"
)

// User 注册校验
func User(p Payload) []string { return user(p, true) }

// UserUpdate 更新校验：不含密码
func UserUpdate(p Payload) []string { return user(p, false) }

func user(p Payload, withPassword bool) []string {
	errs := []string{}
	if name, ok := nonEmptyString(p, "nombre"); !ok {
		errs = append(errs, MsgNameRequired)
	} else if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		errs = append(errs, MsgNameLength)
	}

	if email, ok := nonEmptyString(p, "email"); !ok {
		errs = append(errs, MsgEmailRequired)
	} else if !strings.Contains(email, "@") {
		errs = append(errs, MsgEmailFormat)
	}

	if withPassword {
		if pw, ok := nonEmptyString(p, "password"); !ok {
			errs = append(errs, MsgPasswordRequired)
		} else if n := utf8.RuneCountInString(pw); n < 6 || n > 12 {
			errs = append(errs, MsgPasswordLength)
		}
	}

	if present(p, "edad") {
		if age, ok := Int(p["edad"]); !ok || age < 0 || age > 150 {
			errs = append(errs, MsgAgeRange)
		}
	}
	return errs
}

// Product 商品校验；descripcion / categoria_id / imagen 不检查
func Product(p Payload) []string {
	errs := []string{}
	if _, ok := nonEmptyString(p, "nombre"); !ok {
		errs = append(errs, MsgProductNameRequired)
	}

	if !present(p, "precio") {
		errs = append(errs, MsgPriceRequired)
	} else if price, ok := Decimal(p["precio"]); !ok || price.IsNegative() {
		errs = append(errs, MsgPriceInvalid)
	}

	if present(p, "stock") {
		if stock, ok := Int(p["stock"]); !ok || stock < 0 {
			errs = append(errs, MsgStockInvalid)
		}
	}
	return errs
}

// present 键存在且不为 null
func present(p Payload, key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

func nonEmptyString(p Payload, key string) (string, bool) {
	s, ok := p[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// String 取字符串字段；空串按缺省处理
func String(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Int 接受 JSON 数字或数字字符串，小数向零取整
func Int(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) > math.MaxInt32 {
			return 0, false
		}
		return int(x), true
	case json.Number:
		return Int(string(x))
	case int:
		return x, true
	case int64:
		return int(x), true
	case string:
		x = strings.TrimSpace(x)
		if n, err := strconv.Atoi(x); err == nil {
			return Int(float64(n))
		}
		// "30.7"、"1e2" 之类按浮点解析后取整
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return Int(f)
	}
	return 0, false
}

// Int64 用于外键等 ID 字段
func Int64(v any) (int64, bool) {
	n, ok := Int(v)
	return int64(n), ok
}

// Decimal 接受 JSON 数字或数字字符串
func Decimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case json.Number:
		return Decimal(string(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}
