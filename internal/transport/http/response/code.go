package response

import "net/http"

// MsgMap 状态码 → 默认对外文案
var MsgMap = map[int]string{
	http.StatusBadRequest:            "Datos inválidos",
	http.StatusUnauthorized:          "Token inválido o expirado",
	http.StatusForbidden:             "Acceso denegado",
	http.StatusNotFound:              "Recurso no encontrado",
	http.StatusConflict:              "Conflicto con el estado actual del recurso",
	http.StatusRequestEntityTooLarge: "El cuerpo de la petición es demasiado grande",
	http.StatusServiceUnavailable:    "Servidor ocupado, inténtelo de nuevo",
	http.StatusGatewayTimeout:        "Tiempo de espera agotado",
	http.StatusInternalServerError:   "Error interno del servidor",
}
