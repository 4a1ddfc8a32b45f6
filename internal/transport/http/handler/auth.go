package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/service"
	"tienda-api/internal/transport/http/ez"
	"tienda-api/internal/validation"
)

type Auth struct {
	svc *service.AuthService
}

func NewAuth(svc *service.AuthService) *Auth { return &Auth{svc: svc} }

func (h *Auth) Priority() int { return 0 }

type loginUser struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
}

type loginOut struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

func (h *Auth) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[validation.Payload, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindPayload,
		Handler: func(c *gin.Context, in *validation.Payload) (loginOut, error) {
			email, okEmail := validation.String((*in)["email"])
			password, okPass := validation.String((*in)["password"])
			if !okEmail || !okPass {
				return loginOut{}, ez.BadRequest(MsgLoginMissing)
			}
			res, err := h.svc.Login(c.Request.Context(), email, password)
			if err != nil {
				return loginOut{}, mapErr(err)
			}
			return loginOut{
				Message: "Login exitoso",
				Token:   res.Token,
				User:    loginUser{ID: res.User.ID, Nombre: res.User.Name, Email: res.User.Email},
			}, nil
		},
	})
}
