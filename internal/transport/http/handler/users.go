package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/domain"
	"tienda-api/internal/service"
	"tienda-api/internal/transport/http/ez"
	"tienda-api/internal/validation"
)

type Users struct {
	svc *service.UserService
}

func NewUsers(svc *service.UserService) *Users { return &Users{svc: svc} }

func (h *Users) Priority() int { return 10 }

type listUsersIn struct {
	Pagina string  `form:"pagina"`
	Limite string  `form:"limite"`
	Activo *string `form:"activo"`
}

type listUsersOut struct {
	Usuarios []domain.User `json:"usuarios"`
	Pagina   int           `json:"pagina"`
	Limite   int           `json:"limite"`
}

type userOut struct {
	Mensaje string       `json:"mensaje"`
	Usuario *domain.User `json:"usuario,omitempty"`
}

func (h *Users) MountAPI(e ez.EZ) {
	g := e.Group("/usuarios")

	ez.RegisterAction(g, ez.Action[listUsersIn, listUsersOut]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listUsersIn) (listUsersOut, error) {
			f := domain.UserFilter{Page: pageOf(in.Pagina, in.Limite)}
			if in.Activo != nil {
				active := *in.Activo == "true"
				f.Active = &active
			}
			users, err := h.svc.List(c.Request.Context(), f)
			if err != nil {
				return listUsersOut{}, mapErr(err)
			}
			if users == nil {
				users = []domain.User{}
			}
			return listUsersOut{Usuarios: users, Pagina: f.Page.Number, Limite: f.Page.Limit}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			id, err := idParam(c.Param("id"))
			if err != nil {
				return nil, err
			}
			u, err := h.svc.Get(c.Request.Context(), id)
			return u, mapErr(err)
		},
	})

	ez.RegisterAction(g, ez.Action[validation.Payload, userOut]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindPayload,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *validation.Payload) (userOut, error) {
			u, err := h.svc.Create(c.Request.Context(), *in)
			if err != nil {
				return userOut{}, mapErr(err)
			}
			return userOut{Mensaje: "Usuario creado exitosamente", Usuario: u}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[validation.Payload, userOut]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindPayload,
		Handler: func(c *gin.Context, in *validation.Payload) (userOut, error) {
			id, err := idParam(c.Param("id"))
			if err != nil {
				return userOut{}, err
			}
			u, err := h.svc.Update(c.Request.Context(), id, *in)
			if err != nil {
				return userOut{}, mapErr(err)
			}
			return userOut{Mensaje: "Usuario actualizado exitosamente", Usuario: u}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, userOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (userOut, error) {
			id, err := idParam(c.Param("id"))
			if err != nil {
				return userOut{}, err
			}
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return userOut{}, mapErr(err)
			}
			return userOut{Mensaje: "Usuario eliminado exitosamente"}, nil
		},
	})
}
