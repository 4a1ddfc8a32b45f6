package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/domain"
	"tienda-api/internal/service"
	"tienda-api/internal/transport/http/ez"
	"tienda-api/internal/validation"
)

// ImageField multipart 中图片文件的字段名
const ImageField = "imagen"

type Products struct {
	svc   *service.ProductService
	guard gin.HandlerFunc
}

func NewProducts(svc *service.ProductService, guard gin.HandlerFunc) *Products {
	return &Products{svc: svc, guard: guard}
}

func (h *Products) Priority() int { return 20 }

type listProductsIn struct {
	Categoria string `form:"categoria"`
	PrecioMin string `form:"precio_min"`
	PrecioMax string `form:"precio_max"`
	StockMin  string `form:"stock_min"`
	Pagina    string `form:"pagina"`
	Limite    string `form:"limite"`
}

type listProductsOut struct {
	Productos []domain.ProductView `json:"productos"`
	Pagina    int                  `json:"pagina"`
	Limite    int                  `json:"limite"`
}

type productOut struct {
	Mensaje  string          `json:"mensaje"`
	Producto *domain.Product `json:"producto"`
}

func (h *Products) MountAPI(e ez.EZ) {
	g := e.Group("/productos")

	ez.RegisterAction(g, ez.Action[listProductsIn, listProductsOut]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listProductsIn) (listProductsOut, error) {
			f := domain.ProductFilter{
				Category: in.Categoria,
				Page:     pageOf(in.Pagina, in.Limite),
			}
			var (
				bad []string
				err error
			)
			if f.MinPrice, err = optFloat(in.PrecioMin); err != nil {
				bad = append(bad, MsgFilterPrecioMin)
			}
			if f.MaxPrice, err = optFloat(in.PrecioMax); err != nil {
				bad = append(bad, MsgFilterPrecioMax)
			}
			if f.MinStock, err = optInt(in.StockMin); err != nil {
				bad = append(bad, MsgFilterStockMin)
			}
			if len(bad) > 0 {
				return listProductsOut{}, ez.Invalid(bad)
			}
			rows, err := h.svc.List(c.Request.Context(), f)
			if err != nil {
				return listProductsOut{}, mapErr(err)
			}
			return listProductsOut{Productos: rows, Pagina: f.Page.Number, Limite: f.Page.Limit}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[validation.Payload, productOut]{
		Method:     http.MethodPost,
		Path:       "",
		Binder:     ez.BindPayload,
		Status:     http.StatusCreated,
		Middleware: []gin.HandlerFunc{h.guard},
		Handler: func(c *gin.Context, in *validation.Payload) (productOut, error) {
			p, err := h.svc.Create(c.Request.Context(), *in, imageOf(c))
			if err != nil {
				return productOut{}, mapErr(err)
			}
			return productOut{Mensaje: "Producto creado exitosamente", Producto: p}, nil
		},
	})
}

// imageOf 只有 multipart 请求才可能带图片
func imageOf(c *gin.Context) *multipart.FileHeader {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil
	}
	fh, err := c.FormFile(ImageField)
	if err != nil {
		return nil
	}
	return fh
}
