package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tienda-api/internal/core/auth"
	"tienda-api/internal/core/database"
	"tienda-api/internal/core/storage"
	"tienda-api/internal/domain"
	"tienda-api/internal/repo"
	"tienda-api/internal/service"
	"tienda-api/internal/transport/http/handler"
	mdw "tienda-api/internal/transport/http/middleware"
	"tienda-api/internal/transport/http/router"
)

func init() { gin.SetMode(gin.TestMode) }

const testSecret = "test-secret"

var dbSeq atomic.Int64

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	store  *database.Store
	jwter  *auth.JWTer
	cats   *repo.CategoryRepo
}

func newTestAPI(t *testing.T, dev bool) *testAPI {
	t.Helper()
	dsn := fmt.Sprintf("file:api_%d?mode=memory&cache=shared&_fk=1", dbSeq.Add(1))
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := database.NewStore(db)
	t.Cleanup(func() { _ = store.Close() })
	if err := store.DB(context.Background()).AutoMigrate(domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	uploadDir := filepath.Join(t.TempDir(), "uploads")
	images, err := storage.NewLocal(uploadDir, "/uploads", 1<<20)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	jwter := &auth.JWTer{Secret: []byte(testSecret), Issuer: "tienda-api", TTL: time.Hour}
	userRepo := repo.NewUserRepo(store)
	guard := mdw.AuthJWT(jwter)
	engine := router.NewAPIEngine(router.Deps{
		Dev: dev,
		DB:  store,
		Modules: router.NewRegistry(
			handler.NewUsers(service.NewUserService(userRepo, bcrypt.MinCost)),
			handler.NewProducts(service.NewProductService(repo.NewProductRepo(store), images), guard),
			handler.NewStats(service.NewStatsService(repo.NewStatsRepo(store)), guard),
			handler.NewAuth(service.NewAuthService(userRepo, jwter)),
		),
		UploadDir:    uploadDir,
		UploadPrefix: "/uploads",
	})
	return &testAPI{t: t, engine: engine, store: store, jwter: jwter, cats: repo.NewCategoryRepo(store)}
}

func (a *testAPI) do(method, target string, body any, header http.Header) (int, map[string]any) {
	a.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			a.t.Fatalf("decode %s %s: %v (%s)", method, target, err, w.Body.String())
		}
	}
	return w.Code, out
}

func (a *testAPI) bearer() http.Header {
	a.t.Helper()
	tok, err := a.jwter.Issue(auth.Identity{ID: 1, Email: "admin@x.com", Name: "Admin"})
	if err != nil {
		a.t.Fatalf("issue: %v", err)
	}
	return http.Header{"Authorization": {"Bearer " + tok}}
}

func (a *testAPI) createUser(nombre, email string) int64 {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/usuarios", map[string]any{"nombre": nombre, "email": email, "password": "secret1"}, nil)
	if code != http.StatusCreated {
		a.t.Fatalf("create user %s: %d %v", email, code, body)
	}
	return int64(body["usuario"].(map[string]any)["id"].(float64))
}

func details(body map[string]any) []string {
	raw, _ := body["detalles"].([]any)
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		out = append(out, d.(string))
	}
	return out
}

func TestUsers_CreateThenGet(t *testing.T) {
	api := newTestAPI(t, false)

	code, body := api.do(http.MethodPost, "/usuarios", map[string]any{"nombre": "Ana", "email": "ana@x.com", "password": "secret1"}, nil)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %v", code, body)
	}
	if body["mensaje"] != "Usuario creado exitosamente" {
		t.Errorf("unexpected mensaje %v", body["mensaje"])
	}
	usuario := body["usuario"].(map[string]any)
	if usuario["id"] == nil || usuario["activo"] != true {
		t.Fatalf("unexpected usuario %v", usuario)
	}
	if _, ok := usuario["password"]; ok {
		t.Error("password leaked in create response")
	}

	id := int64(usuario["id"].(float64))
	code, got := api.do(http.MethodGet, fmt.Sprintf("/usuarios/%d", id), nil, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", code, got)
	}
	if got["email"] != "ana@x.com" || got["nombre"] != "Ana" {
		t.Errorf("unexpected user %v", got)
	}
	if _, ok := got["password"]; ok {
		t.Error("password leaked in get response")
	}
	if got["fecha_registro"] == nil {
		t.Error("expected fecha_registro")
	}
}

func TestUsers_GetMissing(t *testing.T) {
	api := newTestAPI(t, false)
	for _, target := range []string{"/usuarios/999", "/usuarios/abc"} {
		code, body := api.do(http.MethodGet, target, nil, nil)
		if code != http.StatusNotFound || body["error"] != handler.MsgUserNotFound {
			t.Errorf("%s: expected 404 %q, got %d %v", target, handler.MsgUserNotFound, code, body)
		}
	}
}

func TestUsers_CreateValidation(t *testing.T) {
	api := newTestAPI(t, false)
	code, body := api.do(http.MethodPost, "/usuarios", map[string]any{"nombre": "A", "email": "no-at", "edad": 200}, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if body["error"] != "Datos inválidos" {
		t.Errorf("unexpected error %v", body["error"])
	}
	if got := details(body); len(got) != 4 {
		t.Errorf("expected 4 details, got %v", got)
	}
}

func TestUsers_MalformedJSON(t *testing.T) {
	api := newTestAPI(t, false)
	code, body := api.do(http.MethodPost, "/usuarios", []byte(`{"nombre":`), http.Header{"Content-Type": {"application/json"}})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %v", code, body)
	}
}

func TestUsers_DuplicateEmail(t *testing.T) {
	api := newTestAPI(t, false)
	api.createUser("Ana", "ana@x.com")

	code, body := api.do(http.MethodPost, "/usuarios", map[string]any{"nombre": "Ana Dos", "email": "ana@x.com", "password": "secret1"}, nil)
	if code != http.StatusConflict || body["error"] != handler.MsgEmailTaken {
		t.Fatalf("expected 409 %q, got %d %v", handler.MsgEmailTaken, code, body)
	}
	api.createUser("Ana Dos", "ana2@x.com")
}

func TestUsers_ListPaginationAndFilter(t *testing.T) {
	api := newTestAPI(t, false)
	ids := []int64{
		api.createUser("Uno", "uno@x.com"),
		api.createUser("Dos", "dos@x.com"),
		api.createUser("Tres", "tres@x.com"),
	}
	if _, err := api.store.Execute(context.Background(), "UPDATE usuarios SET activo = ? WHERE id = ?", false, ids[0]); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	code, body := api.do(http.MethodGet, "/usuarios?pagina=2&limite=1", nil, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["pagina"] != 2.0 || body["limite"] != 1.0 {
		t.Errorf("unexpected paging %v/%v", body["pagina"], body["limite"])
	}
	list := body["usuarios"].([]any)
	if len(list) != 1 || int64(list[0].(map[string]any)["id"].(float64)) != ids[1] {
		t.Errorf("unexpected page %v", list)
	}

	_, body = api.do(http.MethodGet, "/usuarios", nil, nil)
	if body["pagina"] != 1.0 || body["limite"] != 10.0 || len(body["usuarios"].([]any)) != 3 {
		t.Errorf("unexpected default listing %v", body)
	}

	_, body = api.do(http.MethodGet, "/usuarios?activo=true", nil, nil)
	if n := len(body["usuarios"].([]any)); n != 2 {
		t.Errorf("expected 2 active users, got %d", n)
	}
	_, body = api.do(http.MethodGet, "/usuarios?activo=no", nil, nil)
	if n := len(body["usuarios"].([]any)); n != 1 {
		t.Errorf("expected 1 inactive user, got %d", n)
	}

	_, body = api.do(http.MethodGet, "/usuarios?pagina=0&limite=1000", nil, nil)
	if body["pagina"] != 1.0 || body["limite"] != 100.0 {
		t.Errorf("expected clamped paging, got %v/%v", body["pagina"], body["limite"])
	}

	_, body = api.do(http.MethodGet, "/usuarios?pagina=9", nil, nil)
	if list, ok := body["usuarios"].([]any); !ok || len(list) != 0 {
		t.Errorf("expected empty array past the end, got %v", body["usuarios"])
	}
}

func TestUsers_UpdateAndDelete(t *testing.T) {
	api := newTestAPI(t, false)
	id := api.createUser("Ana", "ana@x.com")
	target := fmt.Sprintf("/usuarios/%d", id)

	code, body := api.do(http.MethodPut, target, map[string]any{"nombre": "Ana María", "email": "ana@x.com", "edad": 31}, nil)
	if code != http.StatusOK || body["mensaje"] != "Usuario actualizado exitosamente" {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	usuario := body["usuario"].(map[string]any)
	if usuario["nombre"] != "Ana María" || usuario["edad"] != 31.0 || usuario["activo"] != true {
		t.Errorf("unexpected usuario %v", usuario)
	}

	// 密码不受更新影响
	code, _ = api.do(http.MethodPost, "/auth/login", map[string]any{"email": "ana@x.com", "password": "secret1"}, nil)
	if code != http.StatusOK {
		t.Errorf("expected login to still work after update, got %d", code)
	}

	code, body = api.do(http.MethodPut, "/usuarios/999", map[string]any{"nombre": "Nadie", "email": "nadie@x.com"}, nil)
	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d %v", code, body)
	}

	api.createUser("Bea", "bea@x.com")
	code, _ = api.do(http.MethodPut, target, map[string]any{"nombre": "Ana", "email": "bea@x.com"}, nil)
	if code != http.StatusConflict {
		t.Errorf("expected 409 on duplicate email update, got %d", code)
	}

	code, body = api.do(http.MethodDelete, target, nil, nil)
	if code != http.StatusOK || body["mensaje"] != "Usuario eliminado exitosamente" {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	for i := 0; i < 2; i++ {
		code, _ = api.do(http.MethodDelete, target, nil, nil)
		if code != http.StatusNotFound {
			t.Fatalf("expected 404 on repeated delete, got %d", code)
		}
	}
	if code, _ := api.do(http.MethodDelete, "/usuarios/999", nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", code)
	}
}

func TestAuth_Login(t *testing.T) {
	api := newTestAPI(t, false)
	id := api.createUser("Ana", "ana@x.com")

	code, body := api.do(http.MethodPost, "/auth/login", map[string]any{"email": "ana@x.com", "password": "secret1"}, nil)
	if code != http.StatusOK || body["message"] != "Login exitoso" {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	user := body["user"].(map[string]any)
	if int64(user["id"].(float64)) != id || user["nombre"] != "Ana" || user["email"] != "ana@x.com" {
		t.Errorf("unexpected user %v", user)
	}
	claims, err := api.jwter.Parse(body["token"].(string))
	if err != nil || claims.ID != id {
		t.Fatalf("token does not identify the user: %v %+v", err, claims)
	}

	code, body = api.do(http.MethodPost, "/auth/login", map[string]any{"email": "ana@x.com"}, nil)
	if code != http.StatusBadRequest || body["error"] != handler.MsgLoginMissing {
		t.Errorf("expected 400 %q, got %d %v", handler.MsgLoginMissing, code, body)
	}
	for _, creds := range []map[string]any{
		{"email": "ana@x.com", "password": "wrong12"},
		{"email": "nadie@x.com", "password": "secret1"},
	} {
		code, body = api.do(http.MethodPost, "/auth/login", creds, nil)
		if code != http.StatusUnauthorized || body["error"] != handler.MsgInvalidCredentials {
			t.Errorf("%v: expected 401, got %d %v", creds, code, body)
		}
	}
}

func TestProducts_CreateRequiresToken(t *testing.T) {
	api := newTestAPI(t, false)
	payload := map[string]any{"nombre": "Teclado", "precio": 25.5}

	code, body := api.do(http.MethodPost, "/productos", payload, nil)
	if code != http.StatusForbidden || body["error"] != mdw.MsgTokenMissing {
		t.Fatalf("expected 403, got %d %v", code, body)
	}

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		ID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tienda-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	code, body = api.do(http.MethodPost, "/productos", payload, http.Header{"Authorization": {"Bearer " + expired}})
	if code != http.StatusUnauthorized || body["error"] != mdw.MsgTokenInvalid {
		t.Fatalf("expected 401, got %d %v", code, body)
	}

	code, _ = api.do(http.MethodPost, "/productos", payload, http.Header{"Authorization": {"Token abc"}})
	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for malformed header, got %d", code)
	}
}

func TestProducts_CreateAndList(t *testing.T) {
	api := newTestAPI(t, false)
	ctx := context.Background()
	electronica, _, err := api.cats.EnsureByName(ctx, "Electrónica")
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	hogar, _, err := api.cats.EnsureByName(ctx, "Hogar")
	if err != nil {
		t.Fatalf("category: %v", err)
	}

	for _, p := range []map[string]any{
		{"nombre": "Teclado", "precio": 25.5, "stock": 3, "categoria_id": electronica.ID},
		{"nombre": "Monitor", "precio": "150.00", "stock": 10, "categoria_id": electronica.ID, "descripcion": "27 pulgadas"},
		{"nombre": "Lámpara", "precio": 30, "categoria_id": hogar.ID},
	} {
		code, body := api.do(http.MethodPost, "/productos", p, api.bearer())
		if code != http.StatusCreated || body["mensaje"] != "Producto creado exitosamente" {
			t.Fatalf("create %v: %d %v", p["nombre"], code, body)
		}
		producto := body["producto"].(map[string]any)
		if producto["id"] == nil || producto["activo"] != true {
			t.Errorf("unexpected producto %v", producto)
		}
	}

	q := url.Values{"categoria": {"Electrónica"}, "precio_min": {"100"}}
	code, body := api.do(http.MethodGet, "/productos?"+q.Encode(), nil, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	list := body["productos"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %v", list)
	}
	row := list[0].(map[string]any)
	if row["nombre"] != "Monitor" || row["categoria"] != "Electrónica" || row["descripcion"] != "27 pulgadas" {
		t.Errorf("unexpected row %v", row)
	}

	_, body = api.do(http.MethodGet, "/productos?stock_min=1&limite=1&pagina=2", nil, nil)
	list = body["productos"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["nombre"] != "Teclado" {
		t.Errorf("unexpected filtered page %v", list)
	}
	if body["pagina"] != 2.0 || body["limite"] != 1.0 {
		t.Errorf("unexpected paging %v/%v", body["pagina"], body["limite"])
	}

	code, body = api.do(http.MethodGet, "/productos?precio_min=barato&stock_min=1.5", nil, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric filters, got %d", code)
	}
	if got := details(body); len(got) != 2 || got[0] != handler.MsgFilterPrecioMin || got[1] != handler.MsgFilterStockMin {
		t.Errorf("unexpected details %v", got)
	}
}

func TestProducts_PriceBandOrderedByName(t *testing.T) {
	api := newTestAPI(t, false)
	ctx := context.Background()
	electronica, _, err := api.cats.EnsureByName(ctx, "Electrónica")
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	hogar, _, err := api.cats.EnsureByName(ctx, "Hogar")
	if err != nil {
		t.Fatalf("category: %v", err)
	}

	for _, p := range []map[string]any{
		{"nombre": "Ratón", "precio": 15, "categoria_id": electronica.ID},
		{"nombre": "Cable", "precio": 5, "categoria_id": electronica.ID},
		{"nombre": "Auriculares", "precio": 80, "categoria_id": electronica.ID},
		{"nombre": "Monitor", "precio": 150, "categoria_id": electronica.ID},
		{"nombre": "Altavoz", "precio": 100, "categoria_id": electronica.ID},
		{"nombre": "Lámpara", "precio": 50, "categoria_id": hogar.ID},
		{"nombre": "Bolígrafo", "precio": 2},
	} {
		if code, body := api.do(http.MethodPost, "/productos", p, api.bearer()); code != http.StatusCreated {
			t.Fatalf("create %v: %d %v", p["nombre"], code, body)
		}
	}

	names := func(body map[string]any) []string {
		var out []string
		for _, row := range body["productos"].([]any) {
			out = append(out, row.(map[string]any)["nombre"].(string))
		}
		return out
	}

	q := url.Values{"categoria": {"Electrónica"}, "precio_min": {"10"}, "precio_max": {"100"}}
	code, body := api.do(http.MethodGet, "/productos?"+q.Encode(), nil, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	if got := strings.Join(names(body), ","); got != "Altavoz,Auriculares,Ratón" {
		t.Errorf("unexpected band result %q", got)
	}

	// 空值等同于未传
	code, body = api.do(http.MethodGet, "/productos?precio_max=&precio_min=&stock_min=", nil, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	if n := len(names(body)); n != 7 {
		t.Errorf("expected all 7 products with empty filters, got %d", n)
	}
}

func TestFractionalNumbersTruncate(t *testing.T) {
	api := newTestAPI(t, false)

	code, body := api.do(http.MethodPost, "/usuarios", []byte(`{"nombre":"Ana","email":"ana@x.com","password":"secret1","edad":30.7}`), nil)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %v", code, body)
	}
	if edad := body["usuario"].(map[string]any)["edad"]; edad != 30.0 {
		t.Errorf("expected edad 30, got %v", edad)
	}

	code, body = api.do(http.MethodPost, "/productos", []byte(`{"nombre":"Teclado","precio":10,"stock":5.5}`), api.bearer())
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %v", code, body)
	}
	if stock := body["producto"].(map[string]any)["stock"]; stock != 5.0 {
		t.Errorf("expected stock 5, got %v", stock)
	}

	fields := map[string]string{"nombre": "Silla", "precio": "20", "stock": "2.9"}
	form, contentType := multipartProduct(t, fields, nil)
	req := httptest.NewRequest(http.MethodPost, "/productos", form)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", api.bearer().Get("Authorization"))
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"stock":2`) {
		t.Errorf("expected multipart stock 2, got %d %s", w.Code, w.Body.String())
	}
}

func TestProducts_CreateValidation(t *testing.T) {
	api := newTestAPI(t, false)

	code, body := api.do(http.MethodPost, "/productos", map[string]any{"precio": -5, "stock": -1}, api.bearer())
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if got := details(body); len(got) != 3 {
		t.Errorf("expected 3 details, got %v", got)
	}

	code, body = api.do(http.MethodPost, "/productos", map[string]any{"nombre": "X", "precio": 1, "categoria_id": 999}, api.bearer())
	if code != http.StatusBadRequest || body["error"] != handler.MsgUnknownCategory {
		t.Errorf("expected 400 %q, got %d %v", handler.MsgUnknownCategory, code, body)
	}
}

func multipartProduct(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile(handler.ImageField, "foto.png")
		if err != nil {
			t.Fatalf("file: %v", err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestProducts_MultipartWithImage(t *testing.T) {
	api := newTestAPI(t, false)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("png: %v", err)
	}
	body, contentType := multipartProduct(t, map[string]string{"nombre": "Cuadro", "precio": "45.90", "stock": "2"}, img.Bytes())
	req := httptest.NewRequest(http.MethodPost, "/productos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", api.bearer().Get("Authorization"))
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}

	var out struct {
		Producto struct {
			ImageURL string `json:"imagen_url"`
			Stock    int    `json:"stock"`
		} `json:"producto"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(out.Producto.ImageURL, "/uploads/") || out.Producto.Stock != 2 {
		t.Fatalf("unexpected producto %+v", out.Producto)
	}

	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, out.Producto.ImageURL, nil))
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), img.Bytes()) {
		t.Errorf("expected stored image to be served, got %d", w.Code)
	}

	body, contentType = multipartProduct(t, map[string]string{"nombre": "Malo", "precio": "1"}, []byte("not an image at all"))
	req = httptest.NewRequest(http.MethodPost, "/productos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", api.bearer().Get("Authorization"))
	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-image upload, got %d", w.Code)
	}
}

func TestStats(t *testing.T) {
	api := newTestAPI(t, false)
	if code, _ := api.do(http.MethodGet, "/estadisticas", nil, nil); code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", code)
	}

	api.createUser("Ana", "ana@x.com")
	for _, p := range []map[string]any{
		{"nombre": "A", "precio": 10, "stock": 4},
		{"nombre": "B", "precio": 20, "stock": 6},
	} {
		if code, body := api.do(http.MethodPost, "/productos", p, api.bearer()); code != http.StatusCreated {
			t.Fatalf("create product: %d %v", code, body)
		}
	}

	code, body := api.do(http.MethodGet, "/estadisticas", nil, api.bearer())
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	usuarios := body["usuarios"].(map[string]any)
	productos := body["productos"].(map[string]any)
	ventas := body["ventas"].(map[string]any)
	if usuarios["total"] != 1.0 || productos["total"] != 2.0 || productos["stock_total"] != 10.0 {
		t.Errorf("unexpected counts %v %v", usuarios, productos)
	}
	if productos["precio_promedio"] != "15" {
		t.Errorf("unexpected average %v", productos["precio_promedio"])
	}
	if ventas["pedidos_mes"] != 0.0 || ventas["ingresos_mes"] != "0" {
		t.Errorf("unexpected sales %v", ventas)
	}
}

func TestNoRouteAndOps(t *testing.T) {
	api := newTestAPI(t, false)

	code, body := api.do(http.MethodGet, "/no/existe?x=1", nil, nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body["error"] != "Ruta no encontrada" || body["metodo"] != "GET" || body["ruta"] != "/no/existe?x=1" {
		t.Errorf("unexpected body %v", body)
	}

	if code, body := api.do(http.MethodGet, "/health", nil, nil); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health: %d %v", code, body)
	}
	if code, _ := api.do(http.MethodGet, "/ready", nil, nil); code != http.StatusOK {
		t.Errorf("ready: %d", code)
	}

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "tienda_http_requests_total") {
		t.Errorf("metrics endpoint missing request counter")
	}

	if err := api.store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if code, _ := api.do(http.MethodGet, "/ready", nil, nil); code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 once the pool is closed, got %d", code)
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	for _, dev := range []bool{false, true} {
		api := newTestAPI(t, dev)
		if _, err := api.store.Execute(context.Background(), "DROP TABLE usuarios"); err != nil {
			t.Fatalf("drop: %v", err)
		}
		code, body := api.do(http.MethodGet, "/usuarios", nil, nil)
		if code != http.StatusInternalServerError || body["error"] != "Error interno del servidor" {
			t.Fatalf("expected generic 500, got %d %v", code, body)
		}
		stack, _ := body["stack"].(string)
		if dev != (stack != "") {
			t.Errorf("dev=%v but stack=%q", dev, stack)
		}
	}
}
