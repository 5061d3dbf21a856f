package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/outisoft/ambar-pdv/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRequestID_Generado(t *testing.T) {
	r := newEngine(middleware.RequestID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_PropagaElEntrante(t *testing.T) {
	r := newEngine(middleware.RequestID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-abc-123", w.Header().Get("X-Request-ID"))
}

func TestRateLimiter_CortaSobreElLimite(t *testing.T) {
	r := newEngine(middleware.RateLimiter(3, time.Minute))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d under the limit", i+1)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestCORS_Preflight(t *testing.T) {
	r := newEngine(middleware.CORS("https://pdv.example.com"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://pdv.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_OrigenPorDefecto(t *testing.T) {
	r := newEngine(middleware.CORS(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

const testSecret = "middleware-test-secret"

func firmarToken(t *testing.T, claims middleware.JWTClaims) string {
	t.Helper()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedEngine(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/", middleware.JWTAuth(testSecret), middleware.RequireRole(roles...))
	grp.GET("/recurso", func(c *gin.Context) {
		actor, ok := middleware.GetActor(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"usuario_id": actor.UsuarioID.String(), "rol": actor.Rol})
	})
	return r
}

func TestJWTAuth_SinToken(t *testing.T) {
	r := protectedEngine("cajero")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recurso", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_TokenValido(t *testing.T) {
	r := protectedEngine("cajero", "supervisor")
	sucursalID := uuid.NewString()
	token := firmarToken(t, middleware.JWTClaims{
		UserID:     uuid.NewString(),
		Username:   "cajero1",
		Rol:        "cajero",
		EmpresaID:  uuid.NewString(),
		SucursalID: &sucursalID,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recurso", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_FirmaIncorrecta(t *testing.T) {
	r := protectedEngine("cajero")
	claims := middleware.JWTClaims{
		UserID:    uuid.NewString(),
		Rol:       "cajero",
		EmpresaID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("otro-secreto"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recurso", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_RolInsuficiente(t *testing.T) {
	r := protectedEngine("administrador")
	token := firmarToken(t, middleware.JWTClaims{
		UserID:    uuid.NewString(),
		Rol:       "cajero",
		EmpresaID: uuid.NewString(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recurso", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// A route that reaches GetActor without going through JWTAuth (a wiring
// mistake) must answer 401, not panic on the missing claims key.
func TestGetActor_SinJWTAuth(t *testing.T) {
	r := newEngine()
	r.GET("/descuidado", func(c *gin.Context) {
		if _, ok := middleware.GetActor(c); !ok {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/descuidado", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_SinJWTAuth(t *testing.T) {
	r := newEngine(middleware.RequireRole("administrador"))
	r.GET("/recurso", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recurso", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
