// Package middleware - Test verify JWT và resolve tenant context từ claims.
package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brian-aiad/shepherds-table-cloud-sub000/config"
	"github.com/brian-aiad/shepherds-table-cloud-sub000/internal/global"
)

const testJwtSecret = "test-secret"

func signTestToken(t *testing.T, claims *IntakeClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJwtSecret))
	require.NoError(t, err)
	return signed
}

func newTestApp() *fiber.App {
	global.ServerConfig = &config.Configuration{JwtSecret: testJwtSecret}

	app := fiber.New()
	app.Use(AuthMiddleware())
	app.Use(TenantContextMiddleware())
	app.Get("/probe", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userId":       c.Locals("user_id"),
			"orgId":        c.Locals("active_organization_id"),
			"locationId":   c.Locals("active_location_id"),
			"allLocations": c.Locals("scope_all_locations"),
		})
	})
	return app
}

func validClaims() *IntakeClaims {
	return &IntakeClaims{
		UserID:         "user-1",
		OrganizationID: "64f1b2c3d4e5f6a7b8c9d0e1",
		LocationIDs:    []string{"loc-1", "loc-2"},
		Role:           "staff",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/probe", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode, "thiếu token phải trả 401")
}

func TestAuthMiddleware_InvalidSignature(t *testing.T) {
	app := newTestApp()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode, "chữ ký sai phải trả 401")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	app := newTestApp()

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, claims))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode, "token hết hạn phải trả 401")
}

func TestTenantContext_DefaultsToFirstLocation(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, validClaims()))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode, "token hợp lệ phải đi qua được middleware")
}

func TestTenantContext_LocationOutsideToken(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, validClaims()))
	req.Header.Set("X-Active-Location-ID", "loc-99")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode, "địa điểm ngoài phạm vi token phải trả 403")
}

func TestTenantContext_AllWithoutPrivilege(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, validClaims()))
	req.Header.Set("X-Active-Location-ID", "ALL")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode, "chọn ALL khi token không có quyền allLocations phải trả 403")
}

func TestTenantContext_AllLocationsToken(t *testing.T) {
	app := newTestApp()

	claims := validClaims()
	claims.LocationIDs = nil
	claims.AllLocations = true

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, claims))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode, "token org-wide không cần header địa điểm")
}
