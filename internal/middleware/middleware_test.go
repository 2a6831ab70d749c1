package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/library-admin-api/internal/models"
	appErrors "github.com/noah-isme/library-admin-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	return s.claims, s.err
}

type recordingAudit struct {
	logs []*models.AuditLog
	err  error
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/books/:id", handlers...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/books/b1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := newRouter(JWT(&stubValidator{}))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Token abc").Code)
}

func TestJWTPropagatesValidatorError(t *testing.T) {
	r := newRouter(JWT(&stubValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "token expired")}))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer abc").Code)
}

func TestRequireCapability(t *testing.T) {
	admin := &stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}
	rec := serve(newRouter(JWT(admin), RequireCapability(models.CapManageCatalog)), "bearer abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", admin.token)

	student := &stubValidator{claims: &models.JWTClaims{UserID: "u2", Role: models.RoleStudent}}
	rec = serve(newRouter(JWT(student), RequireCapability(models.CapManageCatalog)), "Bearer abc")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(newRouter(RequireCapability(models.CapViewReports)), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuditRecordsSuccessfulMutations(t *testing.T) {
	writer := &recordingAudit{}
	validator := &stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}
	r := newRouter(JWT(validator), Audit(writer, nil, models.AuditActionCreate, "book"))

	rec := serve(r, "Bearer abc")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, writer.logs, 1)
	log := writer.logs[0]
	assert.Equal(t, models.AuditActionCreate, log.Action)
	assert.Equal(t, "book", log.Resource)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "u1", *log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "b1", *log.ResourceID)
	assert.Contains(t, string(log.NewValues), `"method":"POST"`)
}

func TestAuditSkipsFailuresAndSwallowsWriteErrors(t *testing.T) {
	writer := &recordingAudit{err: errors.New("db down")}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/books/:id", Audit(writer, nil, models.AuditActionCreate, "book"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})
	assert.Equal(t, http.StatusBadRequest, serve(r, "").Code)
	assert.Empty(t, writer.logs)

	ok := newRouter(Audit(writer, nil, models.AuditActionCreate, "book"))
	assert.Equal(t, http.StatusOK, serve(ok, "").Code)
	assert.Len(t, writer.logs, 1)
}

func TestResponseMetaCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, ExtractMeta(c))
	SetCacheHit(c, true)
	assert.Equal(t, true, ExtractMeta(c)["cache_hit"])
}
