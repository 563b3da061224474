package controller

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"cardionote-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeAssistService struct {
	result *service.ProxyResult
	err    error
}

func (f *fakeAssistService) Chat(ctx context.Context, body []byte) (*service.ProxyResult, error) {
	return f.result, f.err
}

func (f *fakeAssistService) Interpret(ctx context.Context, body []byte) (*service.ProxyResult, error) {
	return f.result, f.err
}

func (f *fakeAssistService) Search(ctx context.Context, body []byte) (*service.ProxyResult, error) {
	return f.result, f.err
}

func (f *fakeAssistService) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	return "", f.err
}

func (f *fakeAssistService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", f.err
}

func newAssistApp(t *testing.T, svc service.IAssistService) (*fiber.App, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	app := fiber.New()
	NewAssistController(svc).RegisterRoutes(app.Group("/api"))
	return app, "Bearer " + signed
}

func TestAssistProxyReturnsProviderBodyVerbatim(t *testing.T) {
	app, auth := newAssistApp(t, &fakeAssistService{
		result: &service.ProxyResult{Status: 429, Body: []byte(`{"error":{"code":429}}`)},
	})

	req := httptest.NewRequest("POST", "/api/assist/v1/chat", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, 429, resp.StatusCode)
	require.JSONEq(t, `{"error":{"code":429}}`, string(body))
}

func TestAssistProxyTransportFailureEnvelope(t *testing.T) {
	app, auth := newAssistApp(t, &fakeAssistService{err: errors.New("connection refused")})

	req := httptest.NewRequest("POST", "/api/assist/v1/search", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.JSONEq(t,
		`{"success":false,"code":500,"error":"provider request failed","details":"connection refused"}`,
		string(body))
}
