package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/13x54n/thamelbar/internal/application/identity"
	"github.com/13x54n/thamelbar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdentityService struct{ mock.Mock }

func (m *mockIdentityService) RequestCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockIdentityService) VerifyCode(ctx context.Context, req identity.VerifyRequest) (*identity.AuthResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*identity.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIdentityService) Login(ctx context.Context, email, password string) (*identity.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if r, _ := args.Get(0).(*identity.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIdentityService) FederatedLogin(ctx context.Context, req identity.FederatedRequest) (*identity.AuthResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*identity.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIdentityService) CreateHandoffCode(ctx context.Context, req identity.HandoffRequest) (string, string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *mockIdentityService) ExchangeHandoffCode(ctx context.Context, code string) (*identity.AuthResult, error) {
	args := m.Called(ctx, code)
	if r, _ := args.Get(0).(*identity.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIdentityService) ResetPassword(ctx context.Context, req identity.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockIdentityService) Me(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIdentityService) RegisterPushTarget(ctx context.Context, accountID, target string) error {
	return m.Called(ctx, accountID, target).Error(0)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h(rec, req)
	return rec
}

func TestRequestCode_OK(t *testing.T) {
	svc := &mockIdentityService{}
	svc.On("RequestCode", mock.Anything, "a@x.com").Return(nil)
	h := NewIdentityHandler(svc)

	rec := postJSON(t, h.RequestCode, `{"email":"a@x.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Sent    bool   `json:"sent"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Sent)
}

func TestRequestCode_InvalidBody(t *testing.T) {
	h := NewIdentityHandler(&mockIdentityService{})
	rec := postJSON(t, h.RequestCode, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerify_ReturnsAuthEnvelope(t *testing.T) {
	svc := &mockIdentityService{}
	svc.On("VerifyCode", mock.Anything, mock.MatchedBy(func(req identity.VerifyRequest) bool {
		return req.Email == "a@x.com" && req.Code == "123456"
	})).Return(&identity.AuthResult{
		Token:   "token-1",
		Account: &domain.Account{AccountID: "acc1", Email: "a@x.com", Verified: true, Points: 40},
	}, nil)
	h := NewIdentityHandler(svc)

	rec := postJSON(t, h.Verify, `{"email":"a@x.com","code":"123456"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "token-1", resp.Token)
	require.NotNil(t, resp.Account)
	assert.Equal(t, "acc1", resp.Account.ID)
	assert.Equal(t, int64(40), resp.Account.Points)
	// Sensitive fields never serialize.
	assert.NotContains(t, rec.Body.String(), "password_hash")
	assert.NotContains(t, rec.Body.String(), "push_target")
}

func TestVerify_MissingCode_FailsValidation(t *testing.T) {
	svc := &mockIdentityService{}
	h := NewIdentityHandler(svc)

	rec := postJSON(t, h.Verify, `{"email":"a@x.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything)
}

func TestLogin_UnauthorizedMapsTo401(t *testing.T) {
	svc := &mockIdentityService{}
	svc.On("Login", mock.Anything, "a@x.com", "wrong").
		Return(nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized))
	h := NewIdentityHandler(svc)

	rec := postJSON(t, h.Login, `{"email":"a@x.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_UnknownErrorMapsTo500Generic(t *testing.T) {
	svc := &mockIdentityService{}
	svc.On("Login", mock.Anything, "a@x.com", "pw").
		Return(nil, fmt.Errorf("dynamodb: connection reset"))
	h := NewIdentityHandler(svc)

	rec := postJSON(t, h.Login, `{"email":"a@x.com","password":"pw"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal details stay server-side.
	assert.NotContains(t, rec.Body.String(), "dynamodb")
}

func TestMobileCode_ReturnsCodeAndRedirect(t *testing.T) {
	svc := &mockIdentityService{}
	svc.On("CreateHandoffCode", mock.Anything, mock.Anything).
		Return("deadbeefdeadbeefdeadbeefdeadbeef", "myapp://", nil)
	h := NewIdentityHandler(svc)

	rec := postJSON(t, h.MobileCode, `{"subject_id":"sub1","redirect_uri":"myapp://"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Code        string `json:"code"`
		RedirectURI string `json:"redirect_uri"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deadbeefdeadbeefdeadbeefdeadbeef", resp.Code)
	assert.Equal(t, "myapp://", resp.RedirectURI)
}

func TestMobileExchange_BurnedCodeMapsTo401(t *testing.T) {
	svc := &mockIdentityService{}
	svc.On("ExchangeHandoffCode", mock.Anything, "burned").
		Return(nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized))
	h := NewIdentityHandler(svc)

	rec := postJSON(t, h.MobileExchange, `{"code":"burned"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
