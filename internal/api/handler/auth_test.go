package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
	"github.com/qs3c/leaderfirst_server/internal/testutil"
)

func individualSignup(email string) dto.SignupRequest {
	return dto.SignupRequest{
		Role:      "individual",
		Email:     email,
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Location:  "London",
		Phone:     "+44 20 0000",
	}
}

func TestAuthHandler_RequestOTP_Success(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()
	router := f.router()

	w := performRequest(router, "POST", "/auth/request-otp", dto.RequestOTPRequest{Email: "New@Example.com"})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var data map[string]interface{}
	decodeData(t, resp, &data)
	assert.Equal(t, "new@example.com", data["email"])
	assert.NotEmpty(t, data["expires_at"])
	assert.NotContains(t, data, "code")

	length, err := f.mailQueue.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	msg, err := f.mailQueue.Pop(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "new@example.com", msg.To)
	assert.Contains(t, msg.HTML, f.pendingCode(t, "new@example.com"))
}

func TestAuthHandler_RequestOTP_InvalidEmail(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()

	w := performRequest(f.router(), "POST", "/auth/request-otp", map[string]string{"email": "not-an-email"})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_RequestOTP_AlreadyRegistered(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()
	testutil.TestUser(t, f.db, testutil.WithEmail("taken@example.com"))

	w := performRequest(f.router(), "POST", "/auth/request-otp", dto.RequestOTPRequest{Email: "taken@example.com"})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeDuplicateAction, resp.Code)
	assert.Equal(t, "email is already registered", resp.Message)
}

func TestAuthHandler_VerifyOTP(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()
	router := f.router()

	w := performRequest(router, "POST", "/auth/request-otp", dto.RequestOTPRequest{Email: "otp@example.com"})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)
	code := f.pendingCode(t, "otp@example.com")

	t.Run("mismatch keeps challenge", func(t *testing.T) {
		wrong := "100000"
		if code == wrong {
			wrong = "100001"
		}
		w := performRequest(router, "POST", "/auth/verify-otp", dto.VerifyOTPRequest{Email: "otp@example.com", OTP: wrong})
		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeParamError, resp.Code)
		assert.Equal(t, "incorrect verification code", resp.Message)
	})

	t.Run("correct code", func(t *testing.T) {
		w := performRequest(router, "POST", "/auth/verify-otp", dto.VerifyOTPRequest{Email: "otp@example.com", OTP: code})
		resp := parseResponse(t, w)
		require.Equal(t, response.CodeSuccess, resp.Code)

		var data dto.VerifyOTPResponse
		decodeData(t, resp, &data)
		assert.True(t, data.EligibleToSignup)
		assert.Equal(t, "otp@example.com", data.Email)
	})

	t.Run("replay rejected", func(t *testing.T) {
		w := performRequest(router, "POST", "/auth/verify-otp", dto.VerifyOTPRequest{Email: "otp@example.com", OTP: code})
		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeResourceNotFound, resp.Code)
	})
}

func TestAuthHandler_VerifyOTP_NonNumeric(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()

	w := performRequest(f.router(), "POST", "/auth/verify-otp", map[string]string{"email": "a@example.com", "otp": "abc"})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_SignupLoginMe(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()
	router := f.router()

	w := performRequest(router, "POST", "/auth/signup", individualSignup("ada@example.com"))
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	var signup dto.LoginResponse
	decodeData(t, resp, &signup)
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "individual", signup.User.Role)

	w = performRequest(router, "POST", "/auth/login", dto.LoginRequest{Email: "ada@example.com", Password: "password123"})
	resp = parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var login dto.LoginResponse
	decodeData(t, resp, &login)
	assert.Equal(t, signup.User.ID, login.User.ID)

	w = performAuthRequest(router, "GET", "/auth/me", nil, login.Token)
	resp = parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var me map[string]interface{}
	decodeData(t, resp, &me)
	assert.Equal(t, "ada@example.com", me["email"])
	assert.Equal(t, "none", me["plan_status"])
	profile, ok := me["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ada", profile["first_name"])
}

func TestAuthHandler_Signup_Errors(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()
	router := f.router()
	testutil.TestUser(t, f.db, testutil.WithEmail("dup@example.com"))

	missing := individualSignup("missing@example.com")
	missing.Phone = ""

	badRole := individualSignup("role@example.com")
	badRole.Role = "wizard"

	tests := []struct {
		name     string
		req      dto.SignupRequest
		wantCode int
	}{
		{name: "missing profile field", req: missing, wantCode: response.CodeParamError},
		{name: "unknown role", req: badRole, wantCode: response.CodeParamError},
		{name: "duplicate email", req: individualSignup("dup@example.com"), wantCode: response.CodeDuplicateAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/auth/signup", tt.req)
			resp := parseResponse(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()
	user := testutil.TestUser(t, f.db)

	w := performRequest(f.router(), "POST", "/auth/login", dto.LoginRequest{Email: user.Email, Password: "wrong-password"})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeAuthFailed, resp.Code)
	assert.Equal(t, "invalid email or password", resp.Message)
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()

	w := performRequest(f.router(), "GET", "/auth/me", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}
