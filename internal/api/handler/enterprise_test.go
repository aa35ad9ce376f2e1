package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/model/dto"
	"github.com/qs3c/leaderfirst_server/internal/pkg/response"
)

func TestEnterpriseHandler_Create(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()

	w := performRequest(f.router(), "POST", "/enterprise/inquiries", dto.EnterpriseInquiryRequest{
		CompanyName:       "Acme",
		CompanyLink:       "https://acme.test",
		NumberOfEmployees: "50-200",
		Email:             "cto@acme.test",
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var count int64
	f.db.Model(&model.EnterpriseInquiry{}).Count(&count)
	assert.Equal(t, int64(1), count)

	length, err := f.mailQueue.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)
}

func TestEnterpriseHandler_Create_MissingFields(t *testing.T) {
	f, cleanup := setupHandlers(t)
	defer cleanup()

	w := performRequest(f.router(), "POST", "/enterprise/inquiries", map[string]string{"company_name": "Acme"})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}
