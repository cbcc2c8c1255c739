package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	authdomain "github.com/neeraj3071/InvoicePro/internal/auth/domain"
	invoicedomain "github.com/neeraj3071/InvoicePro/internal/invoice/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "validation errors",
			err:        invoicedomain.DuplicateInvoiceID("RT3080"),
			wantStatus: http.StatusBadRequest,
			wantType:   "validation_error",
		},
		{
			name:       "unauthorized",
			err:        invoicedomain.ErrUnauthorized,
			wantStatus: http.StatusUnauthorized,
			wantType:   "unauthorized",
		},
		{
			name:       "invalid credentials",
			err:        authdomain.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantType:   "unauthorized",
		},
		{
			name:       "not found",
			err:        invoicedomain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantType:   "not_found",
		},
		{
			name:       "backend unavailable",
			err:        invoicedomain.ErrUnavailable,
			wantStatus: http.StatusInternalServerError,
			wantType:   "service_unavailable",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}
