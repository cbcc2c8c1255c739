package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/neeraj3071/InvoicePro/internal/auth/domain"
	authservice "github.com/neeraj3071/InvoicePro/internal/auth/service"
	"github.com/neeraj3071/InvoicePro/internal/auth/token"
	"github.com/neeraj3071/InvoicePro/internal/config"
	invoicedomain "github.com/neeraj3071/InvoicePro/internal/invoice/domain"
	"github.com/neeraj3071/InvoicePro/internal/invoice/gormstore"
	"github.com/neeraj3071/InvoicePro/internal/providers/pdf"
	"github.com/neeraj3071/InvoicePro/pkg/repository"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}))

	log := zap.NewNop()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store := gormstore.New(db, log, node)
	require.NoError(t, store.Migrate())

	tokens := token.NewManager("0123456789abcdef0123456789abcdef", "invoicepro", time.Hour)
	authsvc := authservice.New(repository.ProvideStore[authdomain.User](db), tokens, node, log)

	return NewServer(ServerParams{
		Gin:      NewEngine(log),
		Cfg:      config.Config{Environment: "test"},
		Log:      log,
		Authsvc:  authsvc,
		Invoices: store,
		Renderer: pdf.New(),
	})
}

func doJSON(t *testing.T, s *Server, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func registerUser(t *testing.T, s *Server, email string) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/users/register", "", map[string]string{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     email,
		"password":  "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func sampleInvoicePayload() map[string]any {
	return map[string]any{
		"billerStreetAddress": "19 Union Terrace",
		"billerCity":          "London",
		"billerZipCode":       "E1 3EZ",
		"billerState":         "Greater London",
		"billerCountry":       "United Kingdom",
		"clientName":          "Alex Grim",
		"clientEmail":         "alexgrim@mail.com",
		"clientStreetAddress": "84 Church Way",
		"clientCity":          "Bradford",
		"clientZipCode":       "BD1 9PB",
		"clientState":         "West Yorkshire",
		"clientCountry":       "United Kingdom",
		"invoiceDateUnix":     1629936000,
		"invoiceDate":         "Aug 26, 2021",
		"paymentTerms":        "30 Days",
		"paymentDueDateUnix":  1632528000,
		"paymentDueDate":      "Sep 25, 2021",
		"productDescription":  "Graphic design work",
		"invoiceItemList": []map[string]any{
			{"itemName": "Banner Design", "qty": 20, "price": 75},
			{"itemName": "Email Design", "qty": 30, "price": 85},
		},
	}
}

func createInvoice(t *testing.T, s *Server, bearer string) invoicedomain.Invoice {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/invoices", bearer, sampleInvoicePayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Invoice invoicedomain.Invoice `json:"invoice"`
	}
	decodeBody(t, w, &resp)
	return resp.Invoice
}
