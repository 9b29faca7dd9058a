package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appclient "github.com/expenseally/backend/internal/application/client"
	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
)

type clientFixture struct {
	clientRepo  *MockClientRepository
	invoiceRepo *MockInvoiceRepository
	router      *gin.Engine
	token       string
	companyID   uuid.UUID
	userID      uuid.UUID
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()

	clientRepo := new(MockClientRepository)
	invoiceRepo := new(MockInvoiceRepository)
	handler := NewClientHandler(appclient.NewClientService(clientRepo, invoiceRepo))

	router, token, companyID, userID := authedTestRouter(t, handler.RegisterRoutes)
	return &clientFixture{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		router:      router,
		token:       token,
		companyID:   companyID,
		userID:      userID,
	}
}

func (fx *clientFixture) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+fx.token)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func newTestClient(t *testing.T, companyID uuid.UUID) *client.Client {
	t.Helper()
	cl, err := client.NewClient(companyID, "Acme Corp", "billing@acme.test")
	require.NoError(t, err)
	return cl
}

// newOutstandingInvoice returns a SENT invoice with an unpaid balance
func newOutstandingInvoice(t *testing.T, companyID, clientID uuid.UUID) *invoicing.Invoice {
	t.Helper()
	now := time.Now()
	inv, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CompanyID:     companyID,
		ClientID:      clientID,
		ClientName:    "Acme Corp",
		InvoiceNumber: "INV-2026-0001",
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	_, err = inv.AddItem(invoicing.ItemInput{
		Description: "Consulting",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	require.NoError(t, inv.MarkSent(now))
	return inv
}

func TestClientHandler_Create_Success(t *testing.T) {
	fx := newClientFixture(t)

	fx.clientRepo.On("ExistsByEmail", mock.Anything, "billing@acme.test", fx.companyID).Return(false, nil)
	fx.clientRepo.On("Save", mock.Anything, mock.MatchedBy(func(cl *client.Client) bool {
		return cl.CompanyID == fx.companyID && cl.CreatedBy != nil && *cl.CreatedBy == fx.userID
	})).Return(nil)

	w := fx.do(t, http.MethodPost, "/api/v1/clients", appclient.CreateClientRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Acme Corp", data["name"])
	assert.Equal(t, "active", data["status"])
	fx.clientRepo.AssertExpectations(t)
}

func TestClientHandler_Create_DuplicateEmail(t *testing.T) {
	fx := newClientFixture(t)

	fx.clientRepo.On("ExistsByEmail", mock.Anything, "billing@acme.test", fx.companyID).Return(true, nil)

	w := fx.do(t, http.MethodPost, "/api/v1/clients", appclient.CreateClientRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errInfo := response["error"].(map[string]interface{})
	assert.Equal(t, "DUPLICATE_EMAIL", errInfo["code"])
}

func TestClientHandler_Create_MissingEmail(t *testing.T) {
	fx := newClientFixture(t)

	w := fx.do(t, http.MethodPost, "/api/v1/clients", map[string]string{"name": "Acme Corp"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_Get_NotFound(t *testing.T) {
	fx := newClientFixture(t)
	clientID := uuid.New()

	fx.clientRepo.On("FindByIDForCompany", mock.Anything, clientID, fx.companyID).Return(nil, shared.ErrNotFound)

	w := fx.do(t, http.MethodGet, "/api/v1/clients/"+clientID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientHandler_Get_InvalidID(t *testing.T) {
	fx := newClientFixture(t)

	w := fx.do(t, http.MethodGet, "/api/v1/clients/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_List_Success(t *testing.T) {
	fx := newClientFixture(t)

	cl := newTestClient(t, fx.companyID)
	page := shared.NewPaginated([]*client.Client{cl}, 1, 1, 20)
	fx.clientRepo.On("FindForCompany", mock.Anything, fx.companyID, mock.Anything).Return(&page, nil)

	w := fx.do(t, http.MethodGet, "/api/v1/clients?page=1&page_size=20", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	meta := response["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["total"])
	items := response["data"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Acme Corp", first["name"])
}

func TestClientHandler_Deactivate_OutstandingBalance(t *testing.T) {
	fx := newClientFixture(t)

	cl := newTestClient(t, fx.companyID)
	inv := newOutstandingInvoice(t, fx.companyID, cl.ID)

	fx.clientRepo.On("FindByIDForCompany", mock.Anything, cl.ID, fx.companyID).Return(cl, nil)
	fx.invoiceRepo.On("FindByClient", mock.Anything, fx.companyID, cl.ID).
		Return([]*invoicing.Invoice{inv}, nil)

	w := fx.do(t, http.MethodPost, "/api/v1/clients/"+cl.ID.String()+"/deactivate", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errInfo := response["error"].(map[string]interface{})
	assert.Equal(t, "OUTSTANDING_BALANCE", errInfo["code"])
}

func TestClientHandler_Delete_WithInvoices(t *testing.T) {
	fx := newClientFixture(t)

	cl := newTestClient(t, fx.companyID)
	inv := newOutstandingInvoice(t, fx.companyID, cl.ID)

	fx.clientRepo.On("FindByIDForCompany", mock.Anything, cl.ID, fx.companyID).Return(cl, nil)
	fx.invoiceRepo.On("FindByClient", mock.Anything, fx.companyID, cl.ID).
		Return([]*invoicing.Invoice{inv}, nil)

	w := fx.do(t, http.MethodDelete, "/api/v1/clients/"+cl.ID.String(), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestClientHandler_Unauthenticated(t *testing.T) {
	fx := newClientFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
