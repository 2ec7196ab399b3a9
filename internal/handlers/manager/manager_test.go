package manager

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/dto"
	"github.com/GlebRadaev/tokenwallet/internal/service/ledgerservice"
	"github.com/GlebRadaev/tokenwallet/pkg/utils"
)

func TestAdjustBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := NewMockLedger(ctrl)
	handler := New(ledger)
	manny := domain.Actor{ID: 4, Username: "manny", Role: domain.RoleManager}

	tests := []struct {
		name            string
		body            string
		prepareMock     func()
		expectedCode    int
		expectedMessage string
	}{
		{
			name: "Add",
			body: `{"username":"alice","action":"add","amount":25}`,
			prepareMock: func() {
				ledger.EXPECT().AdjustBounded(gomock.Any(), manny, "alice", "add", int64(25)).Return(&ledgerservice.Result{
					Transaction: &domain.Transaction{BalanceAfter: 25},
					Success:     true,
					Message:     "Balance updated successfully. New balance: 25",
				}, nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: "Balance updated successfully. New balance: 25",
		},
		{
			name: "Over the bound",
			body: `{"username":"alice","action":"add","amount":5000}`,
			prepareMock: func() {
				ledger.EXPECT().AdjustBounded(gomock.Any(), manny, "alice", "add", int64(5000)).
					Return(nil, domain.ErrValidation("Amount must be between 1 and %d", 1000))
			},
			expectedCode:    http.StatusUnprocessableEntity,
			expectedMessage: "Amount must be between 1 and 1000",
		},
		{
			name: "Overdraft",
			body: `{"username":"alice","action":"subtract","amount":30}`,
			prepareMock: func() {
				ledger.EXPECT().AdjustBounded(gomock.Any(), manny, "alice", "subtract", int64(30)).Return(&ledgerservice.Result{
					Rejection: ledgerservice.RejectInsufficientFunds,
					Message:   "Insufficient funds. Current balance: 25, attempted deduction: 30",
				}, nil)
			},
			expectedCode:    http.StatusPaymentRequired,
			expectedMessage: "Insufficient funds. Current balance: 25, attempted deduction: 30",
		},
		{
			name:            "Unknown action",
			body:            `{"username":"alice","action":"multiply","amount":3}`,
			prepareMock:     func() {},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "action must be one of [add subtract]",
		},
		{
			name:            "Invalid request body",
			body:            `not json`,
			prepareMock:     func() {},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := httptest.NewRequest("POST", "/api/manager/balance", bytes.NewReader([]byte(tt.body)))
			req = req.WithContext(domain.WithActor(req.Context(), manny))
			rr := httptest.NewRecorder()

			handler.AdjustBalance(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			var resp utils.Response
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}

	t.Run("Success carries balance", func(t *testing.T) {
		ledger.EXPECT().AdjustBounded(gomock.Any(), manny, "bob", "add", int64(7)).Return(&ledgerservice.Result{
			Transaction: &domain.Transaction{BalanceAfter: 12},
			Success:     true,
		}, nil)
		req := httptest.NewRequest("POST", "/api/manager/balance", bytes.NewReader([]byte(`{"username":"bob","action":"add","amount":7}`)))
		req = req.WithContext(domain.WithActor(req.Context(), manny))
		rr := httptest.NewRecorder()

		handler.AdjustBalance(rr, req)

		var resp dto.BalanceChangeResponseDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, int64(12), resp.Balance)
	})
}
