package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/tokenwallet/internal/badgecache"
	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
	"github.com/GlebRadaev/tokenwallet/internal/repo"
	"github.com/GlebRadaev/tokenwallet/internal/service"
	"github.com/GlebRadaev/tokenwallet/pkg/auth"
)

func TestNew(t *testing.T) {
	services := service.New(repo.NewMemory(), service.Deps{
		Hasher:     &auth.HashService{},
		Tokens:     auth.NewJWTService("secret"),
		BadgeCache: badgecache.NewMemory(),
		Metrics:    metrics.New(),
	})

	h := New(services, Options{Metrics: metrics.New()})
	assert.NotNil(t, h, "Handlers should not be nil")
	assert.NotNil(t, h.users)
}

type mockHandlers struct {
	auth      *MockAuthHandler
	wallet    *MockWalletHandler
	dashboard *MockDashboardHandler
	admin     *MockAdminHandler
	manager   *MockManagerHandler
	importer  *MockImportHandler
	users     *MockUserFinder
}

func newRouter(t *testing.T, tokens auth.JWTServiceInterface) (chi.Router, *mockHandlers) {
	ctrl := gomock.NewController(t)
	m := &mockHandlers{
		auth:      NewMockAuthHandler(ctrl),
		wallet:    NewMockWalletHandler(ctrl),
		dashboard: NewMockDashboardHandler(ctrl),
		admin:     NewMockAdminHandler(ctrl),
		manager:   NewMockManagerHandler(ctrl),
		importer:  NewMockImportHandler(ctrl),
		users:     NewMockUserFinder(ctrl),
	}
	m.auth.EXPECT().Register(gomock.Any(), gomock.Any()).AnyTimes()
	m.auth.EXPECT().Login(gomock.Any(), gomock.Any()).AnyTimes()
	m.auth.EXPECT().Logout(gomock.Any(), gomock.Any()).AnyTimes()
	m.wallet.EXPECT().GetBalance(gomock.Any(), gomock.Any()).AnyTimes()
	m.wallet.EXPECT().GetTransactions(gomock.Any(), gomock.Any()).AnyTimes()
	m.wallet.EXPECT().GetBadge(gomock.Any(), gomock.Any()).AnyTimes()
	m.dashboard.EXPECT().Show(gomock.Any(), gomock.Any()).AnyTimes()
	m.admin.EXPECT().SetBalance(gomock.Any(), gomock.Any()).AnyTimes()
	m.admin.EXPECT().SetRole(gomock.Any(), gomock.Any()).AnyTimes()
	m.admin.EXPECT().ListUsers(gomock.Any(), gomock.Any()).AnyTimes()
	m.manager.EXPECT().AdjustBalance(gomock.Any(), gomock.Any()).AnyTimes()
	m.importer.EXPECT().Preview(gomock.Any(), gomock.Any()).AnyTimes()
	m.importer.EXPECT().Confirm(gomock.Any(), gomock.Any()).AnyTimes()

	h := &Handlers{
		AuthHandler:      m.auth,
		WalletHandler:    m.wallet,
		DashboardHandler: m.dashboard,
		AdminHandler:     m.admin,
		ManagerHandler:   m.manager,
		ImportHandler:    m.importer,
		users:            m.users,
		opts: Options{
			Tokens:     tokens,
			Metrics:    metrics.New(),
			LoginRate:  1,
			LoginBurst: 3,
		},
	}

	router := chi.NewRouter()
	h.InitRoutes(router)
	return router, m
}

func TestInitRoutes(t *testing.T) {
	router, _ := newRouter(t, auth.NewJWTService("secret"))

	tests := []struct {
		method string
		url    string
		status int
	}{
		{"POST", "/api/auth/register", http.StatusOK},
		{"POST", "/api/auth/login", http.StatusOK},
		{"POST", "/api/auth/logout", http.StatusUnauthorized},
		{"GET", "/api/dashboard", http.StatusUnauthorized},
		{"GET", "/api/wallet/balance", http.StatusUnauthorized},
		{"GET", "/api/wallet/transactions", http.StatusUnauthorized},
		{"GET", "/api/wallet/badge", http.StatusUnauthorized},
		{"POST", "/api/admin/balance", http.StatusUnauthorized},
		{"POST", "/api/admin/role", http.StatusUnauthorized},
		{"GET", "/api/admin/users", http.StatusUnauthorized},
		{"POST", "/api/admin/import/preview", http.StatusUnauthorized},
		{"POST", "/api/admin/import/confirm", http.StatusUnauthorized},
		{"POST", "/api/manager/balance", http.StatusUnauthorized},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAuthenticatedRoutes(t *testing.T) {
	tokens := auth.NewJWTService("secret")
	router, m := newRouter(t, tokens)
	m.users.EXPECT().FindByID(gomock.Any(), 3).Return(&domain.User{ID: 3, Username: "alice", Role: domain.RoleUser}, nil).AnyTimes()

	token, err := tokens.GenerateJWT(3, time.Now().Add(time.Hour))
	assert.NoError(t, err)

	for _, url := range []string{"/api/dashboard", "/api/wallet/balance", "/api/wallet/badge"} {
		req := httptest.NewRequest("GET", url, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, url)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	router, _ := newRouter(t, auth.NewJWTService("secret"))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
