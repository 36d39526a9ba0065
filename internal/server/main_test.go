package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"reclaimit/internal/config"
	"reclaimit/internal/database"
	"reclaimit/internal/models"
	"reclaimit/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// notifierStub records review notifications without delivering anything.
type notifierStub struct {
	mu    sync.Mutex
	calls int
}

func (n *notifierStub) NotifyClaimReviewed(_ *models.User, _ *models.Item, _ *models.Claim, _ bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
}

// imageStoreStub avoids touching the filesystem in handler tests.
type imageStoreStub struct {
	saved   []string
	removed []string
}

func (s *imageStoreStub) Save(filename string, _ []byte) (string, error) {
	s.saved = append(s.saved, filename)
	return "http://localhost:8080/uploads/" + filename, nil
}

func (s *imageStoreStub) Remove(url string) error {
	s.removed = append(s.removed, url)
	return nil
}

type testServer struct {
	app      *fiber.App
	srv      *Server
	db       *gorm.DB
	notifier *notifierStub
	images   *imageStoreStub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.ConnectTest()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret: "test_secret",
		Env:       "test",
	}
	notifier := &notifierStub{}
	images := &imageStoreStub{}
	srv := NewServerWithDeps(cfg, db, nil, images, notifier)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testServer{app: app, srv: srv, db: db, notifier: notifier, images: images}
}

// testPassword satisfies the signup password policy.
const testPassword = "Password123!"

func (ts *testServer) seedUser(t *testing.T, email, roll string, role models.UserRole) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Name:       "Test User",
		Email:      email,
		Password:   string(hashed),
		RollNumber: roll,
		Role:       role,
		Status:     models.UserStatusActive,
	}
	require.NoError(t, ts.db.Create(user).Error)
	return user
}

func (ts *testServer) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := ts.srv.generateToken(user)
	require.NoError(t, err)
	return token
}

func (ts *testServer) seedFoundItem(t *testing.T, userID uint, name string) *models.FoundItem {
	t.Helper()
	item := &models.FoundItem{
		UserID:      userID,
		ItemName:    name,
		Description: "Spotted near the library entrance",
		Category:    "Electronics",
		PlaceFound:  "Library",
		DateFound:   time.Now().AddDate(0, 0, -1),
		ContactInfo: "finder@campus.edu",
		Status:      models.ItemStatusActive,
		IsVisible:   true,
		ValidationQuestions: []models.ValidationQuestion{
			{Question: "What is the lock screen photo?", ExpectedAnswer: "a dog"},
		},
	}
	require.NoError(t, ts.db.Create(item).Error)
	return item
}

func (ts *testServer) seedLostItem(t *testing.T, userID uint, name string) *models.LostItem {
	t.Helper()
	item := &models.LostItem{
		UserID:      userID,
		ItemName:    name,
		Description: "Last seen in the cafeteria",
		Category:    "Accessories",
		PlaceLost:   "Cafeteria",
		DateLost:    time.Now().AddDate(0, 0, -2),
		ContactInfo: "owner@campus.edu",
		Status:      models.ItemStatusActive,
		IsVisible:   true,
	}
	require.NoError(t, ts.db.Create(item).Error)
	return item
}

// doJSON performs a request with an optional JSON body and bearer token,
// returning the response and its decoded body.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

var _ service.ClaimNotifier = (*notifierStub)(nil)
