package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ivanmitkovski/chisto-mk/models"
	"github.com/ivanmitkovski/chisto-mk/testutils"
	"github.com/ivanmitkovski/chisto-mk/utils"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()
	os.Setenv("JWT_SECRET", "test-secret")

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

var userColumns = []string{
	"id", "first_name", "last_name", "email", "phone_number", "password_hash",
	"role", "status", "is_phone_verified", "points", "created_at", "updated_at",
}

func TestRegister_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnError(gorm.ErrRecordNotFound)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(mock.NewRows([]string{"id", "is_phone_verified", "points"}).
			AddRow("user-uuid-1", false, 0))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/register", Register)

	body, _ := json.Marshal(map[string]string{
		"firstName": "Elena",
		"lastName":  "Stojanovska",
		"email":     "elena@example.com",
		"password":  "strong-password",
	})
	req, _ := http.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var user models.User
	json.Unmarshal(resp.Body.Bytes(), &user)
	assert.Equal(t, "user-uuid-1", user.ID)
	assert.Equal(t, models.UserRole, user.Role)

	// The password hash never leaves the server
	assert.NotContains(t, resp.Body.String(), "password")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_EmailAlreadyUsed(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(mock.NewRows(userColumns).
			AddRow("user-uuid-1", "Elena", "Stojanovska", "elena@example.com", "",
				"hash", "USER", "ACTIVE", false, 0, now, now))

	r := testutils.SetupTestRouter()
	r.POST("/register", Register)

	body, _ := json.Marshal(map[string]string{
		"firstName": "Elena",
		"lastName":  "Stojanovska",
		"email":     "elena@example.com",
		"password":  "strong-password",
	})
	req, _ := http.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)

	var errResp utils.ErrorResponse
	json.Unmarshal(resp.Body.Bytes(), &errResp)
	assert.Equal(t, utils.CodeConflict, errResp.Code)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := testutils.SetupTestRouter()
	r.POST("/register", Register)

	body, _ := json.Marshal(map[string]string{
		"firstName": "Elena",
		"lastName":  "Stojanovska",
		"email":     "elena@example.com",
		"password":  "short",
	})
	req, _ := http.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("strong-password"), bcrypt.MinCost)
	assert.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(mock.NewRows(userColumns).
			AddRow("user-uuid-1", "Elena", "Stojanovska", "elena@example.com", "",
				string(passwordHash), "ADMIN", "ACTIVE", false, 0, now, now))

	r := testutils.SetupTestRouter()
	r.POST("/login", Login)

	body, _ := json.Marshal(map[string]string{
		"email":    "elena@example.com",
		"password": "strong-password",
	})
	req, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var result struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	json.Unmarshal(resp.Body.Bytes(), &result)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user-uuid-1", result.User.ID)

	claims, err := utils.DecodeJWT(result.Token)
	assert.NoError(t, err)
	assert.Equal(t, "user-uuid-1", claims["user_id"])
	assert.Equal(t, "ADMIN", claims["role"])
}

func TestLogin_WrongPassword(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("strong-password"), bcrypt.MinCost)
	assert.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(mock.NewRows(userColumns).
			AddRow("user-uuid-1", "Elena", "Stojanovska", "elena@example.com", "",
				string(passwordHash), "USER", "ACTIVE", false, 0, now, now))

	r := testutils.SetupTestRouter()
	r.POST("/login", Login)

	body, _ := json.Marshal(map[string]string{
		"email":    "elena@example.com",
		"password": "wrong-password",
	})
	req, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.POST("/login", Login)

	body, _ := json.Marshal(map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever-password",
	})
	req, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var errResp utils.ErrorResponse
	json.Unmarshal(resp.Body.Bytes(), &errResp)
	assert.Equal(t, utils.CodeUnauthorized, errResp.Code)
}
