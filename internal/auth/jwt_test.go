package auth_test

import (
	"os"
	"testing"
	"time"

	"taskhub/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParseToken(t *testing.T) {
	// Устанавливаем переменные окружения для тестов
	os.Setenv("JWT_SECRET", "test-secret-key")
	os.Setenv("JWT_EXPIRY_HOURS", "24")

	// Генерируем токен
	userID := "test-user-id"
	token, err := auth.GenerateToken(userID, "manager")

	// Проверяем, что токен создан без ошибок
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Парсим токен
	parsedUserID, parsedRole, err := auth.ParseToken(token)

	// Проверяем, что токен был успешно проверен и из него извлечены ID и роль
	assert.NoError(t, err)
	assert.Equal(t, userID, parsedUserID)
	assert.Equal(t, "manager", parsedRole)
}

func TestParseToken_InvalidToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key")

	// Пытаемся парсить неверный токен
	_, _, err := auth.ParseToken("invalid-token")

	assert.Error(t, err)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_ExpiredToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key")

	// Создаем токен с истекшим сроком действия
	claims := jwt.MapClaims{
		"user_id": "test-user-id",
		"role":    "employee",
		"exp":     time.Now().Add(-1 * time.Hour).Unix(), // Токен истек 1 час назад
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expiredToken, _ := token.SignedString([]byte("test-secret-key"))

	// Пытаемся парсить истекший токен
	_, _, err := auth.ParseToken(expiredToken)

	assert.Error(t, err)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_MissingClaims(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key")

	// Создаем токен без ID пользователя и роли
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenWithoutClaims, _ := token.SignedString([]byte("test-secret-key"))

	// Пытаемся парсить токен
	_, _, err := auth.ParseToken(tokenWithoutClaims)

	assert.Error(t, err)
	assert.Equal(t, "invalid claims", err.Error())
}

func TestParseToken_MissingRole(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key")

	// Токен с user_id, но без роли
	claims := jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenWithoutRole, _ := token.SignedString([]byte("test-secret-key"))

	_, _, err := auth.ParseToken(tokenWithoutRole)

	assert.Error(t, err)
	assert.Equal(t, "invalid claims", err.Error())
}
