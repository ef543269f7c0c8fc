package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Simonwafula/personal-finance-app/models"
)

var (
	errUserExists         = errors.New("user already exists")
	errInvalidCredentials = errors.New("invalid credentials")
)

func Register(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username required")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password too short (min 6)")
	}
	var n int64
	db.Model(&models.User{}).Where("username = ?", username).Count(&n)
	if n > 0 {
		return nil, errUserExists
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := models.Role{Name: models.RoleUser}
	if err := db.Where(models.Role{Name: models.RoleUser}).Attrs(models.Role{Description: "regular user"}).FirstOrCreate(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure user role: %w", err)
	}
	user := models.User{Username: username, HashedPassword: hashed, RoleID: &role.ID}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, errUserExists
		}
		return nil, err
	}
	return &user, nil
}

func Authenticate(username, password string) (models.User, error) {
	var user models.User
	if err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return models.User{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, errInvalidCredentials
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}

func roleName(user models.User) string {
	if user.RoleID == nil {
		return ""
	}
	var r models.Role
	if err := db.First(&r, *user.RoleID).Error; err != nil {
		return ""
	}
	return r.Name
}

func issueAccessToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     roleName(user),
		"exp":      time.Now().Add(cfg.Auth.GetTokenExpiry()).Unix(),
	})
	return token.SignedString(jwtSecret)
}

// createRefreshToken stores the sha256 of a random token and returns the raw token.
func createRefreshToken(tx *gorm.DB, userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	raw := hex.EncodeToString(b)
	rt := models.RefreshToken{UserID: userID, TokenHash: hashToken(raw), ExpiresAt: time.Now().Add(cfg.Auth.GetRefreshExpiry())}
	if err := tx.Create(&rt).Error; err != nil {
		return "", err
	}
	return raw, nil
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

func findRefreshToken(tx *gorm.DB, raw string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := tx.Where("token_hash = ?", hashToken(raw)).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// rotateRefreshToken revokes raw and issues its replacement in one transaction,
// so a token can be exchanged only once.
func rotateRefreshToken(raw string) (models.User, string, error) {
	var user models.User
	var next string
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("token_hash = ? AND revoked = ? AND expires_at > ?", hashToken(raw), false, time.Now()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInvalidCredentials
		}
		rt, err := findRefreshToken(tx, raw)
		if err != nil {
			return err
		}
		if err := tx.First(&user, rt.UserID).Error; err != nil {
			return errInvalidCredentials
		}
		next, err = createRefreshToken(tx, user.ID)
		return err
	})
	return user, next, err
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || len(header) < 8 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		token, err := jwt.Parse(header[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		// JSON numbers decode as float64.
		uid, _ := claims["user_id"].(float64)
		if uid <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("user_id", uint(uid))
		c.Set("username", username)
		c.Set("role", role)
		c.Next()
	}
}

// currentUserID is set by jwtAuthMiddleware for every authenticated route.
func currentUserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}
