package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/models"
	"github.com/XSTOOR/healthcare-doctor-patient-translation/internal/translate"
)

const (
	// TokenExpiration defines how long a JWT token is valid
	TokenExpiration = 7 * 24 * time.Hour
	// MinPasswordLength defines minimum password length
	MinPasswordLength = 8
)

// Authentication-related request and response structures
type RegisterRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=6"`
	Role              string `json:"role" binding:"required,oneof=doctor patient"`
	FirstName         string `json:"firstName" binding:"required,max=50"`
	LastName          string `json:"lastName" binding:"required,max=50"`
	PreferredLanguage string `json:"preferredLanguage" binding:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

// UserDTO is a Data Transfer Object for User information
type UserDTO struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	PreferredLanguage string    `json:"preferredLanguage"`
}

// convertToUserDTO converts User model to UserDTO
func convertToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                user.ID,
		Email:             user.Email,
		Role:              user.Role,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		PreferredLanguage: user.PreferredLanguage,
	}
}

// RegisterHandler handles user registration
func (h *handler) RegisterHandler(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	// Validate password strength
	if err := validatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Normalize input
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.PreferredLanguage == "" {
		req.PreferredLanguage = "en"
	}
	if !translate.IsSupported(req.PreferredLanguage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported language %q", req.PreferredLanguage)})
		return
	}

	// Check if user exists
	var existingUser models.User
	if result := h.db.Where("email = ?", req.Email).First(&existingUser); result.Error == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	// Hash password with appropriate cost
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process registration"})
		return
	}

	// Create user; the role is fixed from here on
	user := models.User{
		Email:             req.Email,
		PasswordHash:      string(hashedPassword),
		Role:              req.Role,
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		PreferredLanguage: req.PreferredLanguage,
	}

	if result := h.db.Create(&user); result.Error != nil {
		log.Printf("Failed to create user: %v", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Generate JWT token
	token, expiresAt, err := h.generateJWT(user)
	if err != nil {
		log.Printf("Failed to generate token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      convertToUserDTO(user),
	})
}

// LoginHandler handles user login
func (h *handler) LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	// Find user
	var user models.User
	if result := h.db.Where("email = ?", req.Email).First(&user); result.Error != nil {
		// Use same error message for unknown email and password mismatch
		// to avoid leaking information about existing accounts
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Check password with constant-time comparison
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// Log failed login attempts for security monitoring
		log.Printf("Failed login attempt for %s from IP %s", req.Email, c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Generate JWT token
	token, expiresAt, err := h.generateJWT(user)
	if err != nil {
		log.Printf("Failed to generate token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      convertToUserDTO(user),
	})
}

// validatePassword checks password strength
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	// Check for at least one number
	hasNumber := false
	for _, char := range password {
		if char >= '0' && char <= '9' {
			hasNumber = true
			break
		}
	}

	if !hasNumber {
		return errors.New("password must contain at least one number")
	}

	return nil
}

// generateJWT creates a new JWT token carrying the participant id and role
func (h *handler) generateJWT(user models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(TokenExpiration)

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  jwt.NewNumericDate(expiresAt),
		"iat":  jwt.NewNumericDate(time.Now()),
		"nbf":  jwt.NewNumericDate(time.Now()),
		"iss":  "healthcare-translation-backend",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(h.config.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}
