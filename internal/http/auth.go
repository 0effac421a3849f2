package http

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"finance-tracker-go/internal/models"
)

// Auth Response Wrapper
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) signToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.UUID,
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(s.cfg.TokenTTLHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) respondWithToken(c *gin.Context, code int, user *models.User) {
	token, err := s.signToken(user)
	if err != nil {
		c.JSON(500, gin.H{"error": "token_signing_failed"})
		return
	}
	user.HasPin = user.PinHash != ""
	c.JSON(code, AuthResponse{Token: token, User: user})
}

// POST /v1/auth/guest
func (s *Server) authGuest(c *gin.Context) {
	var input struct {
		DeviceID string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err != io.EOF {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	if input.DeviceID != "" {
		if user, err := s.users.ByDeviceID(c.Request.Context(), input.DeviceID); err == nil {
			// Found existing guest session
			s.respondWithToken(c, 200, user)
			return
		}
	}

	var deviceIDPtr *string
	if input.DeviceID != "" {
		deviceIDPtr = &input.DeviceID
	}

	user := models.User{
		UUID:     uuid.NewString(),
		IsGuest:  true,
		DeviceID: deviceIDPtr,
		Username: "Guest_" + uuid.NewString()[:8],
	}

	if err := s.users.Create(c.Request.Context(), &user); err != nil {
		c.JSON(500, gin.H{"error": "failed_create_guest"})
		return
	}

	s.respondWithToken(c, 200, &user)
}

// POST /v1/auth/register
func (s *Server) authRegister(c *gin.Context) {
	var input struct {
		Identifier        string `json:"identifier" binding:"required"`
		PIN               string `json:"pin" binding:"required,len=4"`
		GuestUUID         string `json:"guest_uuid"`
		DeviceID          string `json:"device_id"`
		BiometricsEnabled bool   `json:"biometrics_enabled"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	var email, phone *string
	if strings.Contains(input.Identifier, "@") {
		email = &input.Identifier
	} else {
		phone = &input.Identifier
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(500, gin.H{"error": "encryption_failed"})
		return
	}

	if _, err := s.users.ByIdentifier(c.Request.Context(), input.Identifier); err == nil {
		c.JSON(409, gin.H{"error": "user_already_exists"})
		return
	}

	var deviceIDPtr *string
	if input.DeviceID != "" {
		deviceIDPtr = &input.DeviceID
	}

	if input.GuestUUID != "" {
		// Upgrade flow: keep the guest's data, attach the new identity.
		if user, err := s.users.ByUUID(c.Request.Context(), input.GuestUUID); err == nil && user.IsGuest {
			user.Email = email
			user.Phone = phone
			user.PinHash = string(hash)
			user.IsGuest = false
			user.BiometricsEnabled = input.BiometricsEnabled
			user.Username = "User_" + uuid.NewString()[:8]
			if deviceIDPtr != nil {
				user.DeviceID = deviceIDPtr
			}
			if err := s.users.Save(c.Request.Context(), user); err != nil {
				c.JSON(500, gin.H{"error": "failed_upgrade_guest"})
				return
			}
			s.respondWithToken(c, 201, user)
			return
		}
	}

	user := models.User{
		UUID:              uuid.NewString(),
		Email:             email,
		Phone:             phone,
		PinHash:           string(hash),
		BiometricsEnabled: input.BiometricsEnabled,
		DeviceID:          deviceIDPtr,
		Username:          "User_" + uuid.NewString()[:8],
	}
	if err := s.users.Create(c.Request.Context(), &user); err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	s.respondWithToken(c, 201, &user)
}

// POST /v1/auth/login
func (s *Server) authLogin(c *gin.Context) {
	var input struct {
		Identifier string `json:"identifier" binding:"required"`
		PIN        string `json:"pin" binding:"required"`
		DeviceID   string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	user, err := s.users.ByIdentifier(c.Request.Context(), input.Identifier)
	if err != nil {
		c.JSON(401, gin.H{"error": "invalid_credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(input.PIN)); err != nil {
		c.JSON(401, gin.H{"error": "invalid_credentials"})
		return
	}

	if input.DeviceID != "" {
		if user.DeviceID == nil || *user.DeviceID != input.DeviceID {
			user.DeviceID = &input.DeviceID
			_ = s.users.Save(c.Request.Context(), user)
		}
	}

	s.respondWithToken(c, 200, user)
}
