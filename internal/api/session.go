package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation
	"time"     // Timestamps for logging

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"github.com/zixindh/counter/internal/storage" // Totals storage
	"github.com/zixindh/counter/internal/utils"   // Utility functions
)

// LoginRequest is the body of a login: just a name, no credential
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
}

// LoginResponse carries the session token and the user's current total
type LoginResponse struct {
	Token    string `json:"token"`    // Session token
	Username string `json:"username"` // Logged-in username
	Total    string `json:"total"`    // Current running total
}

// usernamePattern allows letters, digits, spaces and . _ - up to 64 chars
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9 ._-]{1,64}$`)

// isValidUsername checks the trimmed name against the allowed charset
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username) // Return whether it matched
}

// LoginHandler starts a session for a name, creating the record on first login
func LoginHandler(store storage.Storage, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter your name"})
			return
		}
		username := strings.TrimSpace(req.Username) // Trim surrounding whitespace
		// Validate the trimmed username
		if !isValidUsername(username) {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name must be 1-64 letters, digits, spaces or . _ -"})
			return
		}
		// Create the record with a zero total on first login
		total, err := store.Ensure(c.Request.Context(), username)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"username": username,    // Username
				"error":    err.Error(), // Error message
			}).Error("Login failed") // Log login failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}
		// Generate session token
		token, err := utils.GenerateJWT(username, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Log successful login
		logrus.WithFields(logrus.Fields{
			"username":  username,                        // Username
			"total":     total.String(),                  // Current total
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("User logged in") // Log login success
		// Return the token and current total
		c.JSON(http.StatusOK, LoginResponse{Token: token, Username: username, Total: total.String()})
	}
}

// LogoutHandler ends a session. Tokens are stateless, so this only
// acknowledges the switch-user action; the client drops its token.
// It succeeds with or without a valid token, since an expired session
// must still be able to return to the login view.
func LogoutHandler(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Log the switch if the request still carried a valid session
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if claims, err := utils.ParseJWT(tokenStr, jwtSecret); err == nil {
				logrus.WithFields(logrus.Fields{
					"username":  claims.Username,                 // Username
					"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
				}).Info("User switched") // Log user switch
			}
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
