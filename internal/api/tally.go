package api

import (
	"net/http" // HTTP status codes
	"time"     // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact decimal amounts
	"github.com/sirupsen/logrus"    // Logging library

	"github.com/zixindh/counter/internal/middleware" // Context keys
	"github.com/zixindh/counter/internal/storage"    // Totals storage
	"github.com/zixindh/counter/internal/utils"      // Utility functions
)

// maxEntryAmount bounds a single entry's magnitude, matching the
// custom-amount form's limit
var maxEntryAmount = decimal.NewFromInt(10000)

// AddRequest is the body of an add: one signed decimal amount
type AddRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"` // Amount must be provided
}

// TotalResponse carries one user's current total
type TotalResponse struct {
	Username string `json:"username"` // Username
	Total    string `json:"total"`    // Current running total
	Cached   bool   `json:"cached"`   // Whether the value came from cache
}

// currentUsername returns the authenticated username from the context
func currentUsername(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.UsernameKey) // Get username from context
	if !exists {
		return "", false // No session on this request
	}
	username, ok := v.(string) // Assert the stored type
	return username, ok
}

// isValidAmount rejects zero and entries beyond the form's bounds;
// negative amounts are allowed as corrections
func isValidAmount(amount decimal.Decimal) bool {
	return !amount.IsZero() && amount.Abs().LessThanOrEqual(maxEntryAmount)
}

// GetTotalHandler returns the current user's running total
func GetTotalHandler(store storage.Storage, cache *utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get username from context
		username, ok := currentUsername(c)
		if !ok {
			// If missing, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()           // Request context for store and cache
		cacheKey := utils.TotalKey(username) // Cache key for this user's total
		var cachedTotal string               // Cached total as a decimal string
		found, err := cache.Get(ctx, cacheKey, &cachedTotal)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, TotalResponse{Username: username, Total: cachedTotal, Cached: true})
			return
		}
		// If not in cache, read from the store (re-reads the file on change)
		total, err := store.GetTotal(ctx, username)
		if err != nil {
			// If reading fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read total"})
			return
		}
		// Cache for one poll interval so other devices see updates promptly
		_ = cache.Set(ctx, cacheKey, total.String(), ttl)
		c.JSON(http.StatusOK, TotalResponse{Username: username, Total: total.String(), Cached: false})
	}
}

// AddHandler adds an amount to the current user's total
func AddHandler(store storage.Storage, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get username from context
		username, ok := currentUsername(c)
		if !ok {
			// If missing, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req AddRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || !isValidAmount(req.Amount) {
			// If invalid, return bad request with no mutation
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		ctx := c.Request.Context() // Request context for store and cache
		// Increment and persist
		total, err := store.Add(ctx, username, req.Amount)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"username": username,            // Username
				"amount":   req.Amount.String(), // Entry amount
				"error":    err.Error(),         // Error message
			}).Error("Add failed") // Log add failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Add failed"})
			return
		}
		// Log successful add
		logrus.WithFields(logrus.Fields{
			"username":  username,                        // Username
			"amount":    req.Amount.String(),             // Entry amount
			"total":     total.String(),                  // New running total
			"type":      "add",                           // Mutation type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Amount added") // Log add success
		// Invalidate this user's cached total and the totals listing
		_ = cache.Delete(ctx, utils.TotalKey(username), utils.TotalsKey)
		// Return the new total
		c.JSON(http.StatusOK, TotalResponse{Username: username, Total: total.String()})
	}
}

// ResetHandler sets the current user's total back to zero
func ResetHandler(store storage.Storage, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get username from context
		username, ok := currentUsername(c)
		if !ok {
			// If missing, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context() // Request context for store and cache
		// Zero the total and persist
		total, err := store.Reset(ctx, username)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"username": username,    // Username
				"error":    err.Error(), // Error message
			}).Error("Reset failed") // Log reset failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed"})
			return
		}
		// Log successful reset
		logrus.WithFields(logrus.Fields{
			"username":  username,                        // Username
			"type":      "reset",                         // Mutation type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Counter reset") // Log reset success
		// Invalidate this user's cached total and the totals listing
		_ = cache.Delete(ctx, utils.TotalKey(username), utils.TotalsKey)
		// Return the zeroed total
		c.JSON(http.StatusOK, TotalResponse{Username: username, Total: total.String()})
	}
}

// ListTotalsHandler returns every user's running total
func ListTotalsHandler(store storage.Storage, cache *utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()   // Request context for store and cache
		var cached map[string]string // Cached mapping of username to total
		found, err := cache.Get(ctx, utils.TotalsKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"totals": cached, "cached": true})
			return
		}
		// If not in cache, read the full mapping from the store
		totals, err := store.Totals(ctx)
		if err != nil {
			// If reading fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read totals"})
			return
		}
		// Render decimals as strings for the response and the cache
		out := make(map[string]string, len(totals))
		for name, total := range totals {
			out[name] = total.String()
		}
		// Cache for one poll interval
		_ = cache.Set(ctx, utils.TotalsKey, out, ttl)
		c.JSON(http.StatusOK, gin.H{"totals": out, "cached": false})
	}
}
