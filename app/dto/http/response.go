package http

import "time"

type KeyData struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	KeyPrefix        string     `json:"keyPrefix"`
	TokenLimit       *int64     `json:"tokenLimit"`
	DailyCostLimit   *float64   `json:"dailyCostLimit"`
	MonthlyCostLimit *float64   `json:"monthlyCostLimit"`
	ExpiresAt        *time.Time `json:"expiresAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	Status           string     `json:"status"`
}

type GenerateKeyResponse struct {
	Success bool    `json:"success"`
	Data    KeyData `json:"data"`
	// APIKey is the full secret value, disclosed here exactly once.
	APIKey string `json:"apiKey"`
}

type ValidateKeyResponse struct {
	Success bool    `json:"success"`
	Data    KeyData `json:"data"`
}

type IntrospectionResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Endpoints []string  `json:"endpoints"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message}
}
