package http

type GenerateKeyRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	ExpirationDays   *int     `json:"expirationDays,omitempty"`
	TokenLimit       *int64   `json:"tokenLimit,omitempty"`
	DailyCostLimit   *float64 `json:"dailyCostLimit,omitempty"`
	MonthlyCostLimit *float64 `json:"monthlyCostLimit,omitempty"`
	NotifyFeishu     *bool    `json:"notifyFeishu,omitempty"`
	FeishuWebhook    string   `json:"feishuWebhook,omitempty"`
}

type ValidateKeyRequest struct {
	APIKey string `json:"apiKey"`
}
