package handler

// LastHourChangeResponse represents the response for the last-hour dynamics endpoint
type LastHourChangeResponse struct {
	Currency      string  `json:"currency"`
	ChangePercent float64 `json:"change_percent"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
