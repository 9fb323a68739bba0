package dto

// Envelope wraps every API response body.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

func Fail(err string) Envelope {
	return Envelope{Success: false, Error: err}
}
