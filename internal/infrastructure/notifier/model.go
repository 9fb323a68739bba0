package notifier

import "time"

type DeadLetterPayload struct {
	Stage    string    `json:"stage"`
	Pair     string    `json:"pair"`
	Attempts int       `json:"attempts"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}
