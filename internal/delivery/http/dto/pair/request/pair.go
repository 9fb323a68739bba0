package request

type AddPairRequest struct {
	Base  string `json:"base" binding:"required"`
	Quote string `json:"quote" binding:"required"`
}
