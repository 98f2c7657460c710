package model

// ErrorResponse is the JSON body of every failed API call.
// Code is machine-readable: invalid_request, wallet_not_found, wallet_exists,
// decryption_failed, fee_quantization_failed, send_failed or internal.
type ErrorResponse struct {
	Error string `json:"error" example:"wrong password"`
	Code  string `json:"code" example:"decryption_failed"`
}
