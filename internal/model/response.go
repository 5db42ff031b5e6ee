package model

// APIResponse is the envelope every endpoint returns. Code repeats the HTTP
// status so gateway clients can route on the body alone.
type APIResponse struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    any    `json:"data"`
}
