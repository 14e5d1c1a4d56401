package response

import "net/http"

// 对外只用 HTTP 状态码，body 里的 code 与之相同
const (
	CodeOK              = http.StatusOK
	CodeCreated         = http.StatusCreated
	CodeBadRequest      = http.StatusBadRequest
	CodeUnauthorized    = http.StatusUnauthorized
	CodeForbidden       = http.StatusForbidden
	CodeNotFound        = http.StatusNotFound
	CodeConflict        = http.StatusConflict
	CodeTooLarge        = http.StatusRequestEntityTooLarge
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeServerError     = http.StatusInternalServerError
	CodeUnavailable     = http.StatusServiceUnavailable
	CodeTimeout         = http.StatusGatewayTimeout
)

// CodeMsgMap 默认文案
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeCreated:         "Created",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeForbidden:       "Forbidden",
	CodeNotFound:        "Not Found",
	CodeConflict:        "Conflict",
	CodeTooLarge:        "Request body too large",
	CodeTooManyRequests: "Too Many Requests",
	CodeServerError:     "internal server error",
	CodeUnavailable:     "Server busy",
	CodeTimeout:         "Request timeout",
}
