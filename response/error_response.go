package response

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"rovify-backend/logger"
)

// ErrorResponse is both the error returned by services and the body sent to the client.
// Description is only ever logged.
type ErrorResponse struct {
	StatusCode  int    `json:"-"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Description string `json:"-"`
}

func (r ErrorResponse) Error() string {
	return fmt.Sprintf("StatusCode: %d, Success: %t, Message: %s, Status: %s, Description: %s", r.StatusCode, r.Success, r.Message, r.Status, r.Description)
}

func (r ErrorResponse) Send(ctx context.Context, w http.ResponseWriter) {
	if r.StatusCode >= http.StatusInternalServerError {
		logger.Errorf(ctx, "%s", r.Error())
	} else {
		logger.Infof(ctx, "%s", r.Error())
	}
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r)
}

func BadRequest(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     message,
		Status:      "BAD_REQUEST",
		Description: description,
	}
}

func InvalidBody() ErrorResponse {
	return BadRequest("Invalid request body", "")
}

func InvalidData(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     "Invalid data passed",
		Status:      "INVALID_DATA",
		Description: description,
	}
}

func ResourceNotFound(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusNotFound,
		Success:     false,
		Message:     message,
		Status:      "NOT_FOUND",
		Description: description,
	}
}

func Unauthorized() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Success:    false,
		Message:    "Unauthorized",
		Status:     "UNAUTHORISED",
	}
}

func CanNotLogin() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Success:    false,
		Message:    "Invalid email or password",
		Status:     "CANT_LOGIN",
	}
}

func SocialAccount() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Success:    false,
		Message:    "This account uses social login. Please sign in with your social provider.",
		Status:     "SOCIAL_ACCOUNT",
	}
}

func Forbidden(message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusForbidden,
		Success:    false,
		Message:    message,
		Status:     "FORBIDDEN",
	}
}

func NotOrganiser() ErrorResponse {
	return Forbidden("Access denied. Organiser account required.")
}

func Conflict(message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    message,
		Status:     "CONFLICT",
	}
}

func UserExists() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    "User with this email already exists",
		Status:     "USER_EXISTS",
	}
}

func SomethingWrong() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Success:    false,
		Message:    "Sorry, Something went wrong",
		Status:     "SOMETHING_WRONG",
	}
}

func ServiceUnavailable(message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusServiceUnavailable,
		Success:    false,
		Message:    message,
		Status:     "UNAVAILABLE",
	}
}

func OTPExpired() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusGone,
		Success:    false,
		Message:    "OTP Expired, Please try again",
		Status:     "OTP_EXPIRED",
	}
}

func OTPMismatch() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Success:    false,
		Message:    "Wrong OTP entered",
		Status:     "OTP_MISMATCH",
	}
}

func OTPLocked() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusTooManyRequests,
		Success:    false,
		Message:    "Too many wrong codes, please request a new one",
		Status:     "OTP_LOCKED",
	}
}

// SendError sends err as is when it is an ErrorResponse and hides it behind a generic 500 otherwise.
func SendError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if e, ok := err.(ErrorResponse); ok {
		e.Send(ctx, w)
		return
	}
	logger.Errorf(ctx, "%s: %+v", op, err)
	SomethingWrong().Send(ctx, w)
}
