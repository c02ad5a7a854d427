package inbound

import (
	"net/http"
	"strconv"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	ChallengeToken string `json:"challenge_token"`
	ExpiresIn      int64  `json:"expires_in"`
	DeliveryFailed bool   `json:"delivery_failed"`
}

func (r LoginResponse) StatusCode() int {
	if r.DeliveryFailed {
		return http.StatusAccepted
	}
	return http.StatusOK
}

func (r LoginResponse) Message() string {
	if r.DeliveryFailed {
		return "We could not send your login code. Please request a new one."
	}
	return "A login code has been sent to your email."
}

type LoginVerifyRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
}

type LoginVerifyResponse struct {
	SessionToken string       `json:"session_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         UserResponse `json:"user"`

	cookie *http.Cookie
}

func (r LoginVerifyResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{r.cookie}
}

type LoginResendRequest struct {
	ChallengeToken string `json:"challenge_token"`
}

type LoginResendResponse struct {
	ChallengeToken string `json:"challenge_token"`
	ExpiresIn      int64  `json:"expires_in"`
}

func (LoginResendResponse) Message() string {
	return "A new login code has been sent to your email."
}

type LogoutResponse struct {
	cookie *http.Cookie
}

func (r LogoutResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{r.cookie}
}

func (LogoutResponse) Message() string {
	return "Signed out."
}

type UserResponse struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type OrganizationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type MeResponse struct {
	User         UserResponse         `json:"user"`
	Organization OrganizationResponse `json:"organization"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
