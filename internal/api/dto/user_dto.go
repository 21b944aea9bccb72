package dto

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateMeRequest payload for profile updates.
type UpdateMeRequest struct {
	Nickname string `json:"nickname"`
}

// ReissueRequest carries the token pair to exchange. The access token may
// instead be sent as a bearer Authorization header.
type ReissueRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenPairResponse is returned by login.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AccessTokenResponse is returned by reissue.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// MeResponse describes the caller's account.
type MeResponse struct {
	Email      string `json:"email"`
	Nickname   string `json:"nickname"`
	IsVerified bool   `json:"is_verified"`
}

// NicknameResponse is returned after a profile update.
type NicknameResponse struct {
	Nickname string `json:"nickname"`
}

// Envelope wraps every response body.
type Envelope struct {
	Success  bool        `json:"success"`
	Response interface{} `json:"response"`
	Error    interface{} `json:"error"`
}

// OK wraps a successful response.
func OK(response interface{}) Envelope {
	return Envelope{Success: true, Response: response}
}
