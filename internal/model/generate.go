package model

// MaxPromptLength is the longest prompt accepted, in characters.
const MaxPromptLength = 5000

// GenerateRequest is the body of POST /generate (JSON or form encoded).
type GenerateRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
	Model  string `json:"model" form:"model"`
}

// GenerateResponse is returned on a successful generation.
type GenerateResponse struct {
	Response string `json:"response"`
}

// PhoneRequest is the body of POST /login and POST /register.
type PhoneRequest struct {
	Phone string `json:"phone" form:"phone"`
}
