package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// ChatGPTAccountID pulls the chatgpt_account_id claim out of an id_token's
// payload segment, looking top-level first and then under the namespaced
// auth claim. Best-effort: any malformed input yields an empty string,
// never an error.
func ChatGPTAccountID(idToken string) string {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return ""
	}

	payload, err := decodeBase64URLSegment(parts[1])
	if err != nil {
		return ""
	}

	var claims struct {
		ChatGPTAccountID string `json:"chatgpt_account_id"`
		Auth             struct {
			ChatGPTAccountID string `json:"chatgpt_account_id"`
		} `json:"https://api.openai.com/auth"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}

	if claims.ChatGPTAccountID != "" {
		return claims.ChatGPTAccountID
	}
	return claims.Auth.ChatGPTAccountID
}

func decodeBase64URLSegment(segment string) ([]byte, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(segment); err == nil {
		return decoded, nil
	}
	return base64.URLEncoding.DecodeString(segment)
}
