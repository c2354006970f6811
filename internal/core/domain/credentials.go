package domain

// TokenSource tells where the active map credential came from.
type TokenSource string

const (
	TokenFromEnv    TokenSource = "env"
	TokenFromStore  TokenSource = "stored"
	TokenFromDemo   TokenSource = "demo"
	TokenUnresolved TokenSource = "none"
)

type MapToken struct {
	Token  string      `json:"token"`
	Source TokenSource `json:"source"`
}

// Configured reports whether a credential is available at all.
func (t MapToken) Configured() bool {
	return t.Token != ""
}
