package types

// GitHubToken is a personal access token or app token used as a bearer
// credential. Values of this type are redacted from logs.
type GitHubToken string

func (t GitHubToken) String() string {
	return string(t)
}

// IsEmpty reports whether no token was provided.
func (t GitHubToken) IsEmpty() bool {
	return t == ""
}
