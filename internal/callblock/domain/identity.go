package domain

// Identity is the result of a caller-ID / contact lookup.
type Identity struct {
	Number        string // normalized number the identity was found under
	Name          string
	ContactExists bool
}
