package models

import "regexp"

// Symbol is a canonical, uppercase instrument token.
type Symbol string

func (s Symbol) String() string { return string(s) }

// SourceKind tags which provider family serves a symbol.
type SourceKind int

const (
	SourceEquity SourceKind = iota
	SourceCryptoPair
)

func (k SourceKind) String() string {
	switch k {
	case SourceCryptoPair:
		return "crypto_pair"
	default:
		return "equity"
	}
}

var pairPattern = regexp.MustCompile(`^[A-Z0-9-]+/[A-Z0-9-]+$`)

// IsPair reports whether s is a canonical BASE/QUOTE pair.
func IsPair(s string) bool {
	return pairPattern.MatchString(s)
}
