package usecase

import (
	"regexp"
	"strings"

	"AlgoReport/internal/domain/models"
	"AlgoReport/pkg/config"
)

var separators = regexp.MustCompile(`[,|\s]+`)

// Resolver turns free-text symbol input into an ordered, deduplicated symbol list.
type Resolver struct {
	aliases map[string]string
}

// NewResolver copies the alias table; keys and values are uppercased.
func NewResolver(cfg config.Pipeline) *Resolver {
	aliases := make(map[string]string, len(cfg.Aliases))
	for k, v := range cfg.Aliases {
		aliases[strings.ToUpper(strings.TrimSpace(k))] = strings.ToUpper(strings.TrimSpace(v))
	}
	return &Resolver{aliases: aliases}
}

// Resolve never fails; malformed input just yields fewer symbols.
func (r *Resolver) Resolve(raw []string) []models.Symbol {
	var (
		out  []models.Symbol
		seen = make(map[models.Symbol]struct{})
	)
	add := func(tok string) {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			return
		}
		if !strings.Contains(tok, "/") {
			if alias, ok := r.aliases[tok]; ok {
				tok = alias
			}
		}
		sym := models.Symbol(tok)
		if _, dup := seen[sym]; dup {
			return
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}

	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		for _, piece := range separators.Split(item, -1) {
			if piece == "" {
				continue
			}
			if strings.Contains(piece, "/") && !models.IsPair(strings.ToUpper(piece)) {
				for _, part := range strings.Split(piece, "/") {
					add(part)
				}
				continue
			}
			add(piece)
		}
	}
	return out
}
