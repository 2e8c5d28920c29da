package categories

import (
	"strings"

	"github.com/budgetkit/budget/internal/model"
)

// Service provides lookups over the recommended category set. Membership is
// advisory: the ledger accepts any non-empty category.
type Service struct {
	byType map[model.TransactionType][]string
	index  map[model.TransactionType]map[string]string
}

// NewService creates a Service from a per-type category list. Blank and
// repeated names are dropped.
func NewService(set map[model.TransactionType][]string) *Service {
	s := &Service{
		byType: make(map[model.TransactionType][]string, len(set)),
		index:  make(map[model.TransactionType]map[string]string, len(set)),
	}
	for _, t := range model.Types {
		idx := make(map[string]string)
		var names []string
		for _, name := range set[t] {
			name = strings.TrimSpace(name)
			key := strings.ToLower(name)
			if name == "" {
				continue
			}
			if _, dup := idx[key]; dup {
				continue
			}
			idx[key] = name
			names = append(names, name)
		}
		s.byType[t] = names
		s.index[t] = idx
	}
	return s
}

// All returns every category, income first.
func (s *Service) All() []string {
	var out []string
	for _, t := range model.Types {
		out = append(out, s.byType[t]...)
	}
	return out
}

// ByType returns the recommended categories for t in display order.
func (s *Service) ByType(t model.TransactionType) []string {
	return s.byType[t]
}

// Lookup returns the canonical spelling of name for t.
// ("Expense", "food") -> "Food", true
func (s *Service) Lookup(t model.TransactionType, name string) (string, bool) {
	canon, ok := s.index[t][strings.ToLower(strings.TrimSpace(name))]
	return canon, ok
}

// Recommended reports whether name is in the recommended set for t.
func (s *Service) Recommended(t model.TransactionType, name string) bool {
	_, ok := s.Lookup(t, name)
	return ok
}
