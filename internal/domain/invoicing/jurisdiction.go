package invoicing

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// DeriveJurisdiction compara el estado del cliente con el estado sede sin
// distinguir mayúsculas: igual → in-state, distinto → out-state.
func DeriveJurisdiction(clientState, homeState string) entity.TaxJurisdiction {
	// Un Caser no se comparte entre goroutines.
	fold := cases.Fold()
	a := fold.String(strings.TrimSpace(clientState))
	fold.Reset()
	b := fold.String(strings.TrimSpace(homeState))
	if a == b {
		return entity.JurisdictionInState
	}
	return entity.JurisdictionOutState
}
