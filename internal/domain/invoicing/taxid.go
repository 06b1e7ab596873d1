package invoicing

import (
	"regexp"
	"strings"

	"github.com/jhoicas/billing-api/internal/domain"
)

var (
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// ValidateGSTIN valida el formato del GSTIN. Vacío es válido (opcional).
func ValidateGSTIN(gstin string) error {
	if gstin == "" {
		return nil
	}
	if !gstinPattern.MatchString(gstin) {
		return domain.NewValidationError("gstin", "formato inválido")
	}
	return nil
}

// ValidatePAN valida el formato del PAN. Vacío es válido (opcional).
func ValidatePAN(pan string) error {
	if pan == "" {
		return nil
	}
	if !panPattern.MatchString(pan) {
		return domain.NewValidationError("pan", "formato inválido")
	}
	return nil
}

// NormalizeTaxID recorta espacios y pasa a mayúsculas.
func NormalizeTaxID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeSKU recorta espacios y pasa a mayúsculas; el SKU es único sin distinguir mayúsculas.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
