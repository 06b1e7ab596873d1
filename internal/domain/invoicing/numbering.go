package invoicing

import "fmt"

// FormatInvoiceNumber INV-{año}-{n con relleno a 4 dígitos}.
// El relleno es cosmético: a partir de 9999 el número se imprime completo.
func FormatInvoiceNumber(year int, n int64) string {
	return fmt.Sprintf("INV-%d-%04d", year, n)
}
