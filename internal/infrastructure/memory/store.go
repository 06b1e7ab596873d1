// Package memory implementa los puertos de persistencia en memoria para los
// tests de casos de uso y handlers. Replica las restricciones del esquema
// PostgreSQL: índices únicos, FK restrict, CAS de estado, guarda de facturas
// pagadas y rollback de transacción.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu        sync.Mutex
	txMu      sync.Mutex // serializa RunInvoice (equivalente al lock de fila)
	clients   map[string]*entity.Client
	products  map[string]*entity.Product
	invoices  map[string]*entity.Invoice
	sequences map[int]int64

	failInvoiceUpdate error
	failAfter         int // Updates que aún se aceptan antes de fallar
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		clients:   map[string]*entity.Client{},
		products:  map[string]*entity.Product{},
		invoices:  map[string]*entity.Invoice{},
		sequences: map[int]int64{},
	}
}

// FailInvoiceUpdates hace que InvoiceRepo.Update acepte after escrituras y
// luego devuelva err hasta que se llame con nil. Sirve para simular fallos a
// mitad de transacción.
func (s *Store) FailInvoiceUpdates(err error, after int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInvoiceUpdate = err
	s.failAfter = after
}

// Clients repositorio de clientes.
func (s *Store) Clients() *ClientRepo { return &ClientRepo{s: s} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Invoices repositorio de facturas.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }

// Sequences contador de numeración.
func (s *Store) Sequences() *SequenceRepo { return &SequenceRepo{s: s} }

// Analytics consultas del dashboard.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

// TxRunner runner transaccional sobre este store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	cp.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	return &cp
}

func cloneClient(c *entity.Client) *entity.Client {
	cp := *c
	return &cp
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

// containsFold equivalente a ILIKE '%q%'.
func containsFold(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(q))
}

// paginate aplica LIMIT/OFFSET sobre una lista ya ordenada.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortInvoices(list []*entity.Invoice) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].InvoiceDate.Equal(list[j].InvoiceDate) {
			return list[i].InvoiceDate.After(list[j].InvoiceDate)
		}
		return list[i].InvoiceNumber > list[j].InvoiceNumber
	})
}
