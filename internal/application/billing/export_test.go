package billing

import "time"

// SetClock fija el reloj del motor en tests.
func (uc *InvoiceUseCase) SetClock(now func() time.Time) { uc.now = now }

// SetClock fija el reloj del barrido en tests.
func (s *OverdueSweeper) SetClock(now func() time.Time) { s.now = now }
