package usecase

import "time"

// SetClock fija el reloj del reporte en tests.
func (uc *AnalyticsUseCase) SetClock(now func() time.Time) { uc.now = now }
