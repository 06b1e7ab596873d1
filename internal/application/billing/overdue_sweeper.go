package billing

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

const sweepBatchSize = 200

// OverdueSweeper marca como overdue las facturas sent con due_date vencida.
// Cada cambio pasa por la máquina de estados del motor; nunca toca otros estados.
type OverdueSweeper struct {
	cron        *cron.Cron
	engine      *InvoiceUseCase
	invoiceRepo repository.InvoiceRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewOverdueSweeper construye el barrido.
func NewOverdueSweeper(engine *InvoiceUseCase, invoiceRepo repository.InvoiceRepository, log zerolog.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		cron:        cron.New(),
		engine:      engine,
		invoiceRepo: invoiceRepo,
		log:         log.With().Str("component", "overdue_sweeper").Logger(),
		now:         time.Now,
	}
}

// Start programa el barrido con una expresión cron (ej: "@hourly", "0 2 * * *").
func (s *OverdueSweeper) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Run(ctx); err != nil {
			s.log.Error().Err(err).Msg("barrido de vencidas fallido")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("spec", spec).Msg("barrido de vencidas programado")
	return nil
}

// Stop detiene el cron y espera a que termine la ejecución en curso.
func (s *OverdueSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Run ejecuta un barrido completo y devuelve cuántas facturas pasaron a overdue.
// Una factura cuyo estado cambió entre la consulta y la escritura se omite.
func (s *OverdueSweeper) Run(ctx context.Context) (int, error) {
	y, m, d := s.now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	moved := 0
	for {
		candidates, err := s.invoiceRepo.ListOverdueCandidates(ctx, today, sweepBatchSize)
		if err != nil {
			return moved, err
		}
		progressed := 0
		for _, inv := range candidates {
			if _, err := s.engine.transition(ctx, inv.ID, entity.InvoiceStatusOverdue); err != nil {
				if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
					s.log.Warn().Str("invoice_id", inv.ID).Err(err).Msg("factura omitida en el barrido")
					continue
				}
				return moved, err
			}
			progressed++
		}
		moved += progressed
		if len(candidates) < sweepBatchSize || progressed == 0 {
			break
		}
	}

	s.log.Info().Int("moved", moved).Time("as_of", today).Msg("barrido de vencidas completado")
	return moved, nil
}
