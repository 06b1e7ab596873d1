package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/application/usecase"
)

// AnalyticsHandler maneja los reportes de ingresos por período.
type AnalyticsHandler struct {
	uc *usecase.AnalyticsUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *usecase.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetRevenue godoc
// @Summary      Reporte de ingresos del período con ranking de clientes y productos (Pareto 80/20)
// @Description  Facturado vs cobrado, ranking de clientes por monto facturado y de productos
//               por ingreso de líneas. Marca los clientes que concentran ~80% de lo facturado.
// @Tags         analytics
// @Produce      json
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date    query  string  false  "Fin del período (YYYY-MM-DD). Default: hoy."
// @Param        top_n       query  int     false  "Máx. filas por ranking (default 20, max 200)."
// @Success      200  {object}  dto.RevenueReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/analytics/revenue [get]
func (h *AnalyticsHandler) GetRevenue(c *fiber.Ctx) error {
	var req dto.RevenueReportRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}

	report, err := h.uc.GetRevenueReport(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
