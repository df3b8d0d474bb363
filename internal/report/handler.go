package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lims/lims/internal/domain/billing"
	"github.com/lims/lims/internal/domain/booking"
	"github.com/lims/lims/internal/domain/patient"
	"github.com/lims/lims/internal/domain/results"
	"github.com/lims/lims/internal/platform/auth"
)

type PatientReader interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type BookingReader interface {
	Get(ctx context.Context, id uuid.UUID) (*booking.Registration, error)
}

type ResultsReader interface {
	Saved(ctx context.Context, registrationID uuid.UUID) (map[string]results.SavedTest, error)
}

type InvoiceReader interface {
	Get(ctx context.Context, id uuid.UUID) (*billing.Invoice, error)
}

type Handler struct {
	gen      *Generator
	patients PatientReader
	bookings BookingReader
	results  ResultsReader
	invoices InvoiceReader
}

func NewHandler(gen *Generator, patients PatientReader, bookings BookingReader, res ResultsReader, invoices InvoiceReader) *Handler {
	return &Handler{gen: gen, patients: patients, bookings: bookings, results: res, invoices: invoices}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "reception", "lab_tech"))
	g.GET("/registrations/:id/report.pdf", h.LabReport)
	g.GET("/invoices/:id/invoice.pdf", h.InvoicePDF)
}

// LabReport streams the saved results of a registration as a PDF.
func (h *Handler) LabReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	ctx := c.Request().Context()
	reg, err := h.bookings.Get(ctx, id)
	if errors.Is(err, booking.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "registration not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pat, err := h.patients.Get(ctx, reg.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	saved, err := h.results.Saved(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(saved) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no results saved for registration")
	}
	pdf, err := h.gen.BuildLabReport(pat, saved)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="report-%s.pdf"`, pat.MRN))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// InvoicePDF streams an invoice with its payment history as a PDF.
func (h *Handler) InvoicePDF(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid invoice id")
	}
	ctx := c.Request().Context()
	inv, err := h.invoices.Get(ctx, id)
	if errors.Is(err, billing.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pat, err := h.patients.Get(ctx, inv.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pdf, err := h.gen.BuildInvoice(inv, pat)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="invoice-%s.pdf"`, shortID(inv.ID.String())))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
