package results

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lims/lims/internal/domain/booking"
	"github.com/lims/lims/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "lab_tech"))
	g.GET("/registrations/:id/entry", h.Entry)
	g.GET("/registrations/:id/results", h.Saved)
	g.POST("/registrations/:id/results", h.Save)
	g.POST("/registrations/:id/results/recompute", h.Recompute)
	g.POST("/registrations/:id/results/fill-remainder", h.FillRemainder)
	g.GET("/tests/:name/parameters/:param/suggestions", h.Suggest)
}

// Entry returns the seeded data-entry sheet for a registration.
func (h *Handler) Entry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	sess, err := h.svc.BuildSession(c.Request().Context(), id)
	if errors.Is(err, booking.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "registration not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entryResponse(sess))
}

// entryView decorates a session with the derived flags the entry screen
// renders: out-of-range per parameter and over-limit per sum group.
type entryView struct {
	*EntrySession
	OutOfRange map[string]bool `json:"out_of_range"`
	GroupFlags map[string]bool `json:"group_flags"`
}

func entryResponse(sess *EntrySession) entryView {
	oor := map[string]bool{}
	for ti := range sess.Tests {
		t := &sess.Tests[ti]
		for pi := range t.Parameters {
			p := &t.Parameters[pi]
			if p.OutOfRange() {
				oor[t.TestKey+"/"+p.Name] = true
			}
			for si := range p.SubParameters {
				if p.SubParameters[si].OutOfRange() {
					oor[t.TestKey+"/"+p.Name+"/"+p.SubParameters[si].Name] = true
				}
			}
		}
	}
	return entryView{EntrySession: sess, OutOfRange: oor, GroupFlags: sess.CheckGroupSums()}
}

// Save coerces and persists the posted session state. Group-sum violations
// are reported but do not block the save.
func (h *Handler) Save(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	var sess EntrySession
	if err := c.Bind(&sess); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess.RegistrationID = id
	enteredBy := auth.OperatorNameFromContext(c.Request().Context())
	if err := h.svc.Save(c.Request().Context(), &sess, enteredBy); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"saved":       true,
		"group_flags": sess.CheckGroupSums(),
	})
}

// Saved returns everything stored for a registration, keyed by test key.
func (h *Handler) Saved(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	saved, err := h.svc.Saved(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, saved)
}

// Recompute re-evaluates every formula in the posted session state and
// returns the updated sheet without persisting it.
func (h *Handler) Recompute(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	var sess EntrySession
	if err := c.Bind(&sess); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess.RegistrationID = id
	sess.RecomputeAllFormulas()
	return c.JSON(http.StatusOK, entryResponse(&sess))
}

// FillRemainder writes 100 minus the sum of the other members into the last
// member of a must-sum-to-100 group and returns the updated sheet.
func (h *Handler) FillRemainder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	var body struct {
		EntrySession
		TestIndex       int `json:"test_index"`
		SubheadingIndex int `json:"subheading_index"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	body.RegistrationID = id
	if _, err := body.FillRemainder(body.TestIndex, body.SubheadingIndex); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, entryResponse(&body.EntrySession))
}

// Suggest returns autocomplete candidates for a text parameter.
func (h *Handler) Suggest(c echo.Context) error {
	matches, err := h.svc.Suggest(c.Request().Context(),
		c.Param("name"), c.Param("param"), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, matches)
}
