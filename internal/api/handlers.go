package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"lightgroove/internal/colorfx"
	"lightgroove/internal/fixture"
	"lightgroove/internal/logger"
)

// Handler handles API requests.
type Handler struct {
	log         logger.Logger
	dmx         DMX
	fixtures    Fixtures
	color       ColorFX
	move        MoveFX
	palettePath string
	version     string

	// flash holds the states saved by a flash until it is released.
	flashMu sync.Mutex
	flash   fixture.States
}

// NewHandler creates a new API handler.
func NewHandler(log logger.Logger, deps Dependencies) *Handler {
	return &Handler{
		log:         log,
		dmx:         deps.DMX,
		fixtures:    deps.Fixtures,
		color:       deps.Color,
		move:        deps.Move,
		palettePath: deps.PalettePath,
		version:     deps.Version,
	}
}

func (h *Handler) logger() *logger.Log {
	return h.log.With(logger.Fields{"module": "http"})
}

type colorRequest struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	W float64 `json:"w"`
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

type positionRequest struct {
	Name string   `json:"name"`
	Pan  *float64 `json:"pan"`
	Tilt *float64 `json:"tilt"`
}

var empty = map[string]any{}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
	})
}

// HandleGetFixtures lists the patch.
func (h *Handler) HandleGetFixtures(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"fixtures": h.fixtures.Fixtures()})
}

// HandleGetStates returns the logical channel values of every fixture.
func (h *Handler) HandleGetStates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.fixtures.SaveCurrentStates())
}

func (h *Handler) fixtureID(c echo.Context) (string, error) {
	id := c.Param("id")
	if !h.fixtures.Exists(id) {
		return "", NewNotFoundError("fixture", id)
	}
	return id, nil
}

func bindValue(c echo.Context) (float64, error) {
	var req valueRequest
	if err := c.Bind(&req); err != nil {
		return 0, NewBadRequestError("invalid request body", err)
	}
	if req.Value == nil {
		return 0, NewBadRequestError("value is required", nil)
	}
	return *req.Value, nil
}

func (h *Handler) HandleFixtureColor(c echo.Context) error {
	id, err := h.fixtureID(c)
	if err != nil {
		return err
	}
	var req colorRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	h.fixtures.SetFixtureColor(id, req.R, req.G, req.B, req.W)
	return c.JSON(http.StatusOK, empty)
}

// HandleFixtureDimmer sets the dimmer as a manual level.
func (h *Handler) HandleFixtureDimmer(c echo.Context) error {
	id, err := h.fixtureID(c)
	if err != nil {
		return err
	}
	v, err := bindValue(c)
	if err != nil {
		return err
	}
	h.fixtures.SetFixtureDimmer(id, v, true)
	return c.JSON(http.StatusOK, empty)
}

func (h *Handler) HandleFixtureChannel(c echo.Context) error {
	id, err := h.fixtureID(c)
	if err != nil {
		return err
	}
	name := c.Param("name")
	if !h.fixtures.HasChannel(id, name) {
		return NewNotFoundError("channel", name)
	}
	v, err := bindValue(c)
	if err != nil {
		return err
	}
	h.fixtures.SetFixtureChannel(id, name, v)
	return c.JSON(http.StatusOK, empty)
}

// HandleFixturePosition accepts a named position or explicit pan and tilt.
func (h *Handler) HandleFixturePosition(c echo.Context) error {
	id, err := h.fixtureID(c)
	if err != nil {
		return err
	}
	var req positionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	switch {
	case req.Pan != nil && req.Tilt != nil:
		h.fixtures.SetPanTilt(id, *req.Pan, *req.Tilt)
	case req.Name != "":
		if _, known := fixture.Positions[req.Name]; !known {
			return NewBadRequestError("unknown position: "+req.Name, nil)
		}
		h.fixtures.SetFixturePosition(id, req.Name)
	default:
		return NewBadRequestError("name or pan and tilt are required", nil)
	}
	return c.JSON(http.StatusOK, empty)
}

func (h *Handler) HandleGetGrandmaster(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]float64{"level": h.dmx.Grandmaster()})
}

// HandleSetGrandmaster changes the level and rewrites all stored values through it.
func (h *Handler) HandleSetGrandmaster(c echo.Context) error {
	var req struct {
		Level *float64 `json:"level"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	level := 1.0
	if req.Level != nil {
		level = *req.Level
	}
	h.dmx.SetGrandmaster(level)
	h.fixtures.ReapplyAllStates()
	return c.JSON(http.StatusOK, map[string]float64{"level": h.dmx.Grandmaster()})
}

func (h *Handler) HandleBlackout(c echo.Context) error {
	h.fixtures.BlackoutAll()
	return c.JSON(http.StatusOK, empty)
}

// HandleAllColor paints every fixture and reports the palette name if it matches one.
func (h *Handler) HandleAllColor(c echo.Context) error {
	var req colorRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	for _, id := range h.fixtures.List() {
		h.fixtures.SetFixtureColor(id, req.R, req.G, req.B, req.W)
	}
	if name, found := h.color.Palette().Match(colorfx.Color(req)); found {
		h.color.SetCurrentColors(name)
	}
	return c.JSON(http.StatusOK, empty)
}

// HandleFlash turns every fixture full white, {"on": false} restores what was there.
func (h *Handler) HandleFlash(c echo.Context) error {
	req := struct {
		On *bool `json:"on"`
	}{}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	on := req.On == nil || *req.On

	h.flashMu.Lock()
	defer h.flashMu.Unlock()
	switch {
	case on && h.flash == nil:
		h.flash = h.fixtures.SaveCurrentStates()
		h.fixtures.FlashAllWhite()
	case !on && h.flash != nil:
		h.fixtures.RestoreStates(h.flash)
		h.flash = nil
	}
	return c.JSON(http.StatusOK, map[string]bool{"on": h.flash != nil})
}

func (h *Handler) HandleGetUniverses(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"universes": h.dmx.Universes()})
}

// HandleGetUniverse returns the raw 512 byte buffer of one universe.
func (h *Handler) HandleGetUniverse(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewBadRequestError("invalid universe id", err)
	}
	data, found := h.dmx.Snapshot(id)
	if !found {
		return NewNotFoundError("universe", c.Param("id"))
	}
	values := make([]int, len(data))
	for i, v := range data {
		values[i] = int(v)
	}
	return c.JSON(http.StatusOK, map[string]any{"id": id, "data": values})
}

// effectError maps engine errors to API errors.
func effectError(err error, known ...error) error {
	for _, k := range known {
		if errors.Is(err, k) {
			return NewBadRequestError(err.Error(), nil)
		}
	}
	return NewInternalError("effect failed", err)
}
