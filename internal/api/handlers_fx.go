package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lightgroove/internal/colorfx"
)

func (h *Handler) HandleGetColors(c echo.Context) error {
	return c.JSON(http.StatusOK, h.color.Palette().Map())
}

// HandleReloadColors rereads the palette file and swaps it into the engine.
func (h *Handler) HandleReloadColors(c echo.Context) error {
	p, err := colorfx.LoadPalette(h.palettePath)
	if err != nil {
		return NewInternalError("failed to reload colors", err)
	}
	h.color.ReloadPalette(p)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "colors": p.Names()})
}

func (h *Handler) HandleFXStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.color.Status())
}

// HandleFXStart starts {"fx": name}, random when omitted.
func (h *Handler) HandleFXStart(c echo.Context) error {
	req := struct {
		FX string `json:"fx"`
	}{FX: "random"}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := h.color.Start(req.FX); err != nil {
		return effectError(err, colorfx.ErrUnknownEffect)
	}
	return c.JSON(http.StatusOK, h.color.Status())
}

func (h *Handler) HandleFXStop(c echo.Context) error {
	h.color.Stop()
	return c.JSON(http.StatusOK, h.color.Status())
}

func (h *Handler) HandleGetFXBPM(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"bpm": h.color.Status().BPM})
}

func (h *Handler) HandleFXBPM(c echo.Context) error {
	req := struct {
		BPM int `json:"bpm"`
	}{BPM: colorfx.DefaultBPM}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	h.color.SetBPM(req.BPM)
	return c.JSON(http.StatusOK, h.color.Status())
}

func (h *Handler) HandleGetFXFade(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]float64{"fade_percentage": h.color.Status().FadePercentage})
}

// HandleFXFade takes the fade as a fraction of the beat, 0.0-1.0.
func (h *Handler) HandleFXFade(c echo.Context) error {
	req := struct {
		Fade float64 `json:"fade_percentage"`
	}{}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	h.color.SetFadePercentage(req.Fade)
	return c.JSON(http.StatusOK, h.color.Status())
}
