package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lightgroove/internal/movefx"
)

func (h *Handler) HandleMoveStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.move.Status())
}

func (h *Handler) HandleMoveStart(c echo.Context) error {
	req := struct {
		FX string `json:"fx"`
	}{}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	err := h.move.Start(req.FX)
	if errors.Is(err, movefx.ErrNoMovingFixtures) {
		return NewConflictError(err.Error())
	}
	if err != nil {
		return effectError(err, movefx.ErrUnknownEffect)
	}
	return c.JSON(http.StatusOK, h.move.Status())
}

func (h *Handler) HandleMoveStop(c echo.Context) error {
	h.move.Stop()
	return c.JSON(http.StatusOK, h.move.Status())
}

func (h *Handler) HandleMoveBPM(c echo.Context) error {
	req := struct {
		BPM int `json:"bpm"`
	}{BPM: movefx.DefaultBPM}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	h.move.SetBPM(req.BPM)
	return c.JSON(http.StatusOK, h.move.Status())
}

// HandleMoveCenter updates either axis, keeping the other.
func (h *Handler) HandleMoveCenter(c echo.Context) error {
	req := struct {
		Pan  *float64 `json:"pan"`
		Tilt *float64 `json:"tilt"`
	}{}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	st := h.move.Status()
	pan, tilt := st.CenterPan, st.CenterTilt
	if req.Pan != nil {
		pan = *req.Pan
	}
	if req.Tilt != nil {
		tilt = *req.Tilt
	}
	h.move.SetCenter(pan, tilt)
	return c.JSON(http.StatusOK, h.move.Status())
}

func (h *Handler) HandleMoveSize(c echo.Context) error {
	v, err := bindValue(c)
	if err != nil {
		return err
	}
	h.move.SetSize(v)
	return c.JSON(http.StatusOK, h.move.Status())
}

func (h *Handler) HandleMovePhase(c echo.Context) error {
	v, err := bindValue(c)
	if err != nil {
		return err
	}
	h.move.SetPhase(v)
	return c.JSON(http.StatusOK, h.move.Status())
}

func (h *Handler) HandleMoveSpeed(c echo.Context) error {
	v, err := bindValue(c)
	if err != nil {
		return err
	}
	h.move.SetSpeed(v)
	return c.JSON(http.StatusOK, h.move.Status())
}
