// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	DMX         DMX
	Fixtures    Fixtures
	Color       ColorFX
	Move        MoveFX
	PalettePath string
	Version     string
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.HandleHealth)

	api := e.Group("/api")
	api.GET("/fixtures", h.HandleGetFixtures)
	api.GET("/states", h.HandleGetStates)
	api.GET("/colors", h.HandleGetColors)
	api.POST("/colors/reload", h.HandleReloadColors)
	api.GET("/grandmaster", h.HandleGetGrandmaster)
	api.POST("/grandmaster", h.HandleSetGrandmaster)
	api.POST("/blackout", h.HandleBlackout)
	api.POST("/all/color", h.HandleAllColor)
	api.POST("/flash", h.HandleFlash)
	api.GET("/universes", h.HandleGetUniverses)
	api.GET("/universes/:id", h.HandleGetUniverse)

	fixtureGroup := api.Group("/fixture/:id")
	fixtureGroup.POST("/color", h.HandleFixtureColor)
	fixtureGroup.POST("/dimmer", h.HandleFixtureDimmer)
	fixtureGroup.POST("/channel/:name", h.HandleFixtureChannel)
	fixtureGroup.POST("/position", h.HandleFixturePosition)

	fxGroup := api.Group("/fx")
	fxGroup.GET("/status", h.HandleFXStatus)
	fxGroup.POST("/start", h.HandleFXStart)
	fxGroup.POST("/stop", h.HandleFXStop)
	fxGroup.GET("/bpm", h.HandleGetFXBPM)
	fxGroup.POST("/bpm", h.HandleFXBPM)
	fxGroup.GET("/fadetime", h.HandleGetFXFade)
	fxGroup.POST("/fadetime", h.HandleFXFade)

	moveGroup := api.Group("/move")
	moveGroup.GET("/status", h.HandleMoveStatus)
	moveGroup.POST("/start", h.HandleMoveStart)
	moveGroup.POST("/stop", h.HandleMoveStop)
	moveGroup.POST("/bpm", h.HandleMoveBPM)
	moveGroup.POST("/center", h.HandleMoveCenter)
	moveGroup.POST("/size", h.HandleMoveSize)
	moveGroup.POST("/phase", h.HandleMovePhase)
	moveGroup.POST("/speed", h.HandleMoveSpeed)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
	}))
}
