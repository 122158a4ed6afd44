package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinetrack/internal/domain"
	"cinetrack/internal/service"
)

// LibraryHandler expone las listas y puntajes del usuario autenticado.
type LibraryHandler struct {
	logger  *zap.Logger
	library *service.LibraryService
}

func NewLibraryHandler(logger *zap.Logger, library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{logger: logger, library: library}
}

// registerList monta GET/PUT/DELETE para una lista.
func (h *LibraryHandler) registerList(g *gin.RouterGroup, list domain.ListKind) {
	path := "/" + string(list)
	g.GET(path, h.getList(list))
	g.PUT(path, h.addToList(list))
	g.DELETE(path, h.removeFromList(list))
}

func (h *LibraryHandler) getList(list domain.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := mustIdentity(c)
		if !ok {
			return
		}
		movies, err := h.library.ListMovies(c.Request.Context(), identity, list)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, movies)
	}
}

func (h *LibraryHandler) addToList(list domain.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := mustIdentity(c)
		if !ok {
			return
		}
		var req service.MovieActionInput
		if !bindJSON(c, h.logger, &req, false) {
			return
		}
		if err := h.library.AddToList(c.Request.Context(), identity, list, req); err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

func (h *LibraryHandler) removeFromList(list domain.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := mustIdentity(c)
		if !ok {
			return
		}
		var req service.MovieActionInput
		if !bindJSON(c, h.logger, &req, false) {
			return
		}
		if err := h.library.RemoveFromList(c.Request.Context(), identity, list, req); err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// Unseen maneja GET /api/users/unseen.
func (h *LibraryHandler) Unseen(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	movies, err := h.library.Unseen(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// Rated maneja GET /api/users/rate.
func (h *LibraryHandler) Rated(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	movies, err := h.library.RatedMovies(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// Rate maneja PUT /api/users/rate.
func (h *LibraryHandler) Rate(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req service.RateMovieInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	if err := h.library.Rate(c.Request.Context(), identity, req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// DeleteRating maneja DELETE /api/users/rate.
func (h *LibraryHandler) DeleteRating(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req service.MovieActionInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	if err := h.library.DeleteRating(c.Request.Context(), identity, req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// Filtered maneja POST /api/users/filteredMovies.
func (h *LibraryHandler) Filtered(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req service.FilterMoviesInput
	if !bindJSON(c, h.logger, &req, true) {
		return
	}
	movies, err := h.library.Filtered(c.Request.Context(), identity, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}
