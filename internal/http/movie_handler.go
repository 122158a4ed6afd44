package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cinetrack/internal/service"
)

// MovieHandler expone el catálogo y la cita semanal.
type MovieHandler struct {
	logger *zap.Logger
	movies *service.MovieService
	quotes *service.QuoteService
}

func NewMovieHandler(logger *zap.Logger, movies *service.MovieService, quotes *service.QuoteService) *MovieHandler {
	return &MovieHandler{logger: logger, movies: movies, quotes: quotes}
}

// List maneja GET /api/movies.
func (h *MovieHandler) List(c *gin.Context) {
	movies, err := h.movies.List(c.Request.Context(), service.SortInput{})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// ListSorted maneja POST /api/movies/getMovies.
func (h *MovieHandler) ListSorted(c *gin.Context) {
	var req service.SortInput
	if !bindJSON(c, h.logger, &req, true) {
		return
	}
	movies, err := h.movies.List(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// FindByID maneja GET /api/movies/findByID/:id.
func (h *MovieHandler) FindByID(c *gin.Context) {
	movie, err := h.movies.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// FindByTitleParam maneja GET /api/movies/findByTitle/:title.
func (h *MovieHandler) FindByTitleParam(c *gin.Context) {
	movies, err := h.movies.FindByTitle(c.Request.Context(), service.FindByTitleInput{Title: c.Param("title")})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// FindByTitle maneja POST /api/movies/findByTitle.
func (h *MovieHandler) FindByTitle(c *gin.Context) {
	var req service.FindByTitleInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	movies, err := h.movies.FindByTitle(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// Create maneja POST /api/movies (admin).
func (h *MovieHandler) Create(c *gin.Context) {
	var req service.MovieInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	movie, err := h.movies.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// Update maneja PUT /api/movies/:id (admin).
func (h *MovieHandler) Update(c *gin.Context) {
	var req service.MovieInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	if err := h.movies.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// AverageRating maneja GET /api/movies/avgRating/:id; el body es el número.
func (h *MovieHandler) AverageRating(c *gin.Context) {
	avg, err := h.movies.AverageRating(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, strconv.FormatFloat(avg, 'f', -1, 64))
}

// RefreshAll maneja GET /api/movies/updateRatings.
func (h *MovieHandler) RefreshAll(c *gin.Context) {
	if err := h.movies.RefreshAllAverages(c.Request.Context()); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// RefreshOne maneja PUT /api/movies/updateRating/:id.
func (h *MovieHandler) RefreshOne(c *gin.Context) {
	if err := h.movies.RefreshAverage(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// Quote maneja GET /api/movies/quote.
func (h *MovieHandler) Quote(c *gin.Context) {
	quote, err := h.quotes.Current(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// CreateQuote maneja POST /api/movies/quote (admin).
func (h *MovieHandler) CreateQuote(c *gin.Context) {
	var req service.QuoteInput
	if !bindJSON(c, h.logger, &req, false) {
		return
	}
	quote, err := h.quotes.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
