package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cinetrack/internal/domain"
	"cinetrack/internal/repository"
)

// MovieService expone el catálogo y mantiene los promedios de puntaje.
type MovieService struct {
	logger *zap.Logger
	movies repository.MovieRepository
	now    func() time.Time
}

func NewMovieService(logger *zap.Logger, movies repository.MovieRepository) *MovieService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovieService{logger: logger, movies: movies, now: time.Now}
}

type SortInput struct {
	Category  string `json:"category"`
	Direction any    `json:"direction"`
}

type FindByTitleInput struct {
	Title string `json:"title" validate:"max=100"`
	SortInput
}

type MovieInput struct {
	Title       string   `json:"title" validate:"required,min=1,max=100"`
	Director    string   `json:"director" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"max=512"`
	Date        string   `json:"date" validate:"required,min=1,max=100"`
	Runtime     string   `json:"runtime" validate:"required,min=1,max=100"`
	Rating      string   `json:"rating" validate:"required,min=1,max=100"`
	Img         string   `json:"img" validate:"max=100"`
	Genres      []string `json:"genres" validate:"omitempty,dive,min=1,max=100"`
	AvgRating   *float64 `json:"avgRating" validate:"omitempty,gte=0,lte=10"`
}

var sortCategories = map[string]repository.MovieSortField{
	"director":  repository.SortByDirector,
	"title":     repository.SortByTitle,
	"date":      repository.SortByDate,
	"runtime":   repository.SortByRuntime,
	"rating":    repository.SortByRating,
	"avgrating": repository.SortByAvgRating,
	"createdon": repository.SortByCreatedAt,
}

// ParseSort acepta category/direction al estilo de los clientes existentes:
// direction puede ser "asc", "desc", "ascending", "descending", 1 o -1.
// Sin category se ordena por director ascendente.
func ParseSort(input SortInput) (repository.MovieSort, error) {
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" || input.Direction == nil {
		return repository.MovieSort{}, nil
	}
	field, ok := sortCategories[category]
	if !ok {
		return repository.MovieSort{}, ValidationError{Message: fmt.Sprintf("cannot sort by %q", input.Category)}
	}

	var desc bool
	switch d := input.Direction.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "asc", "ascending", "1":
		case "desc", "descending", "-1":
			desc = true
		default:
			return repository.MovieSort{}, ValidationError{Message: fmt.Sprintf("invalid sort direction %q", d)}
		}
	case float64:
		switch d {
		case 1:
		case -1:
			desc = true
		default:
			return repository.MovieSort{}, ValidationError{Message: fmt.Sprintf("invalid sort direction %v", d)}
		}
	case int:
		switch d {
		case 1:
		case -1:
			desc = true
		default:
			return repository.MovieSort{}, ValidationError{Message: fmt.Sprintf("invalid sort direction %d", d)}
		}
	default:
		return repository.MovieSort{}, ValidationError{Message: "invalid sort direction"}
	}
	return repository.MovieSort{Field: field, Desc: desc}, nil
}

func (s *MovieService) List(ctx context.Context, input SortInput) ([]domain.Movie, error) {
	sort, err := ParseSort(input)
	if err != nil {
		return nil, err
	}
	movies, err := s.movies.List(ctx, sort)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return nonNil(movies), nil
}

func (s *MovieService) FindByID(ctx context.Context, id string) (domain.Movie, error) {
	movie, err := s.movies.GetByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Movie{}, ErrMovieNotFound
	}
	if err != nil {
		return domain.Movie{}, fmt.Errorf("load movie: %w", err)
	}
	return movie, nil
}

// FindByTitle busca por subcadena sin distinguir mayúsculas.
func (s *MovieService) FindByTitle(ctx context.Context, input FindByTitleInput) ([]domain.Movie, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	sort, err := ParseSort(input.SortInput)
	if err != nil {
		return nil, err
	}

	var movies []domain.Movie
	if input.Title == "" {
		movies, err = s.movies.List(ctx, sort)
	} else {
		movies, err = s.movies.FindByTitle(ctx, input.Title, sort)
	}
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	return nonNil(movies), nil
}

func (s *MovieService) Create(ctx context.Context, input MovieInput) (domain.Movie, error) {
	input = trimMovieInput(input)
	if err := validateStruct(input); err != nil {
		return domain.Movie{}, err
	}

	movie := domain.Movie{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Director:    input.Director,
		Description: input.Description,
		Date:        input.Date,
		Runtime:     input.Runtime,
		Rating:      input.Rating,
		Img:         input.Img,
		Genres:      nonNil(input.Genres),
		AvgRating:   input.AvgRating,
		Ratings:     []domain.MovieRating{},
		CreatedAt:   s.now().UTC(),
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Movie{}, ErrDuplicateMovie
		}
		return domain.Movie{}, fmt.Errorf("create movie: %w", err)
	}
	s.logger.Info("movie created", zap.String("movie_id", movie.ID), zap.String("title", movie.Title))
	return movie, nil
}

func (s *MovieService) Update(ctx context.Context, id string, input MovieInput) error {
	input = trimMovieInput(input)
	if err := validateStruct(input); err != nil {
		return err
	}
	err := s.movies.Update(ctx, domain.Movie{
		ID:          strings.TrimSpace(id),
		Title:       input.Title,
		Director:    input.Director,
		Description: input.Description,
		Date:        input.Date,
		Runtime:     input.Runtime,
		Rating:      input.Rating,
		Img:         input.Img,
		Genres:      nonNil(input.Genres),
		AvgRating:   input.AvgRating,
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrMovieNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateMovie
	case err != nil:
		return fmt.Errorf("update movie: %w", err)
	}
	return nil
}

// AverageRating calcula el promedio en vivo, redondeado a un decimal; 0 sin puntajes.
func (s *MovieService) AverageRating(ctx context.Context, id string) (float64, error) {
	sum, count, err := s.movies.RatingStats(ctx, strings.TrimSpace(id))
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrMovieNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("rating stats: %w", err)
	}
	return averageRating(sum, count), nil
}

// RefreshAverage guarda en la película el promedio actual de sus puntajes.
func (s *MovieService) RefreshAverage(ctx context.Context, id string) error {
	avg, err := s.AverageRating(ctx, id)
	if err != nil {
		return err
	}
	if err := s.movies.SetAvgRating(ctx, strings.TrimSpace(id), &avg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMovieNotFound
		}
		return fmt.Errorf("store average: %w", err)
	}
	return nil
}

// RefreshAllAverages recalcula todos los promedios con concurrencia acotada.
func (s *MovieService) RefreshAllAverages(ctx context.Context) error {
	ids, err := s.movies.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list movie ids: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		g.Go(func() error {
			err := s.RefreshAverage(gCtx, id)
			// Una película borrada a mitad del recorrido no es un error.
			if errors.Is(err, ErrMovieNotFound) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("movie averages refreshed", zap.Int("movies", len(ids)))
	return nil
}

func averageRating(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(sum/float64(count)*10) / 10
}

func trimMovieInput(in MovieInput) MovieInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Director = strings.TrimSpace(in.Director)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	in.Runtime = strings.TrimSpace(in.Runtime)
	in.Rating = strings.TrimSpace(in.Rating)
	in.Img = strings.TrimSpace(in.Img)
	return in
}
