package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cinetrack/internal/domain"
	"cinetrack/internal/repository"
)

// LibraryService maneja watchlist, favoritos, vistas y puntajes del usuario.
type LibraryService struct {
	logger   *zap.Logger
	accounts repository.AccountRepository
	movies   repository.MovieRepository
	library  repository.LibraryRepository
	catalog  *MovieService
}

func NewLibraryService(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	movies repository.MovieRepository,
	library repository.LibraryRepository,
	catalog *MovieService,
) *LibraryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibraryService{
		logger:   logger,
		accounts: accounts,
		movies:   movies,
		library:  library,
		catalog:  catalog,
	}
}

type MovieActionInput struct {
	ID string `json:"id" validate:"required"`
}

type RateMovieInput struct {
	ID     string   `json:"id" validate:"required"`
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=10"`
}

type FilterMoviesInput struct {
	Unseen    bool `json:"unseen"`
	Watchlist bool `json:"watchlist"`
	Mandy     bool `json:"mandy"`
}

const mandyTitle = "Mandy"

func (s *LibraryService) ListMovies(ctx context.Context, identity Identity, list domain.ListKind) ([]domain.Movie, error) {
	if !list.Valid() {
		return nil, ValidationError{Message: fmt.Sprintf("unknown list %q", list)}
	}
	account, err := resolveAccount(ctx, s.accounts, identity)
	if err != nil {
		return nil, err
	}
	movies, err := s.library.ListMovies(ctx, account.ID, list)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", list, err)
	}
	return nonNil(movies), nil
}

// AddToList no duplica entradas: agregar dos veces deja una sola.
func (s *LibraryService) AddToList(ctx context.Context, identity Identity, list domain.ListKind, input MovieActionInput) error {
	if !list.Valid() {
		return ValidationError{Message: fmt.Sprintf("unknown list %q", list)}
	}
	input.ID = strings.TrimSpace(input.ID)
	if err := validateStruct(input); err != nil {
		return err
	}
	account, err := resolveAccount(ctx, s.accounts, identity)
	if err != nil {
		return err
	}
	if err := s.requireMovie(ctx, input.ID); err != nil {
		return err
	}
	if err := s.library.AddToList(ctx, account.ID, list, input.ID); err != nil {
		return fmt.Errorf("add to %s: %w", list, err)
	}
	return nil
}

func (s *LibraryService) RemoveFromList(ctx context.Context, identity Identity, list domain.ListKind, input MovieActionInput) error {
	if !list.Valid() {
		return ValidationError{Message: fmt.Sprintf("unknown list %q", list)}
	}
	input.ID = strings.TrimSpace(input.ID)
	if err := validateStruct(input); err != nil {
		return err
	}
	account, err := resolveAccount(ctx, s.accounts, identity)
	if err != nil {
		return err
	}
	if err := s.library.RemoveFromList(ctx, account.ID, list, input.ID); err != nil {
		return fmt.Errorf("remove from %s: %w", list, err)
	}
	return nil
}

func (s *LibraryService) Unseen(ctx context.Context, identity Identity) ([]domain.Movie, error) {
	account, err := resolveAccount(ctx, s.accounts, identity)
	if err != nil {
		return nil, err
	}
	movies, err := s.library.UnseenMovies(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list unseen: %w", err)
	}
	return nonNil(movies), nil
}

func (s *LibraryService) RatedMovies(ctx context.Context, identity Identity) ([]domain.Movie, error) {
	account, err := resolveAccount(ctx, s.accounts, identity)
	if err != nil {
		return nil, err
	}
	movies, err := s.library.RatedMovies(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list rated: %w", err)
	}
	return nonNil(movies), nil
}

// Rate reemplaza el puntaje previo y recalcula el promedio guardado.
func (s *LibraryService) Rate(ctx context.Context, identity Identity, input RateMovieInput) error {
	input.ID = strings.TrimSpace(input.ID)
	if err := validateStruct(input); err != nil {
		return err
	}
	account, err := resolveAccount(ctx, s.accounts, identity)
	if err != nil {
		return err
	}
	if err := s.requireMovie(ctx, input.ID); err != nil {
		return err
	}
	if err := s.library.UpsertRating(ctx, account.ID, input.ID, *input.Rating); err != nil {
		return fmt.Errorf("rate movie: %w", err)
	}
	return s.catalog.RefreshAverage(ctx, input.ID)
}

func (s *LibraryService) DeleteRating(ctx context.Context, identity Identity, input MovieActionInput) error {
	input.ID = strings.TrimSpace(input.ID)
	if err := validateStruct(input); err != nil {
		return err
	}
	account, err := resolveAccount(ctx, s.accounts, identity)
	if err != nil {
		return err
	}
	if err := s.requireMovie(ctx, input.ID); err != nil {
		return err
	}
	if err := s.library.DeleteRating(ctx, account.ID, input.ID); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return s.catalog.RefreshAverage(ctx, input.ID)
}

// Filtered aplica los filtros activos en conjunto sobre el catálogo completo.
func (s *LibraryService) Filtered(ctx context.Context, identity Identity, input FilterMoviesInput) ([]domain.Movie, error) {
	account, err := resolveAccount(ctx, s.accounts, identity)
	if err != nil {
		return nil, err
	}
	movies, err := s.movies.List(ctx, repository.MovieSort{})
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	var seen, watchlist map[string]struct{}
	if input.Unseen {
		if seen, err = s.idSet(ctx, account.ID, domain.ListSeen); err != nil {
			return nil, err
		}
	}
	if input.Watchlist {
		if watchlist, err = s.idSet(ctx, account.ID, domain.ListWatchlist); err != nil {
			return nil, err
		}
	}

	filtered := make([]domain.Movie, 0, len(movies))
	for _, m := range movies {
		// unseen deja fuera lo que ya está en seen.
		if input.Unseen {
			if _, ok := seen[m.ID]; ok {
				continue
			}
		}
		if input.Watchlist {
			if _, ok := watchlist[m.ID]; !ok {
				continue
			}
		}
		if input.Mandy && m.Title != mandyTitle {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered, nil
}

func (s *LibraryService) idSet(ctx context.Context, userID string, list domain.ListKind) (map[string]struct{}, error) {
	ids, err := s.library.ListMovieIDs(ctx, userID, list)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", list, err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *LibraryService) requireMovie(ctx context.Context, id string) error {
	_, err := s.movies.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMovieNotFound
	}
	if err != nil {
		return fmt.Errorf("load movie: %w", err)
	}
	return nil
}
