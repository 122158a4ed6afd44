package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"cinetrack/internal/domain"
	"cinetrack/internal/repository"
)

type mockAccountRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.Account
	byEmail map[string]string
	// id de cuenta -> jti del token de recuperación vigente
	resetTokens map[string]string
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		byID:        make(map[string]domain.Account),
		byEmail:     make(map[string]string),
		resetTokens: make(map[string]string),
	}
}

func (m *mockAccountRepo) Create(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[account.Email]; ok {
		return repository.ErrDuplicate
	}
	m.byID[account.ID] = account
	m.byEmail[account.Email] = account.ID
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return account, nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockAccountRepo) update(id string, fn func(*domain.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&account)
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) UpdateProfile(_ context.Context, id string, update repository.AccountUpdate) error {
	return m.update(id, func(a *domain.Account) {
		if update.Name != nil {
			a.Name = *update.Name
		}
		if update.Email != nil {
			delete(m.byEmail, a.Email)
			a.Email = *update.Email
			m.byEmail[a.Email] = id
		}
		if update.Img != nil {
			a.Img = *update.Img
		}
	})
}

func (m *mockAccountRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	err := m.update(id, func(a *domain.Account) {
		a.PasswordHash = passwordHash
		a.PasswordChangedAt = changedAt
	})
	m.mu.Lock()
	delete(m.resetTokens, id)
	m.mu.Unlock()
	return err
}

func (m *mockAccountRepo) SetResetToken(_ context.Context, id, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	m.resetTokens[id] = tokenID
	return nil
}

func (m *mockAccountRepo) ConsumeResetToken(_ context.Context, id, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.resetTokens[id]
	if !ok || current == "" || current != tokenID {
		return false, nil
	}
	delete(m.resetTokens, id)
	return true, nil
}

func (m *mockAccountRepo) SetResetCode(_ context.Context, id, codeHash string, expiresAt *time.Time) error {
	return m.update(id, func(a *domain.Account) {
		a.ResetCodeHash = codeHash
		a.ResetCodeExpiresAt = expiresAt
	})
}

func (m *mockAccountRepo) ConsumeResetCode(_ context.Context, id, codeHash string) (bool, error) {
	consumed := false
	err := m.update(id, func(a *domain.Account) {
		if a.ResetCodeHash != "" && a.ResetCodeHash == codeHash {
			a.ResetCodeHash = ""
			a.ResetCodeExpiresAt = nil
			consumed = true
		}
	})
	return consumed, err
}

func (m *mockAccountRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	delete(m.byEmail, account.Email)
	return nil
}

// mockCatalog cubre MovieRepository y LibraryRepository para los tests de handlers.
type mockCatalog struct {
	mu      sync.Mutex
	order   []string
	movies  map[string]domain.Movie
	lists   map[string][]string
	ratings map[string]map[string]float64
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		movies:  make(map[string]domain.Movie),
		lists:   make(map[string][]string),
		ratings: make(map[string]map[string]float64),
	}
}

func (c *mockCatalog) all() []domain.Movie {
	out := make([]domain.Movie, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.movies[id])
	}
	return out
}

func (c *mockCatalog) List(_ context.Context, _ repository.MovieSort) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.all(), nil
}

func (c *mockCatalog) FindByTitle(_ context.Context, title string, _ repository.MovieSort) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Movie
	for _, m := range c.all() {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(title)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *mockCatalog) GetByID(_ context.Context, id string) (domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.movies[id]
	if !ok {
		return domain.Movie{}, pgx.ErrNoRows
	}
	return m, nil
}

func (c *mockCatalog) Create(_ context.Context, movie domain.Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.movies {
		if m.Title == movie.Title {
			return repository.ErrDuplicate
		}
	}
	c.order = append(c.order, movie.ID)
	c.movies[movie.ID] = movie
	return nil
}

func (c *mockCatalog) Update(_ context.Context, movie domain.Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.movies[movie.ID]; !ok {
		return pgx.ErrNoRows
	}
	c.movies[movie.ID] = movie
	return nil
}

func (c *mockCatalog) ListIDs(_ context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...), nil
}

func (c *mockCatalog) RatingStats(_ context.Context, id string) (float64, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.movies[id]; !ok {
		return 0, 0, pgx.ErrNoRows
	}
	var sum float64
	for _, r := range c.ratings[id] {
		sum += r
	}
	return sum, len(c.ratings[id]), nil
}

func (c *mockCatalog) SetAvgRating(_ context.Context, id string, avg *float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.movies[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.AvgRating = avg
	c.movies[id] = m
	return nil
}

func listKeyOf(userID string, list domain.ListKind) string {
	return userID + "|" + string(list)
}

func (c *mockCatalog) AddToList(_ context.Context, userID string, list domain.ListKind, movieID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := listKeyOf(userID, list)
	for _, id := range c.lists[key] {
		if id == movieID {
			return nil
		}
	}
	c.lists[key] = append(c.lists[key], movieID)
	return nil
}

func (c *mockCatalog) RemoveFromList(_ context.Context, userID string, list domain.ListKind, movieID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := listKeyOf(userID, list)
	var kept []string
	for _, id := range c.lists[key] {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	c.lists[key] = kept
	return nil
}

func (c *mockCatalog) ListMovieIDs(_ context.Context, userID string, list domain.ListKind) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lists[listKeyOf(userID, list)]...), nil
}

func (c *mockCatalog) ListMovies(_ context.Context, userID string, list domain.ListKind) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Movie
	for _, id := range c.lists[listKeyOf(userID, list)] {
		out = append(out, c.movies[id])
	}
	return out, nil
}

func (c *mockCatalog) UnseenMovies(_ context.Context, userID string) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool)
	for _, id := range c.lists[listKeyOf(userID, domain.ListSeen)] {
		seen[id] = true
	}
	var out []domain.Movie
	for _, m := range c.all() {
		if !seen[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *mockCatalog) UpsertRating(_ context.Context, userID, movieID string, rating float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ratings[movieID] == nil {
		c.ratings[movieID] = make(map[string]float64)
	}
	c.ratings[movieID][userID] = rating
	return nil
}

func (c *mockCatalog) DeleteRating(_ context.Context, userID, movieID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ratings[movieID], userID)
	return nil
}

func (c *mockCatalog) UserRatings(_ context.Context, userID string) ([]domain.UserRating, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.UserRating
	for _, id := range c.order {
		if r, ok := c.ratings[id][userID]; ok {
			out = append(out, domain.UserRating{MovieID: id, Rating: r})
		}
	}
	return out, nil
}

func (c *mockCatalog) RatedMovies(_ context.Context, userID string) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Movie
	for _, id := range c.order {
		if _, ok := c.ratings[id][userID]; ok {
			out = append(out, c.movies[id])
		}
	}
	return out, nil
}

type mockQuoteRepo struct {
	mu     sync.Mutex
	quotes []domain.Quote
}

func (m *mockQuoteRepo) Create(_ context.Context, quote domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = append(m.quotes, quote)
	return nil
}

func (m *mockQuoteRepo) LatestSince(_ context.Context, since time.Time) (domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.quotes) - 1; i >= 0; i-- {
		if !m.quotes[i].CreatedAt.Before(since) {
			return m.quotes[i], nil
		}
	}
	return domain.Quote{}, pgx.ErrNoRows
}

type mockEmailSender struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	err      error
}

func (m *mockEmailSender) SendPasswordReset(_ context.Context, toEmail, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastCode = code
	return m.err
}
