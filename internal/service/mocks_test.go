package service

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
	byID        map[string]domain.Account
	byEmail     map[string]string
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
	if _, ok := m.byEmail[account.Email]; ok {
		return repository.ErrDuplicate
	}
	m.byID[account.ID] = account
	m.byEmail[account.Email] = account.ID
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	account, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return account, nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockAccountRepo) UpdateProfile(_ context.Context, id string, update repository.AccountUpdate) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Email != nil && *update.Email != account.Email {
		if _, taken := m.byEmail[*update.Email]; taken {
			return repository.ErrDuplicate
		}
		delete(m.byEmail, account.Email)
		account.Email = *update.Email
		m.byEmail[account.Email] = id
	}
	if update.Img != nil {
		account.Img = *update.Img
	}
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.PasswordHash = passwordHash
	account.PasswordChangedAt = changedAt
	m.byID[id] = account
	delete(m.resetTokens, id)
	return nil
}

func (m *mockAccountRepo) SetResetToken(_ context.Context, id, tokenID string) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	m.resetTokens[id] = tokenID
	return nil
}

func (m *mockAccountRepo) ConsumeResetToken(_ context.Context, id, tokenID string) (bool, error) {
	current, ok := m.resetTokens[id]
	if !ok || current == "" || current != tokenID {
		return false, nil
	}
	delete(m.resetTokens, id)
	return true, nil
}

func (m *mockAccountRepo) SetResetCode(_ context.Context, id, codeHash string, expiresAt *time.Time) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.ResetCodeHash = codeHash
	account.ResetCodeExpiresAt = expiresAt
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) ConsumeResetCode(_ context.Context, id, codeHash string) (bool, error) {
	account, ok := m.byID[id]
	if !ok || account.ResetCodeHash == "" || account.ResetCodeHash != codeHash {
		return false, nil
	}
	account.ResetCodeHash = ""
	account.ResetCodeExpiresAt = nil
	m.byID[id] = account
	return true, nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id string) error {
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	delete(m.byEmail, account.Email)
	return nil
}

type listKey struct {
	userID string
	list   domain.ListKind
}

// mockCatalog implementa MovieRepository y LibraryRepository sobre mapas.
type mockCatalog struct {
	mu       sync.Mutex
	order    []string
	movies   map[string]domain.Movie
	lists    map[listKey][]string
	ratings  map[string]map[string]float64 // movieID -> userID -> rating
	lastSort repository.MovieSort
}

func newMockCatalog(movies ...domain.Movie) *mockCatalog {
	c := &mockCatalog{
		movies:  make(map[string]domain.Movie),
		lists:   make(map[listKey][]string),
		ratings: make(map[string]map[string]float64),
	}
	for _, m := range movies {
		c.order = append(c.order, m.ID)
		c.movies[m.ID] = m
	}
	return c
}

func (c *mockCatalog) all() []domain.Movie {
	out := make([]domain.Movie, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.movies[id])
	}
	return out
}

func (c *mockCatalog) List(_ context.Context, sort repository.MovieSort) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSort = sort
	return c.all(), nil
}

func (c *mockCatalog) FindByTitle(_ context.Context, title string, sort repository.MovieSort) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSort = sort
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
	existing, ok := c.movies[movie.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, m := range c.movies {
		if id != movie.ID && m.Title == movie.Title {
			return repository.ErrDuplicate
		}
	}
	if movie.AvgRating == nil {
		movie.AvgRating = existing.AvgRating
	}
	movie.CreatedAt = existing.CreatedAt
	movie.Ratings = existing.Ratings
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

func (c *mockCatalog) AddToList(_ context.Context, userID string, list domain.ListKind, movieID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := listKey{userID, list}
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
	key := listKey{userID, list}
	kept := c.lists[key][:0]
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
	return append([]string(nil), c.lists[listKey{userID, list}]...), nil
}

func (c *mockCatalog) ListMovies(_ context.Context, userID string, list domain.ListKind) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Movie
	for _, id := range c.lists[listKey{userID, list}] {
		out = append(out, c.movies[id])
	}
	return out, nil
}

func (c *mockCatalog) UnseenMovies(_ context.Context, userID string) ([]domain.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool)
	for _, id := range c.lists[listKey{userID, domain.ListSeen}] {
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
	quotes []domain.Quote
}

func (m *mockQuoteRepo) Create(_ context.Context, quote domain.Quote) error {
	m.quotes = append(m.quotes, quote)
	return nil
}

func (m *mockQuoteRepo) LatestSince(_ context.Context, since time.Time) (domain.Quote, error) {
	var latest domain.Quote
	found := false
	for _, q := range m.quotes {
		if q.CreatedAt.Before(since) {
			continue
		}
		if !found || q.CreatedAt.After(latest.CreatedAt) {
			latest = q
			found = true
		}
	}
	if !found {
		return domain.Quote{}, pgx.ErrNoRows
	}
	return latest, nil
}

type mockEmailSender struct {
	calls       int
	lastTo      string
	lastCode    string
	lastExpires time.Time
	err         error
}

func (m *mockEmailSender) SendPasswordReset(_ context.Context, toEmail, code string, expiresAt time.Time) error {
	m.calls++
	m.lastTo = toEmail
	m.lastCode = code
	m.lastExpires = expiresAt
	return m.err
}
