package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cinetrack/internal/domain"
	"cinetrack/internal/repository"
)

const quoteWindow = 7 * 24 * time.Hour

// quoteEpoch marca la semana cero de la rotación de citas incluidas.
var quoteEpoch = time.Date(2021, time.November, 14, 0, 0, 0, 0, time.UTC)

var builtinQuotes = []domain.Quote{
	{Quote: `"I never disrobe before gunplay."`, Subquote: "-John Miltion, 'Drive Angry'"},
	{Quote: `"Cause I was made for this sewer baby and I am the king."`, Subquote: "-Rick Santoro, 'Snake Eyes'."},
	{Quote: `"Put the bunny back in the box."`, Subquote: "-Cameron Poe, 'Con Air'."},
	{Quote: `"What's in the bag? A shark or something?"`, Subquote: "-Edward Malus, 'The Wicker Man'."},
	{Quote: `"Shoot him again... His soul's still dancing."`, Subquote: "-Terence McDonagh, 'Bad Lieutenant: Port Of Call'"},
	{Quote: `"I did a bare 360 triple backflip in front of twenty-two thousand people. It's kind of funny, it's on YouTube, check it out"`, Subquote: "-Johnny Blaze, 'Ghost Rider: Spirit Of Vengeance'"},
	{Quote: `"I just stole fifty cars in one night! I'm a little tired, little wired, and I think I deserve a little appreciation!"`, Subquote: "-Randall 'Memphis' Raines, 'Gone In Sixty Seconds'"},
	{Quote: `"Bangers and mash! Bubbles and squeak! Smoked eel pie! Haggis!"`, Subquote: "-Ben Gates, 'National Treasure 2: Book Of Secrets'"},
	{Quote: `"Honey? Uh... You wanna know who really killed JFK?"`, Subquote: "-Stanley Godspeed, 'Rock'"},
	{Quote: `"You'll be seeing a lot of changes around here. Papa's got a brand new bag."`, Subquote: "-Castor Troy, 'Face/Off'"},
	{Quote: `"I'll be taking these Huggies and whatever cash ya got."`, Subquote: "-H.I., 'Raising Arizona'."},
	{Quote: `"People don't throw things at me anymore. Maybe because I carry a bow around."`, Subquote: "-David Spritz, 'The Weather Man'."},
}

type QuoteService struct {
	logger *zap.Logger
	quotes repository.QuoteRepository
	now    func() time.Time
}

func NewQuoteService(logger *zap.Logger, quotes repository.QuoteRepository) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{logger: logger, quotes: quotes, now: time.Now}
}

type QuoteInput struct {
	Quote    string `json:"quote" validate:"required,min=1,max=255"`
	Subquote string `json:"subquote" validate:"required,min=1,max=128"`
}

// Current devuelve la cita cargada durante la última semana o, si no hay,
// la cita incluida que corresponde a la semana actual.
func (s *QuoteService) Current(ctx context.Context) (domain.Quote, error) {
	now := s.now().UTC()
	quote, err := s.quotes.LatestSince(ctx, now.Add(-quoteWindow))
	if err == nil {
		return quote, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, fmt.Errorf("latest quote: %w", err)
	}
	return weeklyQuote(now), nil
}

func (s *QuoteService) Create(ctx context.Context, input QuoteInput) (domain.Quote, error) {
	input.Quote = strings.TrimSpace(input.Quote)
	input.Subquote = strings.TrimSpace(input.Subquote)
	if err := validateStruct(input); err != nil {
		return domain.Quote{}, err
	}
	quote := domain.Quote{
		ID:        uuid.NewString(),
		Quote:     input.Quote,
		Subquote:  input.Subquote,
		CreatedAt: s.now().UTC(),
	}
	if err := s.quotes.Create(ctx, quote); err != nil {
		return domain.Quote{}, fmt.Errorf("create quote: %w", err)
	}
	s.logger.Info("quote created", zap.String("quote_id", quote.ID))
	return quote, nil
}

func weeklyQuote(now time.Time) domain.Quote {
	weeks := int64(now.Sub(quoteEpoch) / (quoteWindow))
	if weeks < 0 {
		weeks = -weeks
	}
	return builtinQuotes[weeks%int64(len(builtinQuotes))]
}
