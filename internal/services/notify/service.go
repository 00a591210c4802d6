// Package notify renders and dispatches the matchmaking emails.
package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"go.uber.org/zap"

	"github.com/ZoeWilliams/donationswap/internal/domain/model"
	pgrepo "github.com/ZoeWilliams/donationswap/internal/repo/postgres"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	subjectSuggested = "We may have found a matching donation for you"
	subjectDeal      = "Here is your match!"

	// Substituted whenever a charity has no donation instructions for a
	// country yet. A missing entry must never fail the send.
	missingInstructions = "Sorry, there are no instructions available (yet)."
)

type Mailer interface {
	Send(ctx context.Context, subject, textBody, htmlBody string, to []string) error
}

type Converter interface {
	Convert(ctx context.Context, amount int64, fromISO, toISO string) (int64, error)
}

type CharityStore interface {
	FindByID(ctx context.Context, id int64) (model.Charity, error)
	FindInstructions(ctx context.Context, charityID, countryID int64) (string, error)
}

type CountryStore interface {
	FindByID(ctx context.Context, id int64) (model.Country, error)
}

type Service struct {
	mailer    Mailer
	converter Converter
	charities CharityStore
	countries CountryStore
	logger    *zap.Logger

	suggestedText *texttemplate.Template
	suggestedHTML *htmltemplate.Template
	dealText      *texttemplate.Template
	dealHTML      *htmltemplate.Template
}

type Dependencies struct {
	Mailer    Mailer
	Converter Converter
	Charities CharityStore
	Countries CountryStore
	Logger    *zap.Logger
}

func NewService(deps Dependencies) (*Service, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	suggestedText, err := texttemplate.ParseFS(templateFS, "templates/match-suggested-email.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse suggested text template: %w", err)
	}
	suggestedHTML, err := htmltemplate.ParseFS(templateFS, "templates/match-suggested-email.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse suggested html template: %w", err)
	}
	dealText, err := texttemplate.ParseFS(templateFS, "templates/match-approved-email.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse deal text template: %w", err)
	}
	dealHTML, err := htmltemplate.ParseFS(templateFS, "templates/match-approved-email.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse deal html template: %w", err)
	}

	return &Service{
		mailer:        deps.Mailer,
		converter:     deps.Converter,
		charities:     deps.Charities,
		countries:     deps.Countries,
		logger:        logger,
		suggestedText: suggestedText,
		suggestedHTML: suggestedHTML,
		dealText:      dealText,
		dealHTML:      dealHTML,
	}, nil
}

type suggestedData struct {
	YourCountry          string
	YourCharity          string
	YourAmount           int64
	YourCurrency         string
	TheirCountry         string
	TheirCharity         string
	TheirAmount          int64
	TheirCurrency        string
	TheirAmountConverted int64
	Secret               string
}

// SendSuggested mails one side of a proposed match. The counterpart's
// email address must not appear anywhere in the message; addresses are
// disclosed only after both sides agree.
func (s *Service) SendSuggested(ctx context.Context, mine, theirs model.Offer, matchSecret string) error {
	if s.mailer == nil || s.converter == nil || s.charities == nil || s.countries == nil {
		return fmt.Errorf("notify dependencies are not configured")
	}

	myCountry, err := s.countries.FindByID(ctx, mine.CountryID)
	if err != nil {
		return fmt.Errorf("resolve recipient country %d: %w", mine.CountryID, err)
	}
	myCharity, err := s.charities.FindByID(ctx, mine.CharityID)
	if err != nil {
		return fmt.Errorf("resolve recipient charity %d: %w", mine.CharityID, err)
	}
	theirCountry, err := s.countries.FindByID(ctx, theirs.CountryID)
	if err != nil {
		return fmt.Errorf("resolve counterpart country %d: %w", theirs.CountryID, err)
	}
	theirCharity, err := s.charities.FindByID(ctx, theirs.CharityID)
	if err != nil {
		return fmt.Errorf("resolve counterpart charity %d: %w", theirs.CharityID, err)
	}

	theirAmountConverted, err := s.converter.Convert(ctx, theirs.Amount, theirCountry.Currency.ISO, myCountry.Currency.ISO)
	if err != nil {
		return fmt.Errorf("convert counterpart amount: %w", err)
	}

	data := suggestedData{
		YourCountry:          myCountry.Name,
		YourCharity:          myCharity.Name,
		YourAmount:           mine.Amount,
		YourCurrency:         myCountry.Currency.ISO,
		TheirCountry:         theirCountry.Name,
		TheirCharity:         theirCharity.Name,
		TheirAmount:          theirs.Amount,
		TheirCurrency:        theirCountry.Currency.ISO,
		TheirAmountConverted: theirAmountConverted,
		// The recipient proves ownership of the offer and names the match
		// with one combined token.
		Secret: mine.Secret + matchSecret,
	}

	textBody, htmlBody, err := s.renderSuggested(data)
	if err != nil {
		return err
	}

	s.logger.Info("sending match suggestion email", zap.Int64("offer_id", mine.ID))
	if err := s.mailer.Send(ctx, subjectSuggested, textBody, htmlBody, []string{mine.Email}); err != nil {
		return fmt.Errorf("send suggested email: %w", err)
	}

	return nil
}

type dealData struct {
	OldCountry         string
	OldCharity         string
	OldAmount          int64
	OldCurrency        string
	OldEmail           string
	OldAmountConverted int64
	OldInstructions    string
	NewCountry         string
	NewCharity         string
	NewAmount          int64
	NewCurrency        string
	NewEmail           string
	NewAmountConverted int64
	NewInstructions    string
}

// SendDeal mails both parties of a fully agreed match in one message,
// disclosing the email addresses to each other.
func (s *Service) SendDeal(ctx context.Context, oldOffer, newOffer model.Offer) error {
	if s.mailer == nil || s.converter == nil || s.charities == nil || s.countries == nil {
		return fmt.Errorf("notify dependencies are not configured")
	}

	oldCountry, err := s.countries.FindByID(ctx, oldOffer.CountryID)
	if err != nil {
		return fmt.Errorf("resolve old country %d: %w", oldOffer.CountryID, err)
	}
	oldCharity, err := s.charities.FindByID(ctx, oldOffer.CharityID)
	if err != nil {
		return fmt.Errorf("resolve old charity %d: %w", oldOffer.CharityID, err)
	}
	newCountry, err := s.countries.FindByID(ctx, newOffer.CountryID)
	if err != nil {
		return fmt.Errorf("resolve new country %d: %w", newOffer.CountryID, err)
	}
	newCharity, err := s.charities.FindByID(ctx, newOffer.CharityID)
	if err != nil {
		return fmt.Errorf("resolve new charity %d: %w", newOffer.CharityID, err)
	}

	oldAmountConverted, err := s.converter.Convert(ctx, oldOffer.Amount, oldCountry.Currency.ISO, newCountry.Currency.ISO)
	if err != nil {
		return fmt.Errorf("convert old amount: %w", err)
	}
	newAmountConverted, err := s.converter.Convert(ctx, newOffer.Amount, newCountry.Currency.ISO, oldCountry.Currency.ISO)
	if err != nil {
		return fmt.Errorf("convert new amount: %w", err)
	}

	// Instruction lookups follow the long-standing production pairing:
	// the old side reads (new charity, new country), the new side reads
	// (old charity, new country).
	oldInstructions, err := s.instructions(ctx, newOffer.CharityID, newOffer.CountryID)
	if err != nil {
		return err
	}
	newInstructions, err := s.instructions(ctx, oldOffer.CharityID, newOffer.CountryID)
	if err != nil {
		return err
	}

	data := dealData{
		OldCountry:         oldCountry.Name,
		OldCharity:         oldCharity.Name,
		OldAmount:          oldOffer.Amount,
		OldCurrency:        oldCountry.Currency.ISO,
		OldEmail:           oldOffer.Email,
		OldAmountConverted: oldAmountConverted,
		OldInstructions:    oldInstructions,
		NewCountry:         newCountry.Name,
		NewCharity:         newCharity.Name,
		NewAmount:          newOffer.Amount,
		NewCurrency:        newCountry.Currency.ISO,
		NewEmail:           newOffer.Email,
		NewAmountConverted: newAmountConverted,
		NewInstructions:    newInstructions,
	}

	textBody, htmlBody, err := s.renderDeal(data)
	if err != nil {
		return err
	}

	s.logger.Info("sending deal email",
		zap.Int64("old_offer_id", oldOffer.ID),
		zap.Int64("new_offer_id", newOffer.ID),
	)
	if err := s.mailer.Send(ctx, subjectDeal, textBody, htmlBody, []string{oldOffer.Email, newOffer.Email}); err != nil {
		return fmt.Errorf("send deal email: %w", err)
	}

	return nil
}

func (s *Service) instructions(ctx context.Context, charityID, countryID int64) (string, error) {
	instructions, err := s.charities.FindInstructions(ctx, charityID, countryID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInstructionsNotFound) {
			return missingInstructions, nil
		}
		return "", fmt.Errorf("resolve donation instructions: %w", err)
	}
	return instructions, nil
}

func (s *Service) renderSuggested(data suggestedData) (string, string, error) {
	var textBuf bytes.Buffer
	if err := s.suggestedText.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("render suggested text body: %w", err)
	}

	var htmlBuf bytes.Buffer
	if err := s.suggestedHTML.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("render suggested html body: %w", err)
	}

	return textBuf.String(), htmlBuf.String(), nil
}

func (s *Service) renderDeal(data dealData) (string, string, error) {
	var textBuf bytes.Buffer
	if err := s.dealText.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("render deal text body: %w", err)
	}

	var htmlBuf bytes.Buffer
	if err := s.dealHTML.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("render deal html body: %w", err)
	}

	return textBuf.String(), htmlBuf.String(), nil
}
