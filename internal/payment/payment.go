package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCardDeclined      = errors.New("card declined")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidCard       = errors.New("invalid card details")
)

type Card struct {
	Number     string
	Expiry     string // MM/YY
	CVV        string
	HolderName string
}

type Request struct {
	Amount   decimal.Decimal
	Currency string
	Card     Card
}

// Intent is an authorized payment reference passed along with order
// creation and later confirmed per order.
type Intent struct {
	ID        string
	Amount    decimal.Decimal
	Currency  string
	CreatedAt time.Time
}

// Provider is the payment gateway boundary. A real integration is a
// drop-in replacement for the mock.
type Provider interface {
	Authorize(ctx context.Context, req Request) (*Intent, error)
}

// MockGateway simulates a gateway using the test-card convention: the
// card number's trailing digits select the outcome.
type MockGateway struct {
	log *slog.Logger
}

func NewMockGateway(log *slog.Logger) *MockGateway {
	return &MockGateway{log: log}
}

var cvvPattern = regexp.MustCompile(`^\d{3,4}$`)

func (g *MockGateway) Authorize(_ context.Context, req Request) (*Intent, error) {
	number := strings.ReplaceAll(req.Card.Number, " ", "")
	if len(number) < 12 {
		return nil, fmt.Errorf("%w: card number too short", ErrInvalidCard)
	}
	if !cvvPattern.MatchString(req.Card.CVV) {
		return nil, fmt.Errorf("%w: bad cvv", ErrInvalidCard)
	}
	if err := checkExpiry(req.Card.Expiry); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive amount", ErrInvalidCard)
	}

	switch {
	case strings.HasSuffix(number, "0002"):
		return nil, ErrCardDeclined
	case strings.HasSuffix(number, "9995"):
		return nil, ErrInsufficientFunds
	}

	intent := &Intent{
		ID:        "pi_" + uuid.NewString(),
		Amount:    req.Amount,
		Currency:  req.Currency,
		CreatedAt: time.Now(),
	}
	g.log.Info("payment authorized", "intent_id", intent.ID, "amount", req.Amount.String())
	return intent, nil
}

func checkExpiry(expiry string) error {
	t, err := time.Parse("01/06", expiry)
	if err != nil {
		return fmt.Errorf("%w: bad expiry %q", ErrInvalidCard, expiry)
	}
	// Valid through the end of the stated month.
	endOfMonth := t.AddDate(0, 1, 0)
	if time.Now().After(endOfMonth) {
		return fmt.Errorf("%w: card expired", ErrInvalidCard)
	}
	return nil
}
