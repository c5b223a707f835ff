package dto

import (
	"fmt"
	"strings"
)

// Market identifies the exchange group a symbol trades on.
type Market string

const (
	MarketAShares  Market = "a_shares"
	MarketHongKong Market = "hk"
	MarketUS       Market = "us"
)

// Currency returns the ISO currency code prices are quoted in.
func (m Market) Currency() string {
	switch m {
	case MarketHongKong:
		return "HKD"
	case MarketUS:
		return "USD"
	default:
		return "CNY"
	}
}

// Symbol is a validated instrument code. The zero value is invalid.
type Symbol struct {
	code   string
	market Market
}

// ParseSymbol normalizes and validates raw. Accepted forms are six digit
// A-share codes starting with 0, 3 or 6, five digit Hong Kong codes, one to
// five letter US tickers, each optionally suffixed with .SH, .SZ, .HK or .US.
// Codes starting with 6 list in Shanghai, 0 and 3 in Shenzhen.
func ParseSymbol(raw string) (Symbol, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Symbol{}, NewError(KindValidation, raw, "symbol is empty", nil)
	}

	code, suffix := s, ""
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		code, suffix = s[:i], s[i+1:]
	}

	market, ok := detectMarket(code)
	if !ok {
		return Symbol{}, NewError(KindValidation, raw, fmt.Sprintf("malformed symbol %q", raw), nil)
	}

	switch suffix {
	case "":
	case "SH", "SZ":
		if market != MarketAShares || aShareExchange(code) != suffix {
			return Symbol{}, NewError(KindValidation, raw, fmt.Sprintf("suffix .%s does not match code %q", suffix, code), nil)
		}
	case "HK":
		if market != MarketHongKong {
			return Symbol{}, NewError(KindValidation, raw, fmt.Sprintf("suffix .HK does not match code %q", code), nil)
		}
	case "US":
		if market != MarketUS {
			return Symbol{}, NewError(KindValidation, raw, fmt.Sprintf("suffix .US does not match code %q", code), nil)
		}
	default:
		return Symbol{}, NewError(KindValidation, raw, fmt.Sprintf("unknown exchange suffix .%s", suffix), nil)
	}

	return Symbol{code: code, market: market}, nil
}

// MustParseSymbol is ParseSymbol for literals in tests and fixtures.
func MustParseSymbol(raw string) Symbol {
	s, err := ParseSymbol(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func detectMarket(code string) (Market, bool) {
	switch {
	case len(code) == 6 && allDigits(code) && strings.ContainsRune("036", rune(code[0])):
		return MarketAShares, true
	case len(code) == 5 && allDigits(code):
		return MarketHongKong, true
	case len(code) >= 1 && len(code) <= 5 && allLetters(code):
		return MarketUS, true
	}
	return "", false
}

// aShareExchange returns the exchange suffix an A-share code lists under.
func aShareExchange(code string) string {
	if strings.HasPrefix(code, "6") {
		return "SH"
	}
	return "SZ"
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Code returns the bare code without exchange suffix.
func (s Symbol) Code() string { return s.code }

// Market returns the market the symbol belongs to.
func (s Symbol) Market() Market { return s.market }

// String returns the bare code.
func (s Symbol) String() string { return s.code }

// IsZero reports whether s was never parsed.
func (s Symbol) IsZero() bool { return s.code == "" }

// MarshalText encodes the symbol as its code.
func (s Symbol) MarshalText() ([]byte, error) { return []byte(s.code), nil }

// UnmarshalText parses and validates the code.
func (s *Symbol) UnmarshalText(b []byte) error {
	parsed, err := ParseSymbol(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
