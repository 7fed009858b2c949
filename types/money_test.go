package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMoneyDisplay(t *testing.T) {
	tests := []struct {
		name    string
		money   Money
		display string
	}{
		{"INR", INR(50000), "₹500.00"},
		{"INR lakh grouping", INR(10000000), "₹1,00,000.00"},
		{"INR crore grouping", INR(1234567890), "₹1,23,45,678.90"},
		{"INR negative", INR(-70000), "-₹700.00"},
		{"USD thousands grouping", USD(123456789), "$1,234,567.89"},
		{"EUR", EUR(19900), "€199.00"},
		{"JPY", JPY(1500), "¥1,500"},
		{"Zero INR", Zero("INR"), "₹0.00"},
		{"Unknown currency", Money{Amount: 250, Currency: "chf"}, "CHF 2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.String(); got != tt.display {
				t.Errorf("String() = %q, want %q", got, tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return INR(100).Add(INR(200)) }, INR(300)},
		{"Subtract", func() Money { return INR(500).Subtract(INR(1200)) }, INR(-700)},
		{"Negate", func() Money { return INR(100).Negate() }, INR(-100)},
		{"Abs negative", func() Money { return INR(-100).Abs() }, INR(100)},
		{"Abs positive", func() Money { return INR(100).Abs() }, INR(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op(); !got.Equal(tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for currency mismatch")
		}
	}()

	_ = INR(100).Add(USD(100))
}

func TestMoneySign(t *testing.T) {
	if INR(-1).Sign() != -1 || INR(0).Sign() != 0 || INR(5).Sign() != 1 {
		t.Error("Sign returned unexpected values")
	}
	if !INR(0).IsZero() || !INR(1).IsPositive() || !INR(-1).IsNegative() {
		t.Error("predicate mismatch")
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		currency string
		want     Money
		wantErr  bool
	}{
		{"whole rupees", "1200", "INR", INR(120000), false},
		{"paise", "1200.50", "inr", INR(120050), false},
		{"grouped", "1,00,000", "inr", INR(10000000), false},
		{"negative", "-5.25", "inr", INR(-525), false},
		{"yen", "300", "jpy", JPY(300), false},
		{"too precise", "10.005", "inr", Money{}, true},
		{"yen fraction", "1.5", "jpy", Money{}, true},
		{"garbage", "abc", "inr", Money{}, true},
		{"empty", "", "inr", Money{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input, tt.currency)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMoneyDecimal(t *testing.T) {
	if got := INR(120050).Decimal().String(); got != "1200.5" {
		t.Errorf("Decimal() = %s, want 1200.5", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(INR(70000))
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["display"] != "₹700.00" {
		t.Errorf("display = %v", raw["display"])
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(INR(70000)) {
		t.Errorf("decoded %+v", back)
	}
}
