package checkout

import "strings"

// ShippingInfo is the mutable shipping record owned by the checkout for the
// lifetime of the session. Fields merge unconditionally; validation only
// happens when the flow tries to advance.
type ShippingInfo struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// merge sets one field by its wire name.
func (s *ShippingInfo) merge(field, value string) error {
	switch field {
	case "fullName":
		s.FullName = value
	case "address":
		s.Address = value
	case "city":
		s.City = value
	case "state":
		s.State = value
	case "zipCode":
		s.ZipCode = value
	case "phone":
		s.Phone = value
	case "email":
		s.Email = value
	default:
		return ErrUnknownField
	}
	return nil
}

// missing returns the wire names of the required shipping fields that are
// still empty. Email is deliberately not required: it is seeded from the
// identity when one exists, and the upstream order intake accepts orders
// without it.
func (s *ShippingInfo) missing() []string {
	var fields []string
	for _, f := range []struct{ name, value string }{
		{"fullName", s.FullName},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"zipCode", s.ZipCode},
		{"phone", s.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// PaymentInfo is the mutable payment record. The card number is kept in its
// display format (groups of four digits) until the order is placed, after
// which only the last four digits survive.
type PaymentInfo struct {
	NameOnCard string `json:"name_on_card"`
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"-"`
}

// merge sets one field by its wire name, applying the display-formatting
// transforms for card number and expiry date.
func (p *PaymentInfo) merge(field, value string) error {
	switch field {
	case "nameOnCard":
		p.NameOnCard = value
	case "cardNumber":
		p.CardNumber = FormatCardNumber(value)
	case "expiryDate":
		p.ExpiryDate = FormatExpiry(value)
	case "cvv":
		p.CVV = value
	default:
		return ErrUnknownField
	}
	return nil
}

func (p *PaymentInfo) missing() []string {
	var fields []string
	for _, f := range []struct{ name, value string }{
		{"nameOnCard", p.NameOnCard},
		{"cardNumber", p.CardNumber},
		{"expiryDate", p.ExpiryDate},
		{"cvv", p.CVV},
	} {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// mask discards everything but the last four card digits and the CVV
// entirely. Called once the order has been accepted; past that point the
// full number must not exist anywhere in memory we keep.
func (p *PaymentInfo) mask() {
	p.CardNumber = LastFourDigits(p.CardNumber)
	p.CVV = ""
}

// FormatCardNumber strips non-digits and re-inserts a space after every
// group of four: "4111111111111111" becomes "4111 1111 1111 1111".
func FormatCardNumber(raw string) string {
	digits := digitsOnly(raw)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry strips non-digits and inserts the MM/YY separator after the
// second digit. Input is capped at four digits.
func FormatExpiry(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// LastFourDigits returns the last four digits of a card number in any
// format. Shorter inputs are returned as their bare digits.
func LastFourDigits(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
