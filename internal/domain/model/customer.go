package model

// SupportedCountry is the only country orders can ship to.
const SupportedCountry = "CA"

// PaymentMethod identifies which payment-source variant the gateway holds.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Address is a shipping destination. Region is a province code.
type Address struct {
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
}

// Valid reports whether all required address fields are filled in.
func (a Address) Valid() bool {
	return a.Line1 != "" && a.City != "" && a.Region != "" && a.PostalCode != "" && a.Country != ""
}

// CustomerInfo carries the buyer details held by the gateway order.
// PaymentSource is opaque gateway data (masked digits or a payer email),
// never a raw card number.
type CustomerInfo struct {
	FullName      string
	Address       Address
	PaymentMethod PaymentMethod
	PaymentSource string
}
