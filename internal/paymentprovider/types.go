package paymentprovider

import "encoding/xml"

// Transaction statuses reported by PagSeguro.
const (
	StatusAwaitingPayment = 1
	StatusInAnalysis      = 2
	StatusPaid            = 3
	StatusAvailable       = 4
	StatusInDispute       = 5
	StatusReturned        = 6
	StatusCancelled       = 7
)

// Transaction is the part of a PagSeguro transaction document the site uses.
type Transaction struct {
	XMLName   xml.Name `xml:"transaction"`
	Code      string   `xml:"code"`
	Reference string   `xml:"reference"`
	Status    int      `xml:"status"`
}

// Confirmed reports whether the payment was received.
func (t Transaction) Confirmed() bool {
	return t.Status == StatusPaid || t.Status == StatusAvailable
}

// Cancelled reports whether the payment was cancelled.
func (t Transaction) Cancelled() bool {
	return t.Status == StatusCancelled
}

type errorsDoc struct {
	XMLName xml.Name `xml:"errors"`
	Errors  []struct {
		Code    string `xml:"code"`
		Message string `xml:"message"`
	} `xml:"error"`
}
