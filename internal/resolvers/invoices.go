package resolvers

import (
	"github.com/hanpama/lngraph/internal/lnrpc"
)

type addInvoiceArgs struct {
	Params *InvoiceParams `mapstructure:"params"`
}

func addInvoiceRequest(a addInvoiceArgs, _ any) (*lnrpc.Invoice, error) {
	p := a.Params
	if p == nil {
		p = &InvoiceParams{}
	}
	preimage, err := parseHex("preimage", p.Preimage)
	if err != nil {
		return nil, err
	}
	hash, err := parseHex("preimageHash", p.PreimageHash)
	if err != nil {
		return nil, err
	}
	receipt, err := parseHex("receipt", p.Receipt)
	if err != nil {
		return nil, err
	}
	return &lnrpc.Invoice{
		Memo:           p.Memo,
		Receipt:        receipt,
		RPreimage:      preimage,
		RHash:          hash,
		Value:          p.Amount,
		Settled:        p.IsSettled,
		CreationDate:   unixSeconds(p.CreatedOn),
		SettleDate:     unixSeconds(p.SettledOn),
		PaymentRequest: p.PaymentRequest,
	}, nil
}

func addedInvoice(res *lnrpc.AddInvoiceResponse) (*AddInvoiceResult, error) {
	return &AddInvoiceResult{Hash: hexString(res.RHash), PaymentRequest: res.PaymentRequest}, nil
}

type listInvoicesArgs struct {
	PendingOnly bool `mapstructure:"pendingOnly"`
}

func listInvoicesRequest(a listInvoicesArgs, _ any) (*lnrpc.ListInvoiceRequest, error) {
	return &lnrpc.ListInvoiceRequest{PendingOnly: a.PendingOnly}, nil
}

func invoices(res *lnrpc.ListInvoiceResponse) ([]*Invoice, error) {
	return each(res.Invoices, invoice), nil
}

type lookupInvoiceArgs struct {
	PreimageHash string `mapstructure:"preimageHash"`
}

func lookupInvoiceRequest(a lookupInvoiceArgs, _ any) (*lnrpc.PaymentHash, error) {
	hash, err := parseHex("preimageHash", a.PreimageHash)
	if err != nil {
		return nil, err
	}
	return &lnrpc.PaymentHash{RHash: hash}, nil
}

func invoiceValue(res *lnrpc.Invoice) (*Invoice, error) {
	return invoice(res), nil
}
