package resolvers

import (
	"github.com/hanpama/lngraph/internal/lnrpc"
)

type paymentArgs struct {
	RecipientPublicKey string `mapstructure:"recipientPublicKey"`
	Amount             int64  `mapstructure:"amount"`
	PaymentHash        string `mapstructure:"paymentHash"`
	PaymentRequest     string `mapstructure:"paymentRequest"`
}

func sendRequest(a paymentArgs, _ any) (*lnrpc.SendRequest, error) {
	hash, err := parseHex("paymentHash", a.PaymentHash)
	if err != nil {
		return nil, err
	}
	return &lnrpc.SendRequest{
		DestString:     a.RecipientPublicKey,
		Amt:            a.Amount,
		PaymentHash:    hash,
		PaymentRequest: a.PaymentRequest,
	}, nil
}

func paymentStatus(res *lnrpc.SendResponse) (*PaymentStatusUpdate, error) {
	return &PaymentStatusUpdate{
		PaymentError:    res.PaymentError,
		PaymentPreimage: hexString(res.PaymentPreimage),
		PaymentRoute:    route(res.PaymentRoute),
	}, nil
}

func payments(res *lnrpc.ListPaymentsResponse) ([]*Payment, error) {
	return each(res.Payments, func(p *lnrpc.Payment) *Payment {
		return &Payment{
			PaymentHash: p.PaymentHash,
			Amount:      p.Value,
			CreatedOn:   unixTime(p.CreationDate),
			Path:        p.Path,
			TotalFees:   p.Fee,
		}
	}), nil
}

type decodePayReqArgs struct {
	PaymentRequest string `mapstructure:"paymentRequest"`
}

func decodePayReqRequest(a decodePayReqArgs, _ any) (*lnrpc.PayReqString, error) {
	return &lnrpc.PayReqString{PayReq: a.PaymentRequest}, nil
}

// decodedPayReq reports the expiry as an instant, timestamp plus expiry.
func decodedPayReq(res *lnrpc.PayReq) (*DecodedPaymentRequest, error) {
	out := &DecodedPaymentRequest{
		Destination: res.Destination,
		PaymentHash: res.PaymentHash,
		Amount:      res.NumSatoshis,
		CreatedOn:   unixTime(res.Timestamp),
		Memo:        res.Description,
	}
	if res.Timestamp > 0 && res.Expiry > 0 {
		out.ExpiresOn = unixTime(res.Timestamp + res.Expiry)
	}
	return out, nil
}

type queryRoutesArgs struct {
	PublicKey string `mapstructure:"publicKey"`
	Amount    int64  `mapstructure:"amount"`
}

func queryRoutesRequest(a queryRoutesArgs, _ any) (*lnrpc.QueryRoutesRequest, error) {
	return &lnrpc.QueryRoutesRequest{PubKey: a.PublicKey, Amt: a.Amount}, nil
}

func routes(res *lnrpc.QueryRoutesResponse) ([]*Route, error) {
	return each(res.Routes, route), nil
}
