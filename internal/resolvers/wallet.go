package resolvers

import (
	"github.com/pkg/errors"

	"github.com/hanpama/lngraph/internal/lnrpc"
)

type walletBalanceArgs struct {
	WitnessOnly bool `mapstructure:"witnessOnly"`
}

func walletBalanceRequest(a walletBalanceArgs, _ any) (*lnrpc.WalletBalanceRequest, error) {
	return &lnrpc.WalletBalanceRequest{WitnessOnly: a.WitnessOnly}, nil
}

func walletBalance(res *lnrpc.WalletBalanceResponse) (*Balance, error) {
	return &Balance{
		Balance:            res.TotalBalance,
		ConfirmedBalance:   res.ConfirmedBalance,
		UnconfirmedBalance: res.UnconfirmedBalance,
	}, nil
}

func channelBalance(res *lnrpc.ChannelBalanceResponse) (*Balance, error) {
	return &Balance{
		Balance:            res.Balance,
		PendingOpenBalance: res.PendingOpenBalance,
	}, nil
}

func transactions(res *lnrpc.TransactionDetails) ([]*Transaction, error) {
	return each(res.Transactions, transaction), nil
}

func transactionEvent(res *lnrpc.Transaction) (*Transaction, error) {
	return transaction(res), nil
}

type sendCoinsArgs struct {
	Recipient *Recipient `mapstructure:"recipient"`
}

func sendCoinsRequest(a sendCoinsArgs, _ any) (*lnrpc.SendCoinsRequest, error) {
	if a.Recipient == nil {
		return nil, errors.New("recipient is required")
	}
	return &lnrpc.SendCoinsRequest{Addr: a.Recipient.Address, Amount: a.Recipient.Amount}, nil
}

func sendCoins(res *lnrpc.SendCoinsResponse) (*SendCoinsResult, error) {
	return &SendCoinsResult{TxHash: res.Txid}, nil
}

type sendManyArgs struct {
	Recipients []Recipient `mapstructure:"recipients"`
}

func sendManyRequest(a sendManyArgs, _ any) (*lnrpc.SendManyRequest, error) {
	if len(a.Recipients) == 0 {
		return nil, errors.New("recipients must not be empty")
	}
	amounts := make(lnrpc.Int64Map, len(a.Recipients))
	for _, r := range a.Recipients {
		if _, dup := amounts[r.Address]; dup {
			return nil, errors.Errorf("duplicate recipient address %q", r.Address)
		}
		amounts[r.Address] = r.Amount
	}
	return &lnrpc.SendManyRequest{AddrToAmount: amounts}, nil
}

func sendMany(res *lnrpc.SendManyResponse) (*SendCoinsResult, error) {
	return &SendCoinsResult{TxHash: res.Txid}, nil
}

type newAddressArgs struct {
	Type string `mapstructure:"type"`
}

func newAddressRequest(a newAddressArgs, _ any) (*lnrpc.NewAddressRequest, error) {
	t, err := addressType(a.Type)
	if err != nil {
		return nil, err
	}
	return &lnrpc.NewAddressRequest{Type: t}, nil
}

func newAddress(res *lnrpc.NewAddressResponse) (*NewAddressResult, error) {
	return &NewAddressResult{Address: res.Address}, nil
}

type signMessageArgs struct {
	Message string `mapstructure:"message"`
}

func signMessageRequest(a signMessageArgs, _ any) (*lnrpc.SignMessageRequest, error) {
	return &lnrpc.SignMessageRequest{Msg: []byte(a.Message)}, nil
}

func signMessage(res *lnrpc.SignMessageResponse) (*SignMessageResult, error) {
	return &SignMessageResult{Signature: res.Signature}, nil
}

type verifyMessageArgs struct {
	Message   string `mapstructure:"message"`
	Signature string `mapstructure:"signature"`
}

func verifyMessageRequest(a verifyMessageArgs, _ any) (*lnrpc.VerifyMessageRequest, error) {
	return &lnrpc.VerifyMessageRequest{Msg: []byte(a.Message), Signature: a.Signature}, nil
}

func verifyMessage(res *lnrpc.VerifyMessageResponse) (*VerifyMessageResult, error) {
	return &VerifyMessageResult{Valid: res.Valid, PublicKey: res.Pubkey}, nil
}
