package resolvers

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hanpama/lngraph/internal/lnrpc"
)

// Shared conversions between lnrpc messages and GraphQL values. Everything
// here is pure.

func hexString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return hex.EncodeToString(b)
}

// txidString renders a transaction or block hash in display order, which is
// the reverse of the wire order.
func txidString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	rev := make([]byte, len(b))
	for i, c := range b {
		rev[len(b)-1-i] = c
	}
	return hex.EncodeToString(rev)
}

func parseHex(field, s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "%s is not valid hex", field)
	}
	return b, nil
}

// unixTime maps seconds since the epoch to a date. Zero means absent.
func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func unixSeconds(t *time.Time) int64 {
	if t == nil || t.IsZero() {
		return 0
	}
	return t.Unix()
}

func chanID(id uint64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(id, 10)
}

func parseChanID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid channel id %q", s)
	}
	return id, nil
}

var addressTypes = map[string]lnrpc.AddressType{
	"p2wkh":  lnrpc.AddressTypeWitnessPubkeyHash,
	"np2wkh": lnrpc.AddressTypeNestedPubkeyHash,
	"p2pkh":  lnrpc.AddressTypePubkeyHash,
}

func addressType(label string) (lnrpc.AddressType, error) {
	t, ok := addressTypes[label]
	if !ok {
		return 0, errors.Errorf("unknown address type %q", label)
	}
	return t, nil
}

func channelPoint(cp *lnrpc.ChannelPoint) *ChannelPoint {
	if cp == nil {
		return nil
	}
	txid := cp.FundingTxidStr
	if txid == "" {
		txid = txidString(cp.FundingTxidBytes)
	}
	return &ChannelPoint{FundingTxHash: txid, OutputIndex: int64(cp.OutputIndex)}
}

// parseChannelPoint splits the "txid:index" form lnd uses in graph edges.
func parseChannelPoint(s string) (*ChannelPoint, error) {
	if s == "" {
		return nil, nil
	}
	txid, idx, found := strings.Cut(s, ":")
	if !found {
		return nil, errors.Errorf("invalid channel point %q", s)
	}
	n, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid channel point %q", s)
	}
	return &ChannelPoint{FundingTxHash: txid, OutputIndex: int64(n)}, nil
}

func channelPointRequest(cp *OpenChannelPoint) (*lnrpc.ChannelPoint, error) {
	if cp == nil {
		return nil, errors.New("channelPoint is required")
	}
	if _, err := parseHex("channelPoint.fundingTxHash", cp.FundingTxHash); err != nil {
		return nil, err
	}
	idx, err := uint32Arg("channelPoint.outputIndex", cp.OutputIndex)
	if err != nil {
		return nil, err
	}
	return &lnrpc.ChannelPoint{FundingTxidStr: cp.FundingTxHash, OutputIndex: idx}, nil
}

// uint32Arg narrows a GraphQL Int for a uint32 wire field.
func uint32Arg(name string, v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, errors.Errorf("%s must be between 0 and %d, got %d", name, uint32(math.MaxUint32), v)
	}
	return uint32(v), nil
}

// int32Arg narrows a GraphQL Int for an int32 wire field.
func int32Arg(name string, v int64) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, errors.Errorf("%s must be between %d and %d, got %d", name, math.MinInt32, math.MaxInt32, v)
	}
	return int32(v), nil
}

func routingPolicy(p *lnrpc.RoutingPolicy) *RoutingPolicy {
	if p == nil {
		return nil
	}
	return &RoutingPolicy{
		TimeLockDelta: int64(p.TimeLockDelta),
		MinHtlc:       p.MinHtlc,
		FeeBaseMsat:   p.FeeBaseMsat,
		FeeRateMsat:   p.FeeRateMilliMsat,
	}
}

func route(r *lnrpc.Route) *Route {
	if r == nil {
		return nil
	}
	out := &Route{
		TotalTimeLock: int64(r.TotalTimeLock),
		TotalFees:     r.TotalFees,
		TotalAmount:   r.TotalAmt,
	}
	for _, h := range r.Hops {
		if h == nil {
			continue
		}
		out.Hops = append(out.Hops, &Hop{
			ChannelID:       chanID(h.ChanId),
			ChannelCapacity: h.ChanCapacity,
			AmountToForward: h.AmtToForward,
			Fee:             h.Fee,
			Expiry:          int64(h.Expiry),
			PublicKey:       h.PubKey,
		})
	}
	return out
}

func lightningNode(n *lnrpc.LightningNode) *LightningNode {
	if n == nil {
		return nil
	}
	out := &LightningNode{
		UpdatedOn: unixTime(int64(n.LastUpdate)),
		PublicKey: n.PubKey,
		Alias:     n.Alias,
	}
	for _, a := range n.Addresses {
		if a == nil {
			continue
		}
		out.Addresses = append(out.Addresses, &NodeAddress{Network: a.Network, Address: a.Addr})
	}
	return out
}

func channelEdge(e *lnrpc.ChannelEdge) (*ChannelEdge, error) {
	if e == nil {
		return nil, nil
	}
	cp, err := parseChannelPoint(e.ChanPoint)
	if err != nil {
		return nil, err
	}
	return &ChannelEdge{
		ID:           chanID(e.ChannelId),
		ChannelPoint: cp,
		UpdatedOn:    unixTime(int64(e.LastUpdate)),
		PublicKeys:   &PublicKeyEdge{A: e.Node1Pub, B: e.Node2Pub},
		Capacity:     e.Capacity,
		Policies: &RoutingPolicyEdge{
			A: routingPolicy(e.Node1Policy),
			B: routingPolicy(e.Node2Policy),
		},
	}, nil
}

func transaction(t *lnrpc.Transaction) *Transaction {
	return &Transaction{
		TxHash:           t.TxHash,
		Amount:           t.Amount,
		NumConfirmations: int64(t.NumConfirmations),
		BlockHash:        t.BlockHash,
		BlockHeight:      int64(t.BlockHeight),
		CreatedOn:        unixTime(t.TimeStamp),
		TotalFees:        t.TotalFees,
	}
}

func invoice(inv *lnrpc.Invoice) *Invoice {
	return &Invoice{
		Memo:           inv.Memo,
		Receipt:        hexString(inv.Receipt),
		Preimage:       hexString(inv.RPreimage),
		PreimageHash:   hexString(inv.RHash),
		Amount:         inv.Value,
		IsSettled:      inv.Settled,
		CreatedOn:      unixTime(inv.CreationDate),
		SettledOn:      unixTime(inv.SettleDate),
		PaymentRequest: inv.PaymentRequest,
	}
}

func pendingChannel(c *lnrpc.PendingChannel) *PendingChannel {
	if c == nil {
		return nil
	}
	return &PendingChannel{
		RemotePublicKey: c.RemoteNodePub,
		ChannelPoint:    c.ChannelPoint,
		Capacity:        c.Capacity,
		LocalBalance:    c.LocalBalance,
		RemoteBalance:   c.RemoteBalance,
	}
}

func confirmation(c *lnrpc.ConfirmationUpdate) *ConfirmationUpdate {
	return &ConfirmationUpdate{
		BlockHash:            txidString(c.BlockSha),
		BlockHeight:          int64(c.BlockHeight),
		NumConfirmationsLeft: int64(c.NumConfsLeft),
	}
}

func pendingUpdate(p *lnrpc.PendingUpdate) *ChannelPendingUpdate {
	return &ChannelPendingUpdate{TxHash: txidString(p.Txid), OutputIndex: int64(p.OutputIndex)}
}

// each maps a list element-wise with the single-entity transform, skipping
// absent elements.
func each[In, Out any](in []*In, f func(*In) *Out) []*Out {
	out := make([]*Out, 0, len(in))
	for _, v := range in {
		if v == nil {
			continue
		}
		out = append(out, f(v))
	}
	return out
}
