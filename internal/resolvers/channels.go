package resolvers

import (
	"github.com/pkg/errors"

	"github.com/hanpama/lngraph/internal/lnrpc"
)

func pendingChannels(res *lnrpc.PendingChannelsResponse) (*PendingChannelsInfo, error) {
	return &PendingChannelsInfo{
		AmountInLimbo: res.TotalLimboBalance,
		PendingOpen: each(res.PendingOpenChannels, func(c *lnrpc.PendingOpenChannel) *PendingOpenChannel {
			return &PendingOpenChannel{
				Channel:            pendingChannel(c.Channel),
				ConfirmationHeight: int64(c.ConfirmationHeight),
				BlocksUntilOpen:    int64(c.BlocksTillOpen),
				CommitFee:          c.CommitFee,
				CommitWeight:       c.CommitWeight,
				FeePerKw:           c.FeePerKw,
			}
		}),
		PendingClose: each(res.PendingClosingChannels, func(c *lnrpc.ClosedChannel) *PendingCloseChannel {
			return &PendingCloseChannel{
				Channel:       pendingChannel(c.Channel),
				ClosingTxHash: c.ClosingTxid,
			}
		}),
		PendingForceClose: each(res.PendingForceClosingChannels, func(c *lnrpc.ForceClosedChannel) *PendingForceCloseChannel {
			return &PendingForceCloseChannel{
				Channel:             pendingChannel(c.Channel),
				ClosingTxHash:       c.ClosingTxid,
				AmountInLimbo:       c.LimboBalance,
				MaturityHeight:      int64(c.MaturityHeight),
				BlocksUntilMaturity: int64(c.BlocksTilMaturity),
			}
		}),
	}, nil
}

type listChannelsArgs struct {
	ActiveOnly   bool `mapstructure:"activeOnly"`
	InactiveOnly bool `mapstructure:"inactiveOnly"`
	PublicOnly   bool `mapstructure:"publicOnly"`
	PrivateOnly  bool `mapstructure:"privateOnly"`
}

func listChannelsRequest(a listChannelsArgs, _ any) (*lnrpc.ListChannelsRequest, error) {
	return &lnrpc.ListChannelsRequest{
		ActiveOnly:   a.ActiveOnly,
		InactiveOnly: a.InactiveOnly,
		PublicOnly:   a.PublicOnly,
		PrivateOnly:  a.PrivateOnly,
	}, nil
}

func channels(res *lnrpc.ListChannelsResponse) ([]*Channel, error) {
	return each(res.Channels, func(c *lnrpc.Channel) *Channel {
		return &Channel{
			Active:                c.Active,
			RemotePublicKey:       c.RemotePubkey,
			ChannelPoint:          c.ChannelPoint,
			ID:                    chanID(c.ChanId),
			Capacity:              c.Capacity,
			LocalBalance:          c.LocalBalance,
			RemoteBalance:         c.RemoteBalance,
			CommitFee:             c.CommitFee,
			CommitWeight:          c.CommitWeight,
			FeePerKw:              c.FeePerKw,
			UnsettledBalance:      c.UnsettledBalance,
			TotalSatoshisSent:     c.TotalSatoshisSent,
			TotalSatoshisReceived: c.TotalSatoshisReceived,
			NumUpdates:            int64(c.NumUpdates),
			PendingHtlcs: each(c.PendingHtlcs, func(h *lnrpc.HTLC) *HTLC {
				return &HTLC{
					Incoming:         h.Incoming,
					Amount:           h.Amount,
					Hashlock:         hexString(h.Hashlock),
					ExpirationHeight: int64(h.ExpirationHeight),
				}
			}),
		}
	}), nil
}

type openChannelArgs struct {
	TargetPeerID       int64  `mapstructure:"targetPeerId"`
	NodePublicKey      string `mapstructure:"nodePublicKey"`
	LocalFundingAmount int64  `mapstructure:"localFundingAmount"`
	PushSatoshis       int64  `mapstructure:"pushSatoshis"`
}

func openChannelRequest(a openChannelArgs, _ any) (*lnrpc.OpenChannelRequest, error) {
	peer, err := int32Arg("targetPeerId", a.TargetPeerID)
	if err != nil {
		return nil, err
	}
	return &lnrpc.OpenChannelRequest{
		TargetPeerId:       peer,
		NodePubkeyString:   a.NodePublicKey,
		LocalFundingAmount: a.LocalFundingAmount,
		PushSat:            a.PushSatoshis,
	}, nil
}

func openStatus(u *lnrpc.OpenStatusUpdate) (*OpenChannelStatusUpdate, error) {
	switch {
	case u.ChanPending != nil:
		return &OpenChannelStatusUpdate{ChannelPending: pendingUpdate(u.ChanPending)}, nil
	case u.Confirmation != nil:
		return &OpenChannelStatusUpdate{Confirmation: confirmation(u.Confirmation)}, nil
	case u.ChanOpen != nil:
		return &OpenChannelStatusUpdate{
			ChannelOpen: &ChannelOpenUpdate{ChannelPoint: channelPoint(u.ChanOpen.ChannelPoint)},
		}, nil
	}
	return nil, errors.Wrap(ErrUnknownUpdate, "OpenChannel")
}

type closeChannelArgs struct {
	ChannelPoint *OpenChannelPoint `mapstructure:"channelPoint"`
	Force        bool              `mapstructure:"force"`
}

func closeChannelRequest(a closeChannelArgs, _ any) (*lnrpc.CloseChannelRequest, error) {
	cp, err := channelPointRequest(a.ChannelPoint)
	if err != nil {
		return nil, err
	}
	return &lnrpc.CloseChannelRequest{ChannelPoint: cp, Force: a.Force}, nil
}

func closeStatus(u *lnrpc.CloseStatusUpdate) (*CloseChannelStatusUpdate, error) {
	switch {
	case u.ClosePending != nil:
		return &CloseChannelStatusUpdate{ClosePending: pendingUpdate(u.ClosePending)}, nil
	case u.Confirmation != nil:
		return &CloseChannelStatusUpdate{Confirmation: confirmation(u.Confirmation)}, nil
	case u.ChanClose != nil:
		return &CloseChannelStatusUpdate{
			ChannelClose: &ChannelCloseUpdate{
				ClosingTxHash: txidString(u.ChanClose.ClosingTxid),
				Success:       u.ChanClose.Success,
			},
		}, nil
	}
	return nil, errors.Wrap(ErrUnknownUpdate, "CloseChannel")
}

func feeReport(res *lnrpc.FeeReportResponse) ([]*ChannelFeeReport, error) {
	return each(res.ChannelFees, func(f *lnrpc.ChannelFeeReport) *ChannelFeeReport {
		return &ChannelFeeReport{
			ChannelPoint: f.ChanPoint,
			FeeBaseMsat:  f.BaseFeeMsat,
			FeePerMilli:  f.FeePerMil,
			FeeRateMsat:  f.FeeRate,
		}
	}), nil
}

type updateFeesArgs struct {
	Global        bool              `mapstructure:"global"`
	ChannelPoint  *OpenChannelPoint `mapstructure:"channelPoint"`
	FeeBaseMsat   int64             `mapstructure:"feeBaseMsat"`
	FeeRateMsat   *int64            `mapstructure:"feeRateMsat"`
	FeeRate       *float64          `mapstructure:"feeRate"`
	TimeLockDelta *int64            `mapstructure:"timeLockDelta"`
}

// defaultTimeLockDelta is lnd's own default CLTV delta. lnd refuses deltas
// under its minimum, so an omitted timeLockDelta cannot be sent as 0.
const defaultTimeLockDelta = 40

// updateFeesRequest targets every channel when global is set, otherwise the
// given channel point. feeRateMsat counts millionths; feeRate wins when both
// are present.
func updateFeesRequest(a updateFeesArgs, _ any) (*lnrpc.PolicyUpdateRequest, error) {
	delta := uint32(defaultTimeLockDelta)
	if a.TimeLockDelta != nil {
		var err error
		if delta, err = uint32Arg("timeLockDelta", *a.TimeLockDelta); err != nil {
			return nil, err
		}
	}
	req := &lnrpc.PolicyUpdateRequest{
		BaseFeeMsat:   a.FeeBaseMsat,
		TimeLockDelta: delta,
	}
	switch {
	case a.Global:
		req.Global = true
	case a.ChannelPoint != nil:
		cp, err := channelPointRequest(a.ChannelPoint)
		if err != nil {
			return nil, err
		}
		req.ChanPoint = cp
	default:
		return nil, errors.New("either global or channelPoint is required")
	}
	switch {
	case a.FeeRate != nil:
		req.FeeRate = *a.FeeRate
	case a.FeeRateMsat != nil:
		req.FeeRate = float64(*a.FeeRateMsat) / 1e6
	}
	return req, nil
}
