package resolvers

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/lngraph/internal/lnrpc"
)

func TestInvoice_ZeroTimestampIsAbsent(t *testing.T) {
	got := invoice(&lnrpc.Invoice{Memo: "m", CreationDate: 0})
	assert.Nil(t, got.CreatedOn)
	assert.Nil(t, got.SettledOn)
}

func TestInvoice_TimestampIsExactInstant(t *testing.T) {
	got := invoice(&lnrpc.Invoice{CreationDate: 1600000000})
	require.NotNil(t, got.CreatedOn)
	assert.True(t, got.CreatedOn.Equal(time.Unix(1600000000, 0)))

	s, err := DateTime.Serialize(got.CreatedOn)
	require.NoError(t, err)
	assert.Equal(t, "2020-09-13T12:26:40.000Z", s)
}

func TestInvoice_BytesRenderAsHex(t *testing.T) {
	got := invoice(&lnrpc.Invoice{
		RPreimage: []byte{0xde, 0xad, 0xbe, 0xef},
		RHash:     []byte{0x00, 0xff},
		Receipt:   []byte{0x01},
	})
	assert.Equal(t, "deadbeef", got.Preimage)
	assert.Equal(t, "00ff", got.PreimageHash)
	assert.Equal(t, "01", got.Receipt)
}

func TestOpenStatus_PopulatesExactlyOneBranch(t *testing.T) {
	got, err := openStatus(&lnrpc.OpenStatusUpdate{
		Confirmation: &lnrpc.ConfirmationUpdate{BlockSha: []byte{0x01, 0x02}, BlockHeight: 500, NumConfsLeft: 2},
	})
	require.NoError(t, err)
	want := &OpenChannelStatusUpdate{
		Confirmation: &ConfirmationUpdate{BlockHash: "0201", BlockHeight: 500, NumConfirmationsLeft: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("openStatus mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenStatus_ChannelOpenPrefersTxidString(t *testing.T) {
	got, err := openStatus(&lnrpc.OpenStatusUpdate{
		ChanOpen: &lnrpc.ChannelOpenUpdate{ChannelPoint: &lnrpc.ChannelPoint{FundingTxidBytes: []byte{0xaa, 0xbb}, OutputIndex: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, &ChannelPoint{FundingTxHash: "bbaa", OutputIndex: 1}, got.ChannelOpen.ChannelPoint)

	got, err = openStatus(&lnrpc.OpenStatusUpdate{
		ChanOpen: &lnrpc.ChannelOpenUpdate{ChannelPoint: &lnrpc.ChannelPoint{FundingTxidStr: "abcd"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "abcd", got.ChannelOpen.ChannelPoint.FundingTxHash)
}

func TestStatusUpdates_NoBranchIsAnError(t *testing.T) {
	_, err := openStatus(&lnrpc.OpenStatusUpdate{})
	require.ErrorIs(t, err, ErrUnknownUpdate)
	_, err = closeStatus(&lnrpc.CloseStatusUpdate{})
	require.ErrorIs(t, err, ErrUnknownUpdate)
}

func TestChannelEdge_AbsentPolicyStaysAbsent(t *testing.T) {
	got, err := channelEdge(&lnrpc.ChannelEdge{
		ChannelId:   1234567890123,
		ChanPoint:   "abcd:3",
		Node1Pub:    "02a",
		Node2Pub:    "02b",
		Node2Policy: &lnrpc.RoutingPolicy{TimeLockDelta: 40, FeeRateMilliMsat: 1},
	})
	require.NoError(t, err)
	want := &ChannelEdge{
		ID:           "1234567890123",
		ChannelPoint: &ChannelPoint{FundingTxHash: "abcd", OutputIndex: 3},
		PublicKeys:   &PublicKeyEdge{A: "02a", B: "02b"},
		Policies: &RoutingPolicyEdge{
			B: &RoutingPolicy{TimeLockDelta: 40, FeeRateMsat: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("channelEdge mismatch (-want +got):\n%s", diff)
	}

	_, err = channelEdge(&lnrpc.ChannelEdge{ChanPoint: "no-index"})
	require.Error(t, err)
}

func TestPaymentStatus_MissingRouteIsNil(t *testing.T) {
	got, err := paymentStatus(&lnrpc.SendResponse{PaymentError: "no route"})
	require.NoError(t, err)
	assert.Nil(t, got.PaymentRoute)
	assert.Equal(t, "no route", got.PaymentError)
}

func TestDecodedPayReq_ExpiryIsRelativeToTimestamp(t *testing.T) {
	got, err := decodedPayReq(&lnrpc.PayReq{Timestamp: 1600000000, Expiry: 3600, Description: "tea"})
	require.NoError(t, err)
	require.NotNil(t, got.ExpiresOn)
	assert.True(t, got.ExpiresOn.Equal(time.Unix(1600003600, 0)))
	assert.Equal(t, "tea", got.Memo)
}

func TestAddInvoiceRequest(t *testing.T) {
	created := time.Unix(1600000000, 0)
	req, err := addInvoiceRequest(addInvoiceArgs{Params: &InvoiceParams{
		Memo:      "coffee",
		Preimage:  "deadbeef",
		Amount:    1000,
		CreatedOn: &created,
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, req.RPreimage)
	assert.Equal(t, int64(1600000000), req.CreationDate)
	assert.Zero(t, req.SettleDate)

	_, err = addInvoiceRequest(addInvoiceArgs{Params: &InvoiceParams{Preimage: "zz"}}, nil)
	require.ErrorContains(t, err, "preimage is not valid hex")
}

func TestUpdateFeesRequest(t *testing.T) {
	rateMsat := int64(100)
	delta := int64(40)
	req, err := updateFeesRequest(updateFeesArgs{Global: true, FeeBaseMsat: 1000, FeeRateMsat: &rateMsat, TimeLockDelta: &delta}, nil)
	require.NoError(t, err)
	want := &lnrpc.PolicyUpdateRequest{Global: true, BaseFeeMsat: 1000, FeeRate: 0.0001, TimeLockDelta: 40}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Fatalf("global policy mismatch (-want +got):\n%s", diff)
	}

	rate := 0.5
	req, err = updateFeesRequest(updateFeesArgs{
		ChannelPoint: &OpenChannelPoint{FundingTxHash: "abcd", OutputIndex: 1},
		FeeRateMsat:  &rateMsat,
		FeeRate:      &rate,
	}, nil)
	require.NoError(t, err)
	assert.False(t, req.Global)
	assert.Equal(t, &lnrpc.ChannelPoint{FundingTxidStr: "abcd", OutputIndex: 1}, req.ChanPoint)
	assert.Equal(t, 0.5, req.FeeRate)
}

func TestUpdateFeesRequest_TimeLockDelta(t *testing.T) {
	deltaOf := func(v int64) *int64 { return &v }
	tests := []struct {
		name    string
		delta   *int64
		want    uint32
		wantErr string
	}{
		{name: "omitted uses lnd default", want: 40},
		{name: "explicit", delta: deltaOf(144), want: 144},
		{name: "largest", delta: deltaOf(1<<32 - 1), want: 1<<32 - 1},
		{name: "negative", delta: deltaOf(-1), wantErr: "timeLockDelta must be between"},
		{name: "wider than uint32", delta: deltaOf(1<<32 + 40), wantErr: "timeLockDelta must be between"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := updateFeesRequest(updateFeesArgs{Global: true, TimeLockDelta: tt.delta}, nil)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.TimeLockDelta)
		})
	}
}

func TestUpdateFeesRequest_NeedsTarget(t *testing.T) {
	_, err := updateFeesRequest(updateFeesArgs{}, nil)
	require.ErrorContains(t, err, "either global or channelPoint is required")

	_, err = updateFeesRequest(updateFeesArgs{ChannelPoint: &OpenChannelPoint{FundingTxHash: "abcd", OutputIndex: 1<<32 + 1}}, nil)
	require.ErrorContains(t, err, "channelPoint.outputIndex must be between")
}

func TestCloseChannelRequest_OutputIndexRange(t *testing.T) {
	tests := []struct {
		name    string
		index   int64
		want    uint32
		wantErr bool
	}{
		{name: "zero", index: 0, want: 0},
		{name: "largest", index: 1<<32 - 1, want: 1<<32 - 1},
		{name: "negative", index: -1, wantErr: true},
		{name: "wraps to another output", index: 1<<32 + 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := closeChannelRequest(closeChannelArgs{
				ChannelPoint: &OpenChannelPoint{FundingTxHash: "abcd", OutputIndex: tt.index},
				Force:        true,
			}, nil)
			if tt.wantErr {
				require.ErrorContains(t, err, "channelPoint.outputIndex must be between")
				return
			}
			require.NoError(t, err)
			want := &lnrpc.CloseChannelRequest{
				ChannelPoint: &lnrpc.ChannelPoint{FundingTxidStr: "abcd", OutputIndex: tt.want},
				Force:        true,
			}
			if diff := cmp.Diff(want, req); diff != "" {
				t.Fatalf("close request mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := closeChannelRequest(closeChannelArgs{}, nil)
	require.ErrorContains(t, err, "channelPoint is required")
}

func TestOpenChannelRequest_TargetPeerRange(t *testing.T) {
	req, err := openChannelRequest(openChannelArgs{TargetPeerID: 7, LocalFundingAmount: 20000, PushSatoshis: 100}, nil)
	require.NoError(t, err)
	want := &lnrpc.OpenChannelRequest{TargetPeerId: 7, LocalFundingAmount: 20000, PushSat: 100}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Fatalf("open request mismatch (-want +got):\n%s", diff)
	}

	for _, id := range []int64{1<<32 + 7, 1 << 31, -1<<31 - 1} {
		_, err := openChannelRequest(openChannelArgs{TargetPeerID: id}, nil)
		require.ErrorContains(t, err, "targetPeerId must be between", id)
	}
}

func TestChannelInfoRequest_RejectsInvalidID(t *testing.T) {
	req, err := channelInfoRequest(channelInfoArgs{ID: "18446744073709551615"}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), req.ChanId)

	_, err = channelInfoRequest(channelInfoArgs{ID: "12x"}, nil)
	require.Error(t, err)
}

func TestNewAddressRequest_EnumLabels(t *testing.T) {
	for label, want := range map[string]lnrpc.AddressType{"p2wkh": 0, "np2wkh": 1, "p2pkh": 2} {
		req, err := newAddressRequest(newAddressArgs{Type: label}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, req.Type, label)
	}
	_, err := newAddressRequest(newAddressArgs{Type: "p2tr"}, nil)
	require.Error(t, err)
}

func TestConnectPeerRequest_SplitsAddress(t *testing.T) {
	req, err := connectPeerRequest(connectPeerArgs{PeerAddress: "02abc@10.0.0.1:9735", Persist: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, &lnrpc.LightningAddress{Pubkey: "02abc", Host: "10.0.0.1:9735"}, req.Addr)
	assert.True(t, req.Perm)

	_, err = connectPeerRequest(connectPeerArgs{PeerAddress: "02abc"}, nil)
	require.Error(t, err)
}

func TestSendManyRequest(t *testing.T) {
	req, err := sendManyRequest(sendManyArgs{Recipients: []Recipient{{Address: "a", Amount: 1}, {Address: "b", Amount: 2}}}, nil)
	require.NoError(t, err)
	assert.Equal(t, lnrpc.Int64Map{"a": 1, "b": 2}, req.AddrToAmount)

	_, err = sendManyRequest(sendManyArgs{Recipients: []Recipient{{Address: "a"}, {Address: "a"}}}, nil)
	require.Error(t, err)
}

func TestDateTime_Parse(t *testing.T) {
	want := time.Unix(1600000000, 0).UTC()
	for _, in := range []any{"2020-09-13T12:26:40Z", "2020-09-13T14:26:40+02:00", int64(1600000000), float64(1600000000)} {
		got, err := DateTime.Parse(in)
		require.NoError(t, err, "%v", in)
		assert.True(t, got.(time.Time).Equal(want), "%v", in)
	}
	_, err := DateTime.Parse("yesterday")
	require.Error(t, err)
	_, err = DateTime.Parse(1.5)
	require.Error(t, err)
}

func TestDecodeArgs_DateTimeFromString(t *testing.T) {
	var a addInvoiceArgs
	err := decodeArgs(map[string]any{
		"params": map[string]any{"memo": "m", "createdOn": "2020-09-13T12:26:40Z", "amount": int64(5)},
	}, &a)
	require.NoError(t, err)
	require.NotNil(t, a.Params)
	require.NotNil(t, a.Params.CreatedOn)
	assert.Equal(t, int64(1600000000), a.Params.CreatedOn.Unix())
	assert.Equal(t, int64(5), a.Params.Amount)

	var empty noArgs
	require.NoError(t, decodeArgs(nil, &empty))
}
