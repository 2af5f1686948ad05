package resolvers

import (
	"github.com/hanpama/lngraph/internal/lnrpc"
	"github.com/hanpama/lngraph/internal/pubsub"
)

// Build binds every schema field to client. Subscriptions publish through
// registry. No call is made until a field is resolved.
func Build(client lnrpc.LightningClient, registry *pubsub.Registry) *Map {
	return &Map{
		Query: map[string]FieldResolver{
			"getWalletBalance":     Unary(client.WalletBalance, walletBalanceRequest, walletBalance),
			"getChannelBalance":    Unary(client.ChannelBalance, none[lnrpc.ChannelBalanceRequest], channelBalance),
			"getTransactions":      Unary(client.GetTransactions, none[lnrpc.GetTransactionsRequest], transactions),
			"listPeers":            Unary(client.ListPeers, none[lnrpc.ListPeersRequest], peers),
			"getInfo":              Unary(client.GetInfo, none[lnrpc.GetInfoRequest], info),
			"pendingChannels":      Unary(client.PendingChannels, none[lnrpc.PendingChannelsRequest], pendingChannels),
			"listChannels":         Unary(client.ListChannels, listChannelsRequest, channels),
			"listInvoices":         Unary(client.ListInvoices, listInvoicesRequest, invoices),
			"lookupInvoice":        Unary(client.LookupInvoice, lookupInvoiceRequest, invoiceValue),
			"decodePaymentRequest": Unary(client.DecodePayReq, decodePayReqRequest, decodedPayReq),
			"listPayments":         Unary(client.ListPayments, none[lnrpc.ListPaymentsRequest], payments),
			"describeGraph":        Unary(client.DescribeGraph, none[lnrpc.ChannelGraphRequest], channelGraph),
			"getChannelInfo":       Unary(client.GetChanInfo, channelInfoRequest, channelEdge),
			"getNodeInfo":          Unary(client.GetNodeInfo, nodeInfoRequest, nodeInfo),
			"queryRoutes":          Unary(client.QueryRoutes, queryRoutesRequest, routes),
			"getNetworkInfo":       Unary(client.GetNetworkInfo, none[lnrpc.NetworkInfoRequest], networkInfo),
			"feeReport":            Unary(client.FeeReport, none[lnrpc.FeeReportRequest], feeReport),
		},
		Mutation: map[string]FieldResolver{
			"sendCoins":         Unary(client.SendCoins, sendCoinsRequest, sendCoins),
			"sendMany":          Unary(client.SendMany, sendManyRequest, sendMany),
			"newAddress":        Unary(client.NewAddress, newAddressRequest, newAddress),
			"newWitnessAddress": Unary(client.NewWitnessAddress, none[lnrpc.NewWitnessAddressRequest], newAddress),
			"signMessage":       Unary(client.SignMessage, signMessageRequest, signMessage),
			"verifyMessage":     Unary(client.VerifyMessage, verifyMessageRequest, verifyMessage),
			"connectPeer":       Unary(client.ConnectPeer, connectPeerRequest, connectPeer),
			"disconnectPeer":    Unary(client.DisconnectPeer, disconnectPeerRequest, done[lnrpc.DisconnectPeerResponse]),
			"sendPaymentSync":   Unary(client.SendPaymentSync, sendRequest, paymentStatus),
			"addInvoice":        Unary(client.AddInvoice, addInvoiceRequest, addedInvoice),
			"deleteAllPayments": Unary(client.DeleteAllPayments, none[lnrpc.DeleteAllPaymentsRequest], done[lnrpc.DeleteAllPaymentsResponse]),
			"stopDaemon":        Unary(client.StopDaemon, none[lnrpc.StopRequest], done[lnrpc.StopResponse]),
			"setAlias":          Unary(client.SetAlias, setAliasRequest, done[lnrpc.SetAliasResponse]),
			"debugLevel":        Unary(client.DebugLevel, debugLevelRequest, debugLevel),
			"updateFees":        Unary(client.UpdateChannelPolicy, updateFeesRequest, done[lnrpc.PolicyUpdateResponse]),
		},
		Subscription: map[string]SubscriptionResolver{
			"openChannel":           Streaming(registry, "OpenChannel", client.OpenChannel, openChannelRequest, openStatus),
			"closeChannel":          Streaming(registry, "CloseChannel", client.CloseChannel, closeChannelRequest, closeStatus),
			"sendPayment":           Streaming(registry, "SendPayment", client.SendPayment, sendRequest, paymentStatus),
			"subscribeTransactions": Streaming(registry, "SubscribeTransactions", client.SubscribeTransactions, none[lnrpc.GetTransactionsRequest], transactionEvent),
			"subscribeInvoices":     Streaming(registry, "SubscribeInvoices", client.SubscribeInvoices, none[lnrpc.InvoiceSubscription], invoiceValue),
			"subscribeChannelGraph": Streaming(registry, "SubscribeChannelGraph", client.SubscribeChannelGraph, none[lnrpc.GraphTopologySubscription], topologyUpdate),
		},
		Scalars: map[string]ScalarCodec{
			"DateTime": DateTime,
		},
	}
}
