package lnrpc

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jhump/protoreflect/v2/protobuilder"
	"google.golang.org/protobuf/reflect/protoreflect"
)

const (
	// FileName is the path of the generated descriptor.
	FileName = "lnrpc/rpc.proto"
	// PackageName is the proto package of the Lightning service.
	PackageName = "lnrpc"
	// ServiceName is the unqualified Lightning service name.
	ServiceName = "Lightning"
)

type fieldDef struct {
	name   string
	number int
	typ    string // scalar kind, message or enum name, "repeated T" or "map<K,V>"
	oneof  string
}

type messageDef struct {
	name   string
	fields []fieldDef
}

type methodDef struct {
	name         string
	input        string
	output       string
	clientStream bool
	serverStream bool
}

var enumDefs = map[string][]string{
	"AddressType": {"WITNESS_PUBKEY_HASH", "NESTED_PUBKEY_HASH", "PUBKEY_HASH"},
}

var messageDefs = []messageDef{
	{"WalletBalanceRequest", []fieldDef{{"witness_only", 1, "bool", ""}}},
	{"WalletBalanceResponse", []fieldDef{
		{"total_balance", 1, "int64", ""},
		{"confirmed_balance", 2, "int64", ""},
		{"unconfirmed_balance", 3, "int64", ""},
	}},
	{"ChannelBalanceRequest", nil},
	{"ChannelBalanceResponse", []fieldDef{
		{"balance", 1, "int64", ""},
		{"pending_open_balance", 2, "int64", ""},
	}},
	{"Transaction", []fieldDef{
		{"tx_hash", 1, "string", ""},
		{"amount", 2, "int64", ""},
		{"num_confirmations", 3, "int32", ""},
		{"block_hash", 4, "string", ""},
		{"block_height", 5, "int32", ""},
		{"time_stamp", 6, "int64", ""},
		{"total_fees", 7, "int64", ""},
		{"dest_addresses", 8, "repeated string", ""},
	}},
	{"GetTransactionsRequest", nil},
	{"TransactionDetails", []fieldDef{{"transactions", 1, "repeated Transaction", ""}}},
	{"SendCoinsRequest", []fieldDef{
		{"addr", 1, "string", ""},
		{"amount", 2, "int64", ""},
		{"target_conf", 3, "int32", ""},
		{"sat_per_byte", 5, "int64", ""},
	}},
	{"SendCoinsResponse", []fieldDef{{"txid", 1, "string", ""}}},
	{"SendManyRequest", []fieldDef{
		{"AddrToAmount", 1, "map<string,int64>", ""},
		{"target_conf", 3, "int32", ""},
		{"sat_per_byte", 5, "int64", ""},
	}},
	{"SendManyResponse", []fieldDef{{"txid", 1, "string", ""}}},
	{"NewAddressRequest", []fieldDef{{"type", 1, "AddressType", ""}}},
	{"NewWitnessAddressRequest", nil},
	{"NewAddressResponse", []fieldDef{{"address", 1, "string", ""}}},
	{"SignMessageRequest", []fieldDef{{"msg", 1, "bytes", ""}}},
	{"SignMessageResponse", []fieldDef{{"signature", 1, "string", ""}}},
	{"VerifyMessageRequest", []fieldDef{
		{"msg", 1, "bytes", ""},
		{"signature", 2, "string", ""},
	}},
	{"VerifyMessageResponse", []fieldDef{
		{"valid", 1, "bool", ""},
		{"pubkey", 2, "string", ""},
	}},
	{"LightningAddress", []fieldDef{
		{"pubkey", 1, "string", ""},
		{"host", 2, "string", ""},
	}},
	{"ConnectPeerRequest", []fieldDef{
		{"addr", 1, "LightningAddress", ""},
		{"perm", 2, "bool", ""},
	}},
	{"ConnectPeerResponse", []fieldDef{{"peer_id", 1, "int32", ""}}},
	{"DisconnectPeerRequest", []fieldDef{{"pub_key", 1, "string", ""}}},
	{"DisconnectPeerResponse", nil},
	{"Peer", []fieldDef{
		{"pub_key", 1, "string", ""},
		{"peer_id", 2, "int32", ""},
		{"address", 3, "string", ""},
		{"bytes_sent", 4, "uint64", ""},
		{"bytes_recv", 5, "uint64", ""},
		{"sat_sent", 6, "int64", ""},
		{"sat_recv", 7, "int64", ""},
		{"inbound", 8, "bool", ""},
		{"ping_time", 9, "int64", ""},
	}},
	{"ListPeersRequest", nil},
	{"ListPeersResponse", []fieldDef{{"peers", 1, "repeated Peer", ""}}},
	{"GetInfoRequest", nil},
	{"GetInfoResponse", []fieldDef{
		{"identity_pubkey", 1, "string", ""},
		{"alias", 2, "string", ""},
		{"num_pending_channels", 3, "uint32", ""},
		{"num_active_channels", 4, "uint32", ""},
		{"num_peers", 5, "uint32", ""},
		{"block_height", 6, "uint32", ""},
		{"block_hash", 8, "string", ""},
		{"synced_to_chain", 9, "bool", ""},
		{"testnet", 10, "bool", ""},
		{"chains", 11, "repeated string", ""},
		{"uris", 12, "repeated string", ""},
		{"best_header_timestamp", 13, "int64", ""},
		{"version", 14, "string", ""},
	}},
	{"StopRequest", nil},
	{"StopResponse", nil},
	{"SetAliasRequest", []fieldDef{{"new_alias", 1, "string", ""}}},
	{"SetAliasResponse", nil},
	{"DebugLevelRequest", []fieldDef{
		{"show", 1, "bool", ""},
		{"level_spec", 2, "string", ""},
	}},
	{"DebugLevelResponse", []fieldDef{{"sub_systems", 1, "string", ""}}},
	{"ChannelPoint", []fieldDef{
		{"funding_txid_bytes", 1, "bytes", "funding_txid"},
		{"funding_txid_str", 2, "string", "funding_txid"},
		{"output_index", 3, "uint32", ""},
	}},
	{"HTLC", []fieldDef{
		{"incoming", 1, "bool", ""},
		{"amount", 2, "int64", ""},
		{"hashlock", 3, "bytes", ""},
		{"expiration_height", 4, "uint32", ""},
	}},
	{"Channel", []fieldDef{
		{"active", 1, "bool", ""},
		{"remote_pubkey", 2, "string", ""},
		{"channel_point", 3, "string", ""},
		{"chan_id", 4, "uint64", ""},
		{"capacity", 5, "int64", ""},
		{"local_balance", 6, "int64", ""},
		{"remote_balance", 7, "int64", ""},
		{"commit_fee", 8, "int64", ""},
		{"commit_weight", 9, "int64", ""},
		{"fee_per_kw", 10, "int64", ""},
		{"unsettled_balance", 11, "int64", ""},
		{"total_satoshis_sent", 12, "int64", ""},
		{"total_satoshis_received", 13, "int64", ""},
		{"num_updates", 14, "uint64", ""},
		{"pending_htlcs", 15, "repeated HTLC", ""},
		{"csv_delay", 16, "uint32", ""},
		{"private", 17, "bool", ""},
	}},
	{"ListChannelsRequest", []fieldDef{
		{"active_only", 1, "bool", ""},
		{"inactive_only", 2, "bool", ""},
		{"public_only", 3, "bool", ""},
		{"private_only", 4, "bool", ""},
	}},
	{"ListChannelsResponse", []fieldDef{{"channels", 11, "repeated Channel", ""}}},
	{"PendingChannelsRequest", nil},
	{"PendingChannel", []fieldDef{
		{"remote_node_pub", 1, "string", ""},
		{"channel_point", 2, "string", ""},
		{"capacity", 3, "int64", ""},
		{"local_balance", 4, "int64", ""},
		{"remote_balance", 5, "int64", ""},
	}},
	{"PendingOpenChannel", []fieldDef{
		{"channel", 1, "PendingChannel", ""},
		{"confirmation_height", 2, "uint32", ""},
		{"blocks_till_open", 3, "int32", ""},
		{"commit_fee", 4, "int64", ""},
		{"commit_weight", 5, "int64", ""},
		{"fee_per_kw", 6, "int64", ""},
	}},
	{"ClosedChannel", []fieldDef{
		{"channel", 1, "PendingChannel", ""},
		{"closing_txid", 2, "string", ""},
	}},
	{"ForceClosedChannel", []fieldDef{
		{"channel", 1, "PendingChannel", ""},
		{"closing_txid", 2, "string", ""},
		{"limbo_balance", 3, "int64", ""},
		{"maturity_height", 4, "uint32", ""},
		{"blocks_til_maturity", 5, "int32", ""},
		{"recovered_balance", 6, "int64", ""},
	}},
	{"PendingChannelsResponse", []fieldDef{
		{"total_limbo_balance", 1, "int64", ""},
		{"pending_open_channels", 2, "repeated PendingOpenChannel", ""},
		{"pending_closing_channels", 3, "repeated ClosedChannel", ""},
		{"pending_force_closing_channels", 4, "repeated ForceClosedChannel", ""},
	}},
	{"OpenChannelRequest", []fieldDef{
		{"target_peer_id", 1, "int32", ""},
		{"node_pubkey", 2, "bytes", ""},
		{"node_pubkey_string", 3, "string", ""},
		{"local_funding_amount", 4, "int64", ""},
		{"push_sat", 5, "int64", ""},
		{"target_conf", 6, "int32", ""},
		{"sat_per_byte", 7, "int64", ""},
		{"private", 8, "bool", ""},
	}},
	{"PendingUpdate", []fieldDef{
		{"txid", 1, "bytes", ""},
		{"output_index", 2, "uint32", ""},
	}},
	{"ConfirmationUpdate", []fieldDef{
		{"block_sha", 1, "bytes", ""},
		{"block_height", 2, "int32", ""},
		{"num_confs_left", 3, "uint32", ""},
	}},
	{"ChannelOpenUpdate", []fieldDef{{"channel_point", 1, "ChannelPoint", ""}}},
	{"OpenStatusUpdate", []fieldDef{
		{"chan_pending", 1, "PendingUpdate", "update"},
		{"confirmation", 2, "ConfirmationUpdate", "update"},
		{"chan_open", 3, "ChannelOpenUpdate", "update"},
	}},
	{"CloseChannelRequest", []fieldDef{
		{"channel_point", 1, "ChannelPoint", ""},
		{"force", 2, "bool", ""},
		{"target_conf", 3, "int32", ""},
		{"sat_per_byte", 4, "int64", ""},
	}},
	{"ChannelCloseUpdate", []fieldDef{
		{"closing_txid", 1, "bytes", ""},
		{"success", 2, "bool", ""},
	}},
	{"CloseStatusUpdate", []fieldDef{
		{"close_pending", 1, "PendingUpdate", "update"},
		{"confirmation", 2, "ConfirmationUpdate", "update"},
		{"chan_close", 3, "ChannelCloseUpdate", "update"},
	}},
	{"Hop", []fieldDef{
		{"chan_id", 1, "uint64", ""},
		{"chan_capacity", 2, "int64", ""},
		{"amt_to_forward", 3, "int64", ""},
		{"fee", 4, "int64", ""},
		{"expiry", 5, "uint32", ""},
		{"amt_to_forward_msat", 6, "int64", ""},
		{"fee_msat", 7, "int64", ""},
		{"pub_key", 8, "string", ""},
	}},
	{"Route", []fieldDef{
		{"total_time_lock", 1, "uint32", ""},
		{"total_fees", 2, "int64", ""},
		{"total_amt", 3, "int64", ""},
		{"hops", 4, "repeated Hop", ""},
		{"total_fees_msat", 5, "int64", ""},
		{"total_amt_msat", 6, "int64", ""},
	}},
	{"SendRequest", []fieldDef{
		{"dest", 1, "bytes", ""},
		{"dest_string", 2, "string", ""},
		{"amt", 3, "int64", ""},
		{"payment_hash", 4, "bytes", ""},
		{"payment_hash_string", 5, "string", ""},
		{"payment_request", 6, "string", ""},
		{"final_cltv_delta", 7, "int32", ""},
	}},
	{"SendResponse", []fieldDef{
		{"payment_error", 1, "string", ""},
		{"payment_preimage", 2, "bytes", ""},
		{"payment_route", 3, "Route", ""},
	}},
	{"Payment", []fieldDef{
		{"payment_hash", 1, "string", ""},
		{"value", 2, "int64", ""},
		{"creation_date", 3, "int64", ""},
		{"path", 4, "repeated string", ""},
		{"fee", 5, "int64", ""},
		{"payment_preimage", 6, "string", ""},
	}},
	{"ListPaymentsRequest", nil},
	{"ListPaymentsResponse", []fieldDef{{"payments", 1, "repeated Payment", ""}}},
	{"DeleteAllPaymentsRequest", nil},
	{"DeleteAllPaymentsResponse", nil},
	{"Invoice", []fieldDef{
		{"memo", 1, "string", ""},
		{"receipt", 2, "bytes", ""},
		{"r_preimage", 3, "bytes", ""},
		{"r_hash", 4, "bytes", ""},
		{"value", 5, "int64", ""},
		{"settled", 6, "bool", ""},
		{"creation_date", 7, "int64", ""},
		{"settle_date", 8, "int64", ""},
		{"payment_request", 9, "string", ""},
		{"description_hash", 10, "bytes", ""},
		{"expiry", 11, "int64", ""},
		{"fallback_addr", 12, "string", ""},
		{"cltv_expiry", 13, "uint64", ""},
		{"private", 15, "bool", ""},
		{"add_index", 16, "uint64", ""},
		{"settle_index", 17, "uint64", ""},
		{"amt_paid", 18, "int64", ""},
	}},
	{"AddInvoiceResponse", []fieldDef{
		{"r_hash", 1, "bytes", ""},
		{"payment_request", 2, "string", ""},
		{"add_index", 16, "uint64", ""},
	}},
	{"PaymentHash", []fieldDef{
		{"r_hash_str", 1, "string", ""},
		{"r_hash", 2, "bytes", ""},
	}},
	{"ListInvoiceRequest", []fieldDef{
		{"pending_only", 1, "bool", ""},
		{"index_offset", 4, "uint64", ""},
		{"num_max_invoices", 5, "uint64", ""},
		{"reversed", 6, "bool", ""},
	}},
	{"ListInvoiceResponse", []fieldDef{
		{"invoices", 1, "repeated Invoice", ""},
		{"last_index_offset", 2, "uint64", ""},
		{"first_index_offset", 3, "uint64", ""},
	}},
	{"InvoiceSubscription", []fieldDef{
		{"add_index", 1, "uint64", ""},
		{"settle_index", 2, "uint64", ""},
	}},
	{"PayReqString", []fieldDef{{"pay_req", 1, "string", ""}}},
	{"PayReq", []fieldDef{
		{"destination", 1, "string", ""},
		{"payment_hash", 2, "string", ""},
		{"num_satoshis", 3, "int64", ""},
		{"timestamp", 4, "int64", ""},
		{"expiry", 5, "int64", ""},
		{"description", 6, "string", ""},
		{"description_hash", 7, "string", ""},
		{"fallback_addr", 8, "string", ""},
		{"cltv_expiry", 9, "int64", ""},
	}},
	{"ChannelGraphRequest", []fieldDef{{"include_unannounced", 1, "bool", ""}}},
	{"NodeAddress", []fieldDef{
		{"network", 1, "string", ""},
		{"addr", 2, "string", ""},
	}},
	{"LightningNode", []fieldDef{
		{"last_update", 1, "uint32", ""},
		{"pub_key", 2, "string", ""},
		{"alias", 3, "string", ""},
		{"addresses", 4, "repeated NodeAddress", ""},
		{"color", 5, "string", ""},
	}},
	{"RoutingPolicy", []fieldDef{
		{"time_lock_delta", 1, "uint32", ""},
		{"min_htlc", 2, "int64", ""},
		{"fee_base_msat", 3, "int64", ""},
		{"fee_rate_milli_msat", 4, "int64", ""},
		{"disabled", 5, "bool", ""},
	}},
	{"ChannelEdge", []fieldDef{
		{"channel_id", 1, "uint64", ""},
		{"chan_point", 2, "string", ""},
		{"last_update", 3, "uint32", ""},
		{"node1_pub", 4, "string", ""},
		{"node2_pub", 5, "string", ""},
		{"capacity", 6, "int64", ""},
		{"node1_policy", 7, "RoutingPolicy", ""},
		{"node2_policy", 8, "RoutingPolicy", ""},
	}},
	{"ChannelGraph", []fieldDef{
		{"nodes", 1, "repeated LightningNode", ""},
		{"edges", 2, "repeated ChannelEdge", ""},
	}},
	{"ChanInfoRequest", []fieldDef{{"chan_id", 1, "uint64", ""}}},
	{"NodeInfoRequest", []fieldDef{{"pub_key", 1, "string", ""}}},
	{"NodeInfo", []fieldDef{
		{"node", 1, "LightningNode", ""},
		{"num_channels", 2, "uint32", ""},
		{"total_capacity", 3, "int64", ""},
	}},
	{"QueryRoutesRequest", []fieldDef{
		{"pub_key", 1, "string", ""},
		{"amt", 2, "int64", ""},
		{"num_routes", 3, "int32", ""},
	}},
	{"QueryRoutesResponse", []fieldDef{{"routes", 1, "repeated Route", ""}}},
	{"NetworkInfoRequest", nil},
	{"NetworkInfo", []fieldDef{
		{"graph_diameter", 1, "uint32", ""},
		{"avg_out_degree", 2, "double", ""},
		{"max_out_degree", 3, "uint32", ""},
		{"num_nodes", 4, "uint32", ""},
		{"num_channels", 5, "uint32", ""},
		{"total_network_capacity", 6, "int64", ""},
		{"avg_channel_size", 7, "double", ""},
		{"min_channel_size", 8, "int64", ""},
		{"max_channel_size", 9, "int64", ""},
	}},
	{"GraphTopologySubscription", nil},
	{"NodeUpdate", []fieldDef{
		{"addresses", 1, "repeated string", ""},
		{"identity_key", 2, "string", ""},
		{"global_features", 3, "bytes", ""},
		{"alias", 4, "string", ""},
	}},
	{"ChannelEdgeUpdate", []fieldDef{
		{"chan_id", 1, "uint64", ""},
		{"chan_point", 2, "ChannelPoint", ""},
		{"capacity", 3, "int64", ""},
		{"routing_policy", 4, "RoutingPolicy", ""},
		{"advertising_node", 5, "string", ""},
		{"connecting_node", 6, "string", ""},
	}},
	{"ClosedChannelUpdate", []fieldDef{
		{"chan_id", 1, "uint64", ""},
		{"capacity", 2, "int64", ""},
		{"closed_height", 3, "uint32", ""},
		{"chan_point", 4, "ChannelPoint", ""},
	}},
	{"GraphTopologyUpdate", []fieldDef{
		{"node_updates", 1, "repeated NodeUpdate", ""},
		{"channel_updates", 2, "repeated ChannelEdgeUpdate", ""},
		{"closed_chans", 3, "repeated ClosedChannelUpdate", ""},
	}},
	{"FeeReportRequest", nil},
	{"ChannelFeeReport", []fieldDef{
		{"chan_point", 1, "string", ""},
		{"base_fee_msat", 2, "int64", ""},
		{"fee_per_mil", 3, "int64", ""},
		{"fee_rate", 4, "double", ""},
	}},
	{"FeeReportResponse", []fieldDef{
		{"channel_fees", 1, "repeated ChannelFeeReport", ""},
		{"day_fee_sum", 2, "uint64", ""},
		{"week_fee_sum", 3, "uint64", ""},
		{"month_fee_sum", 4, "uint64", ""},
	}},
	{"PolicyUpdateRequest", []fieldDef{
		{"global", 1, "bool", "scope"},
		{"chan_point", 2, "ChannelPoint", "scope"},
		{"base_fee_msat", 3, "int64", ""},
		{"fee_rate", 4, "double", ""},
		{"time_lock_delta", 5, "uint32", ""},
	}},
	{"PolicyUpdateResponse", nil},
}

var methodDefs = []methodDef{
	{name: "WalletBalance", input: "WalletBalanceRequest", output: "WalletBalanceResponse"},
	{name: "ChannelBalance", input: "ChannelBalanceRequest", output: "ChannelBalanceResponse"},
	{name: "GetTransactions", input: "GetTransactionsRequest", output: "TransactionDetails"},
	{name: "SendCoins", input: "SendCoinsRequest", output: "SendCoinsResponse"},
	{name: "SubscribeTransactions", input: "GetTransactionsRequest", output: "Transaction", serverStream: true},
	{name: "SendMany", input: "SendManyRequest", output: "SendManyResponse"},
	{name: "NewAddress", input: "NewAddressRequest", output: "NewAddressResponse"},
	{name: "NewWitnessAddress", input: "NewWitnessAddressRequest", output: "NewAddressResponse"},
	{name: "SignMessage", input: "SignMessageRequest", output: "SignMessageResponse"},
	{name: "VerifyMessage", input: "VerifyMessageRequest", output: "VerifyMessageResponse"},
	{name: "ConnectPeer", input: "ConnectPeerRequest", output: "ConnectPeerResponse"},
	{name: "DisconnectPeer", input: "DisconnectPeerRequest", output: "DisconnectPeerResponse"},
	{name: "ListPeers", input: "ListPeersRequest", output: "ListPeersResponse"},
	{name: "GetInfo", input: "GetInfoRequest", output: "GetInfoResponse"},
	{name: "PendingChannels", input: "PendingChannelsRequest", output: "PendingChannelsResponse"},
	{name: "ListChannels", input: "ListChannelsRequest", output: "ListChannelsResponse"},
	{name: "OpenChannel", input: "OpenChannelRequest", output: "OpenStatusUpdate", serverStream: true},
	{name: "CloseChannel", input: "CloseChannelRequest", output: "CloseStatusUpdate", serverStream: true},
	{name: "SendPayment", input: "SendRequest", output: "SendResponse", clientStream: true, serverStream: true},
	{name: "SendPaymentSync", input: "SendRequest", output: "SendResponse"},
	{name: "AddInvoice", input: "Invoice", output: "AddInvoiceResponse"},
	{name: "ListInvoices", input: "ListInvoiceRequest", output: "ListInvoiceResponse"},
	{name: "LookupInvoice", input: "PaymentHash", output: "Invoice"},
	{name: "SubscribeInvoices", input: "InvoiceSubscription", output: "Invoice", serverStream: true},
	{name: "DecodePayReq", input: "PayReqString", output: "PayReq"},
	{name: "ListPayments", input: "ListPaymentsRequest", output: "ListPaymentsResponse"},
	{name: "DeleteAllPayments", input: "DeleteAllPaymentsRequest", output: "DeleteAllPaymentsResponse"},
	{name: "DescribeGraph", input: "ChannelGraphRequest", output: "ChannelGraph"},
	{name: "GetChanInfo", input: "ChanInfoRequest", output: "ChannelEdge"},
	{name: "GetNodeInfo", input: "NodeInfoRequest", output: "NodeInfo"},
	{name: "QueryRoutes", input: "QueryRoutesRequest", output: "QueryRoutesResponse"},
	{name: "GetNetworkInfo", input: "NetworkInfoRequest", output: "NetworkInfo"},
	{name: "StopDaemon", input: "StopRequest", output: "StopResponse"},
	{name: "SubscribeChannelGraph", input: "GraphTopologySubscription", output: "GraphTopologyUpdate", serverStream: true},
	{name: "SetAlias", input: "SetAliasRequest", output: "SetAliasResponse"},
	{name: "DebugLevel", input: "DebugLevelRequest", output: "DebugLevelResponse"},
	{name: "FeeReport", input: "FeeReportRequest", output: "FeeReportResponse"},
	{name: "UpdateChannelPolicy", input: "PolicyUpdateRequest", output: "PolicyUpdateResponse"},
}

var scalarKinds = map[string]protoreflect.Kind{
	"bool":   protoreflect.BoolKind,
	"int32":  protoreflect.Int32Kind,
	"int64":  protoreflect.Int64Kind,
	"uint32": protoreflect.Uint32Kind,
	"uint64": protoreflect.Uint64Kind,
	"double": protoreflect.DoubleKind,
	"string": protoreflect.StringKind,
	"bytes":  protoreflect.BytesKind,
}

var (
	fileOnce sync.Once
	fileDesc protoreflect.FileDescriptor
	fileErr  error
)

// File returns the lnrpc file descriptor, building it on first use.
func File() (protoreflect.FileDescriptor, error) {
	fileOnce.Do(func() {
		fileDesc, fileErr = buildFile()
	})
	return fileDesc, fileErr
}

// Service returns the Lightning service descriptor.
func Service() (protoreflect.ServiceDescriptor, error) {
	fd, err := File()
	if err != nil {
		return nil, err
	}
	sd := fd.Services().ByName(ServiceName)
	if sd == nil {
		return nil, fmt.Errorf("lnrpc: service %s missing from descriptor", ServiceName)
	}
	return sd, nil
}

// Method returns the descriptor of one Lightning RPC.
func Method(name string) (protoreflect.MethodDescriptor, error) {
	sd, err := Service()
	if err != nil {
		return nil, err
	}
	md := sd.Methods().ByName(protoreflect.Name(name))
	if md == nil {
		return nil, fmt.Errorf("lnrpc: unknown method %q", name)
	}
	return md, nil
}

// FullMethod returns the gRPC path of an RPC, e.g. "/lnrpc.Lightning/GetInfo".
func FullMethod(name string) string {
	return "/" + PackageName + "." + ServiceName + "/" + name
}

func buildFile() (protoreflect.FileDescriptor, error) {
	fb := protobuilder.NewFile(FileName)
	fb.SetPackageName(protoreflect.FullName(PackageName))
	fb.SetSyntax(protoreflect.Proto3)

	enums := make(map[string]*protobuilder.EnumBuilder, len(enumDefs))
	for name, values := range enumDefs {
		eb := protobuilder.NewEnum(protoreflect.Name(name))
		for i, v := range values {
			evb := protobuilder.NewEnumValue(protoreflect.Name(v))
			evb.SetNumber(protoreflect.EnumNumber(i))
			eb.AddValue(evb)
		}
		enums[name] = eb
		fb.AddEnum(eb)
	}

	// Pass 1: one builder per message so fields can reference any of them.
	messages := make(map[string]*protobuilder.MessageBuilder, len(messageDefs))
	for _, def := range messageDefs {
		mb := protobuilder.NewMessage(protoreflect.Name(def.name))
		messages[def.name] = mb
		fb.AddMessage(mb)
	}

	// Pass 2: fields and oneofs.
	for _, def := range messageDefs {
		mb := messages[def.name]
		oneofs := map[string]*protobuilder.OneofBuilder{}
		for _, f := range def.fields {
			fld, err := buildField(f, messages, enums)
			if err != nil {
				return nil, fmt.Errorf("lnrpc: %s.%s: %w", def.name, f.name, err)
			}
			if f.oneof == "" {
				mb.AddField(fld)
				continue
			}
			ob, ok := oneofs[f.oneof]
			if !ok {
				ob = protobuilder.NewOneof(protoreflect.Name(f.oneof))
				oneofs[f.oneof] = ob
				mb.AddOneOf(ob)
			}
			ob.AddChoice(fld)
		}
	}

	sb := protobuilder.NewService(ServiceName)
	for _, m := range methodDefs {
		in, out := messages[m.input], messages[m.output]
		if in == nil || out == nil {
			return nil, fmt.Errorf("lnrpc: method %s references unknown message", m.name)
		}
		sb.AddMethod(protobuilder.NewMethod(
			protoreflect.Name(m.name),
			protobuilder.RpcTypeMessage(in, m.clientStream),
			protobuilder.RpcTypeMessage(out, m.serverStream),
		))
	}
	fb.AddService(sb)

	return fb.Build()
}

func buildField(f fieldDef, messages map[string]*protobuilder.MessageBuilder, enums map[string]*protobuilder.EnumBuilder) (*protobuilder.FieldBuilder, error) {
	typ := f.typ
	if strings.HasPrefix(typ, "map<") {
		parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(typ, "map<"), ">"), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed map type %q", typ)
		}
		key, err := fieldType(strings.TrimSpace(parts[0]), messages, enums)
		if err != nil {
			return nil, err
		}
		val, err := fieldType(strings.TrimSpace(parts[1]), messages, enums)
		if err != nil {
			return nil, err
		}
		fld := protobuilder.NewMapField(protoreflect.Name(f.name), key, val)
		fld.SetNumber(protoreflect.FieldNumber(f.number))
		return fld, nil
	}

	repeated := strings.HasPrefix(typ, "repeated ")
	typ = strings.TrimPrefix(typ, "repeated ")
	ft, err := fieldType(typ, messages, enums)
	if err != nil {
		return nil, err
	}
	fld := protobuilder.NewField(protoreflect.Name(f.name), ft)
	fld.SetNumber(protoreflect.FieldNumber(f.number))
	if repeated {
		fld.SetRepeated()
	}
	return fld, nil
}

func fieldType(name string, messages map[string]*protobuilder.MessageBuilder, enums map[string]*protobuilder.EnumBuilder) (*protobuilder.FieldType, error) {
	if k, ok := scalarKinds[name]; ok {
		return protobuilder.FieldTypeScalar(k), nil
	}
	if mb, ok := messages[name]; ok {
		return protobuilder.FieldTypeMessage(mb), nil
	}
	if eb, ok := enums[name]; ok {
		return protobuilder.FieldTypeEnum(eb), nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}
