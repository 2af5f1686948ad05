package lnrpc

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Stream is an open server-push RPC. Recv returns io.EOF once the node ends
// the stream. Close releases the stream and is safe to call more than once.
type Stream[T any] interface {
	Recv() (*T, error)
	Close() error
}

// LightningClient is the typed capability over the lnd Lightning service.
// Errors returned by the node are passed through unchanged, so status.Code
// can be applied to them.
type LightningClient interface {
	WalletBalance(ctx context.Context, req *WalletBalanceRequest) (*WalletBalanceResponse, error)
	ChannelBalance(ctx context.Context, req *ChannelBalanceRequest) (*ChannelBalanceResponse, error)
	GetTransactions(ctx context.Context, req *GetTransactionsRequest) (*TransactionDetails, error)
	SubscribeTransactions(ctx context.Context, req *GetTransactionsRequest) (Stream[Transaction], error)
	SendCoins(ctx context.Context, req *SendCoinsRequest) (*SendCoinsResponse, error)
	SendMany(ctx context.Context, req *SendManyRequest) (*SendManyResponse, error)
	NewAddress(ctx context.Context, req *NewAddressRequest) (*NewAddressResponse, error)
	NewWitnessAddress(ctx context.Context, req *NewWitnessAddressRequest) (*NewAddressResponse, error)
	SignMessage(ctx context.Context, req *SignMessageRequest) (*SignMessageResponse, error)
	VerifyMessage(ctx context.Context, req *VerifyMessageRequest) (*VerifyMessageResponse, error)
	ConnectPeer(ctx context.Context, req *ConnectPeerRequest) (*ConnectPeerResponse, error)
	DisconnectPeer(ctx context.Context, req *DisconnectPeerRequest) (*DisconnectPeerResponse, error)
	ListPeers(ctx context.Context, req *ListPeersRequest) (*ListPeersResponse, error)
	GetInfo(ctx context.Context, req *GetInfoRequest) (*GetInfoResponse, error)
	PendingChannels(ctx context.Context, req *PendingChannelsRequest) (*PendingChannelsResponse, error)
	ListChannels(ctx context.Context, req *ListChannelsRequest) (*ListChannelsResponse, error)
	OpenChannel(ctx context.Context, req *OpenChannelRequest) (Stream[OpenStatusUpdate], error)
	CloseChannel(ctx context.Context, req *CloseChannelRequest) (Stream[CloseStatusUpdate], error)
	SendPayment(ctx context.Context, req *SendRequest) (Stream[SendResponse], error)
	SendPaymentSync(ctx context.Context, req *SendRequest) (*SendResponse, error)
	AddInvoice(ctx context.Context, req *Invoice) (*AddInvoiceResponse, error)
	ListInvoices(ctx context.Context, req *ListInvoiceRequest) (*ListInvoiceResponse, error)
	LookupInvoice(ctx context.Context, req *PaymentHash) (*Invoice, error)
	SubscribeInvoices(ctx context.Context, req *InvoiceSubscription) (Stream[Invoice], error)
	DecodePayReq(ctx context.Context, req *PayReqString) (*PayReq, error)
	ListPayments(ctx context.Context, req *ListPaymentsRequest) (*ListPaymentsResponse, error)
	DeleteAllPayments(ctx context.Context, req *DeleteAllPaymentsRequest) (*DeleteAllPaymentsResponse, error)
	DescribeGraph(ctx context.Context, req *ChannelGraphRequest) (*ChannelGraph, error)
	GetChanInfo(ctx context.Context, req *ChanInfoRequest) (*ChannelEdge, error)
	GetNodeInfo(ctx context.Context, req *NodeInfoRequest) (*NodeInfo, error)
	QueryRoutes(ctx context.Context, req *QueryRoutesRequest) (*QueryRoutesResponse, error)
	GetNetworkInfo(ctx context.Context, req *NetworkInfoRequest) (*NetworkInfo, error)
	StopDaemon(ctx context.Context, req *StopRequest) (*StopResponse, error)
	SubscribeChannelGraph(ctx context.Context, req *GraphTopologySubscription) (Stream[GraphTopologyUpdate], error)
	SetAlias(ctx context.Context, req *SetAliasRequest) (*SetAliasResponse, error)
	DebugLevel(ctx context.Context, req *DebugLevelRequest) (*DebugLevelResponse, error)
	FeeReport(ctx context.Context, req *FeeReportRequest) (*FeeReportResponse, error)
	UpdateChannelPolicy(ctx context.Context, req *PolicyUpdateRequest) (*PolicyUpdateResponse, error)
}

// Client implements LightningClient over any gRPC connection using dynamic
// messages built from the runtime descriptor.
type Client struct {
	cc grpc.ClientConnInterface
}

var _ LightningClient = (*Client)(nil)

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func unary[Req, Res any](ctx context.Context, c *Client, method string, req *Req) (*Res, error) {
	if req == nil {
		req = new(Req)
	}
	md, err := Method(method)
	if err != nil {
		return nil, err
	}
	in, err := Encode(md.Input(), req)
	if err != nil {
		return nil, err
	}
	out := dynamicpb.NewMessage(md.Output())
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out); err != nil {
		return nil, err
	}
	res := new(Res)
	if err := Decode(out, res); err != nil {
		return nil, err
	}
	return res, nil
}

func openStream[Req, Res any](ctx context.Context, c *Client, method string, req *Req) (Stream[Res], error) {
	if req == nil {
		req = new(Req)
	}
	md, err := Method(method)
	if err != nil {
		return nil, err
	}
	in, err := Encode(md.Input(), req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	desc := &grpc.StreamDesc{
		StreamName:    method,
		ServerStreams: md.IsStreamingServer(),
		ClientStreams: md.IsStreamingClient(),
	}
	cs, err := c.cc.NewStream(ctx, desc, FullMethod(method))
	if err != nil {
		cancel()
		return nil, err
	}
	// io.EOF from SendMsg means the server already ended the stream; the
	// real status surfaces on the first Recv.
	if err := cs.SendMsg(in); err != nil && !errors.Is(err, io.EOF) {
		cancel()
		return nil, err
	}
	// Bidirectional streams keep the send side open until Close so the
	// node does not treat the half-close as the end of the session.
	if !md.IsStreamingClient() {
		if err := cs.CloseSend(); err != nil {
			cancel()
			return nil, err
		}
	}
	return &clientStream[Res]{cs: cs, desc: md.Output(), cancel: cancel}, nil
}

type clientStream[T any] struct {
	cs     grpc.ClientStream
	desc   protoreflect.MessageDescriptor
	cancel context.CancelFunc
	once   sync.Once
}

func (s *clientStream[T]) Recv() (*T, error) {
	msg := dynamicpb.NewMessage(s.desc)
	if err := s.cs.RecvMsg(msg); err != nil {
		return nil, err
	}
	out := new(T)
	if err := Decode(msg, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *clientStream[T]) Close() error {
	s.once.Do(func() {
		_ = s.cs.CloseSend()
		s.cancel()
	})
	return nil
}

func (c *Client) WalletBalance(ctx context.Context, req *WalletBalanceRequest) (*WalletBalanceResponse, error) {
	return unary[WalletBalanceRequest, WalletBalanceResponse](ctx, c, "WalletBalance", req)
}

func (c *Client) ChannelBalance(ctx context.Context, req *ChannelBalanceRequest) (*ChannelBalanceResponse, error) {
	return unary[ChannelBalanceRequest, ChannelBalanceResponse](ctx, c, "ChannelBalance", req)
}

func (c *Client) GetTransactions(ctx context.Context, req *GetTransactionsRequest) (*TransactionDetails, error) {
	return unary[GetTransactionsRequest, TransactionDetails](ctx, c, "GetTransactions", req)
}

func (c *Client) SubscribeTransactions(ctx context.Context, req *GetTransactionsRequest) (Stream[Transaction], error) {
	return openStream[GetTransactionsRequest, Transaction](ctx, c, "SubscribeTransactions", req)
}

func (c *Client) SendCoins(ctx context.Context, req *SendCoinsRequest) (*SendCoinsResponse, error) {
	return unary[SendCoinsRequest, SendCoinsResponse](ctx, c, "SendCoins", req)
}

func (c *Client) SendMany(ctx context.Context, req *SendManyRequest) (*SendManyResponse, error) {
	return unary[SendManyRequest, SendManyResponse](ctx, c, "SendMany", req)
}

func (c *Client) NewAddress(ctx context.Context, req *NewAddressRequest) (*NewAddressResponse, error) {
	return unary[NewAddressRequest, NewAddressResponse](ctx, c, "NewAddress", req)
}

func (c *Client) NewWitnessAddress(ctx context.Context, req *NewWitnessAddressRequest) (*NewAddressResponse, error) {
	return unary[NewWitnessAddressRequest, NewAddressResponse](ctx, c, "NewWitnessAddress", req)
}

func (c *Client) SignMessage(ctx context.Context, req *SignMessageRequest) (*SignMessageResponse, error) {
	return unary[SignMessageRequest, SignMessageResponse](ctx, c, "SignMessage", req)
}

func (c *Client) VerifyMessage(ctx context.Context, req *VerifyMessageRequest) (*VerifyMessageResponse, error) {
	return unary[VerifyMessageRequest, VerifyMessageResponse](ctx, c, "VerifyMessage", req)
}

func (c *Client) ConnectPeer(ctx context.Context, req *ConnectPeerRequest) (*ConnectPeerResponse, error) {
	return unary[ConnectPeerRequest, ConnectPeerResponse](ctx, c, "ConnectPeer", req)
}

func (c *Client) DisconnectPeer(ctx context.Context, req *DisconnectPeerRequest) (*DisconnectPeerResponse, error) {
	return unary[DisconnectPeerRequest, DisconnectPeerResponse](ctx, c, "DisconnectPeer", req)
}

func (c *Client) ListPeers(ctx context.Context, req *ListPeersRequest) (*ListPeersResponse, error) {
	return unary[ListPeersRequest, ListPeersResponse](ctx, c, "ListPeers", req)
}

func (c *Client) GetInfo(ctx context.Context, req *GetInfoRequest) (*GetInfoResponse, error) {
	return unary[GetInfoRequest, GetInfoResponse](ctx, c, "GetInfo", req)
}

func (c *Client) PendingChannels(ctx context.Context, req *PendingChannelsRequest) (*PendingChannelsResponse, error) {
	return unary[PendingChannelsRequest, PendingChannelsResponse](ctx, c, "PendingChannels", req)
}

func (c *Client) ListChannels(ctx context.Context, req *ListChannelsRequest) (*ListChannelsResponse, error) {
	return unary[ListChannelsRequest, ListChannelsResponse](ctx, c, "ListChannels", req)
}

func (c *Client) OpenChannel(ctx context.Context, req *OpenChannelRequest) (Stream[OpenStatusUpdate], error) {
	return openStream[OpenChannelRequest, OpenStatusUpdate](ctx, c, "OpenChannel", req)
}

func (c *Client) CloseChannel(ctx context.Context, req *CloseChannelRequest) (Stream[CloseStatusUpdate], error) {
	return openStream[CloseChannelRequest, CloseStatusUpdate](ctx, c, "CloseChannel", req)
}

func (c *Client) SendPayment(ctx context.Context, req *SendRequest) (Stream[SendResponse], error) {
	return openStream[SendRequest, SendResponse](ctx, c, "SendPayment", req)
}

func (c *Client) SendPaymentSync(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	return unary[SendRequest, SendResponse](ctx, c, "SendPaymentSync", req)
}

func (c *Client) AddInvoice(ctx context.Context, req *Invoice) (*AddInvoiceResponse, error) {
	return unary[Invoice, AddInvoiceResponse](ctx, c, "AddInvoice", req)
}

func (c *Client) ListInvoices(ctx context.Context, req *ListInvoiceRequest) (*ListInvoiceResponse, error) {
	return unary[ListInvoiceRequest, ListInvoiceResponse](ctx, c, "ListInvoices", req)
}

func (c *Client) LookupInvoice(ctx context.Context, req *PaymentHash) (*Invoice, error) {
	return unary[PaymentHash, Invoice](ctx, c, "LookupInvoice", req)
}

func (c *Client) SubscribeInvoices(ctx context.Context, req *InvoiceSubscription) (Stream[Invoice], error) {
	return openStream[InvoiceSubscription, Invoice](ctx, c, "SubscribeInvoices", req)
}

func (c *Client) DecodePayReq(ctx context.Context, req *PayReqString) (*PayReq, error) {
	return unary[PayReqString, PayReq](ctx, c, "DecodePayReq", req)
}

func (c *Client) ListPayments(ctx context.Context, req *ListPaymentsRequest) (*ListPaymentsResponse, error) {
	return unary[ListPaymentsRequest, ListPaymentsResponse](ctx, c, "ListPayments", req)
}

func (c *Client) DeleteAllPayments(ctx context.Context, req *DeleteAllPaymentsRequest) (*DeleteAllPaymentsResponse, error) {
	return unary[DeleteAllPaymentsRequest, DeleteAllPaymentsResponse](ctx, c, "DeleteAllPayments", req)
}

func (c *Client) DescribeGraph(ctx context.Context, req *ChannelGraphRequest) (*ChannelGraph, error) {
	return unary[ChannelGraphRequest, ChannelGraph](ctx, c, "DescribeGraph", req)
}

func (c *Client) GetChanInfo(ctx context.Context, req *ChanInfoRequest) (*ChannelEdge, error) {
	return unary[ChanInfoRequest, ChannelEdge](ctx, c, "GetChanInfo", req)
}

func (c *Client) GetNodeInfo(ctx context.Context, req *NodeInfoRequest) (*NodeInfo, error) {
	return unary[NodeInfoRequest, NodeInfo](ctx, c, "GetNodeInfo", req)
}

func (c *Client) QueryRoutes(ctx context.Context, req *QueryRoutesRequest) (*QueryRoutesResponse, error) {
	return unary[QueryRoutesRequest, QueryRoutesResponse](ctx, c, "QueryRoutes", req)
}

func (c *Client) GetNetworkInfo(ctx context.Context, req *NetworkInfoRequest) (*NetworkInfo, error) {
	return unary[NetworkInfoRequest, NetworkInfo](ctx, c, "GetNetworkInfo", req)
}

func (c *Client) StopDaemon(ctx context.Context, req *StopRequest) (*StopResponse, error) {
	return unary[StopRequest, StopResponse](ctx, c, "StopDaemon", req)
}

func (c *Client) SubscribeChannelGraph(ctx context.Context, req *GraphTopologySubscription) (Stream[GraphTopologyUpdate], error) {
	return openStream[GraphTopologySubscription, GraphTopologyUpdate](ctx, c, "SubscribeChannelGraph", req)
}

func (c *Client) SetAlias(ctx context.Context, req *SetAliasRequest) (*SetAliasResponse, error) {
	return unary[SetAliasRequest, SetAliasResponse](ctx, c, "SetAlias", req)
}

func (c *Client) DebugLevel(ctx context.Context, req *DebugLevelRequest) (*DebugLevelResponse, error) {
	return unary[DebugLevelRequest, DebugLevelResponse](ctx, c, "DebugLevel", req)
}

func (c *Client) FeeReport(ctx context.Context, req *FeeReportRequest) (*FeeReportResponse, error) {
	return unary[FeeReportRequest, FeeReportResponse](ctx, c, "FeeReport", req)
}

func (c *Client) UpdateChannelPolicy(ctx context.Context, req *PolicyUpdateRequest) (*PolicyUpdateResponse, error) {
	return unary[PolicyUpdateRequest, PolicyUpdateResponse](ctx, c, "UpdateChannelPolicy", req)
}
