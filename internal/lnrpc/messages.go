package lnrpc

import (
	"encoding/json"
	"strconv"
)

// Message structs mirror the lnrpc wire messages field for field. JSON tags
// carry the proto field names so the codec can round-trip them through
// protojson; 64-bit integers use the ",string" form protojson emits.

type AddressType int32

const (
	AddressTypeWitnessPubkeyHash AddressType = 0
	AddressTypeNestedPubkeyHash  AddressType = 1
	AddressTypePubkeyHash        AddressType = 2
)

// Int64Map is a map with 64-bit values, which protojson renders quoted.
type Int64Map map[string]int64

func (m *Int64Map) UnmarshalJSON(data []byte) error {
	var raw map[string]json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Int64Map, len(raw))
	for k, n := range raw {
		v, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return err
		}
		out[k] = v
	}
	*m = out
	return nil
}

// ---- wallet ----

type WalletBalanceRequest struct {
	WitnessOnly bool `json:"witness_only,omitempty"`
}

type WalletBalanceResponse struct {
	TotalBalance       int64 `json:"total_balance,string,omitempty"`
	ConfirmedBalance   int64 `json:"confirmed_balance,string,omitempty"`
	UnconfirmedBalance int64 `json:"unconfirmed_balance,string,omitempty"`
}

type ChannelBalanceRequest struct{}

type ChannelBalanceResponse struct {
	Balance            int64 `json:"balance,string,omitempty"`
	PendingOpenBalance int64 `json:"pending_open_balance,string,omitempty"`
}

type Transaction struct {
	TxHash           string   `json:"tx_hash,omitempty"`
	Amount           int64    `json:"amount,string,omitempty"`
	NumConfirmations int32    `json:"num_confirmations,omitempty"`
	BlockHash        string   `json:"block_hash,omitempty"`
	BlockHeight      int32    `json:"block_height,omitempty"`
	TimeStamp        int64    `json:"time_stamp,string,omitempty"`
	TotalFees        int64    `json:"total_fees,string,omitempty"`
	DestAddresses    []string `json:"dest_addresses,omitempty"`
}

type GetTransactionsRequest struct{}

type TransactionDetails struct {
	Transactions []*Transaction `json:"transactions,omitempty"`
}

type SendCoinsRequest struct {
	Addr       string `json:"addr,omitempty"`
	Amount     int64  `json:"amount,string,omitempty"`
	TargetConf int32  `json:"target_conf,omitempty"`
	SatPerByte int64  `json:"sat_per_byte,string,omitempty"`
}

type SendCoinsResponse struct {
	Txid string `json:"txid,omitempty"`
}

type SendManyRequest struct {
	AddrToAmount Int64Map `json:"AddrToAmount,omitempty"`
	TargetConf   int32    `json:"target_conf,omitempty"`
	SatPerByte   int64    `json:"sat_per_byte,string,omitempty"`
}

type SendManyResponse struct {
	Txid string `json:"txid,omitempty"`
}

type NewAddressRequest struct {
	Type AddressType `json:"type,omitempty"`
}

type NewWitnessAddressRequest struct{}

type NewAddressResponse struct {
	Address string `json:"address,omitempty"`
}

type SignMessageRequest struct {
	Msg []byte `json:"msg,omitempty"`
}

type SignMessageResponse struct {
	Signature string `json:"signature,omitempty"`
}

type VerifyMessageRequest struct {
	Msg       []byte `json:"msg,omitempty"`
	Signature string `json:"signature,omitempty"`
}

type VerifyMessageResponse struct {
	Valid  bool   `json:"valid,omitempty"`
	Pubkey string `json:"pubkey,omitempty"`
}

// ---- peers ----

type LightningAddress struct {
	Pubkey string `json:"pubkey,omitempty"`
	Host   string `json:"host,omitempty"`
}

type ConnectPeerRequest struct {
	Addr *LightningAddress `json:"addr,omitempty"`
	Perm bool              `json:"perm,omitempty"`
}

type ConnectPeerResponse struct {
	PeerId int32 `json:"peer_id,omitempty"`
}

type DisconnectPeerRequest struct {
	PubKey string `json:"pub_key,omitempty"`
}

type DisconnectPeerResponse struct{}

type Peer struct {
	PubKey    string `json:"pub_key,omitempty"`
	PeerId    int32  `json:"peer_id,omitempty"`
	Address   string `json:"address,omitempty"`
	BytesSent uint64 `json:"bytes_sent,string,omitempty"`
	BytesRecv uint64 `json:"bytes_recv,string,omitempty"`
	SatSent   int64  `json:"sat_sent,string,omitempty"`
	SatRecv   int64  `json:"sat_recv,string,omitempty"`
	Inbound   bool   `json:"inbound,omitempty"`
	PingTime  int64  `json:"ping_time,string,omitempty"`
}

type ListPeersRequest struct{}

type ListPeersResponse struct {
	Peers []*Peer `json:"peers,omitempty"`
}

// ---- node ----

type GetInfoRequest struct{}

type GetInfoResponse struct {
	IdentityPubkey      string   `json:"identity_pubkey,omitempty"`
	Alias               string   `json:"alias,omitempty"`
	NumPendingChannels  uint32   `json:"num_pending_channels,omitempty"`
	NumActiveChannels   uint32   `json:"num_active_channels,omitempty"`
	NumPeers            uint32   `json:"num_peers,omitempty"`
	BlockHeight         uint32   `json:"block_height,omitempty"`
	BlockHash           string   `json:"block_hash,omitempty"`
	SyncedToChain       bool     `json:"synced_to_chain,omitempty"`
	Testnet             bool     `json:"testnet,omitempty"`
	Chains              []string `json:"chains,omitempty"`
	Uris                []string `json:"uris,omitempty"`
	BestHeaderTimestamp int64    `json:"best_header_timestamp,string,omitempty"`
	Version             string   `json:"version,omitempty"`
}

type StopRequest struct{}

type StopResponse struct{}

type SetAliasRequest struct {
	NewAlias string `json:"new_alias,omitempty"`
}

type SetAliasResponse struct{}

type DebugLevelRequest struct {
	Show      bool   `json:"show,omitempty"`
	LevelSpec string `json:"level_spec,omitempty"`
}

type DebugLevelResponse struct {
	SubSystems string `json:"sub_systems,omitempty"`
}

// ---- channels ----

// ChannelPoint identifies a funding outpoint. Only one of FundingTxidBytes
// and FundingTxidStr may be set.
type ChannelPoint struct {
	FundingTxidBytes []byte `json:"funding_txid_bytes,omitempty"`
	FundingTxidStr   string `json:"funding_txid_str,omitempty"`
	OutputIndex      uint32 `json:"output_index,omitempty"`
}

type HTLC struct {
	Incoming         bool   `json:"incoming,omitempty"`
	Amount           int64  `json:"amount,string,omitempty"`
	Hashlock         []byte `json:"hashlock,omitempty"`
	ExpirationHeight uint32 `json:"expiration_height,omitempty"`
}

type Channel struct {
	Active                bool    `json:"active,omitempty"`
	RemotePubkey          string  `json:"remote_pubkey,omitempty"`
	ChannelPoint          string  `json:"channel_point,omitempty"`
	ChanId                uint64  `json:"chan_id,string,omitempty"`
	Capacity              int64   `json:"capacity,string,omitempty"`
	LocalBalance          int64   `json:"local_balance,string,omitempty"`
	RemoteBalance         int64   `json:"remote_balance,string,omitempty"`
	CommitFee             int64   `json:"commit_fee,string,omitempty"`
	CommitWeight          int64   `json:"commit_weight,string,omitempty"`
	FeePerKw              int64   `json:"fee_per_kw,string,omitempty"`
	UnsettledBalance      int64   `json:"unsettled_balance,string,omitempty"`
	TotalSatoshisSent     int64   `json:"total_satoshis_sent,string,omitempty"`
	TotalSatoshisReceived int64   `json:"total_satoshis_received,string,omitempty"`
	NumUpdates            uint64  `json:"num_updates,string,omitempty"`
	PendingHtlcs          []*HTLC `json:"pending_htlcs,omitempty"`
	CsvDelay              uint32  `json:"csv_delay,omitempty"`
	Private               bool    `json:"private,omitempty"`
}

type ListChannelsRequest struct {
	ActiveOnly   bool `json:"active_only,omitempty"`
	InactiveOnly bool `json:"inactive_only,omitempty"`
	PublicOnly   bool `json:"public_only,omitempty"`
	PrivateOnly  bool `json:"private_only,omitempty"`
}

type ListChannelsResponse struct {
	Channels []*Channel `json:"channels,omitempty"`
}

type PendingChannelsRequest struct{}

type PendingChannel struct {
	RemoteNodePub string `json:"remote_node_pub,omitempty"`
	ChannelPoint  string `json:"channel_point,omitempty"`
	Capacity      int64  `json:"capacity,string,omitempty"`
	LocalBalance  int64  `json:"local_balance,string,omitempty"`
	RemoteBalance int64  `json:"remote_balance,string,omitempty"`
}

type PendingOpenChannel struct {
	Channel            *PendingChannel `json:"channel,omitempty"`
	ConfirmationHeight uint32          `json:"confirmation_height,omitempty"`
	BlocksTillOpen     int32           `json:"blocks_till_open,omitempty"`
	CommitFee          int64           `json:"commit_fee,string,omitempty"`
	CommitWeight       int64           `json:"commit_weight,string,omitempty"`
	FeePerKw           int64           `json:"fee_per_kw,string,omitempty"`
}

type ClosedChannel struct {
	Channel     *PendingChannel `json:"channel,omitempty"`
	ClosingTxid string          `json:"closing_txid,omitempty"`
}

type ForceClosedChannel struct {
	Channel           *PendingChannel `json:"channel,omitempty"`
	ClosingTxid       string          `json:"closing_txid,omitempty"`
	LimboBalance      int64           `json:"limbo_balance,string,omitempty"`
	MaturityHeight    uint32          `json:"maturity_height,omitempty"`
	BlocksTilMaturity int32           `json:"blocks_til_maturity,omitempty"`
	RecoveredBalance  int64           `json:"recovered_balance,string,omitempty"`
}

type PendingChannelsResponse struct {
	TotalLimboBalance           int64                 `json:"total_limbo_balance,string,omitempty"`
	PendingOpenChannels         []*PendingOpenChannel `json:"pending_open_channels,omitempty"`
	PendingClosingChannels      []*ClosedChannel      `json:"pending_closing_channels,omitempty"`
	PendingForceClosingChannels []*ForceClosedChannel `json:"pending_force_closing_channels,omitempty"`
}

type OpenChannelRequest struct {
	TargetPeerId       int32  `json:"target_peer_id,omitempty"`
	NodePubkey         []byte `json:"node_pubkey,omitempty"`
	NodePubkeyString   string `json:"node_pubkey_string,omitempty"`
	LocalFundingAmount int64  `json:"local_funding_amount,string,omitempty"`
	PushSat            int64  `json:"push_sat,string,omitempty"`
	TargetConf         int32  `json:"target_conf,omitempty"`
	SatPerByte         int64  `json:"sat_per_byte,string,omitempty"`
	Private            bool   `json:"private,omitempty"`
}

type PendingUpdate struct {
	Txid        []byte `json:"txid,omitempty"`
	OutputIndex uint32 `json:"output_index,omitempty"`
}

type ConfirmationUpdate struct {
	BlockSha     []byte `json:"block_sha,omitempty"`
	BlockHeight  int32  `json:"block_height,omitempty"`
	NumConfsLeft uint32 `json:"num_confs_left,omitempty"`
}

type ChannelOpenUpdate struct {
	ChannelPoint *ChannelPoint `json:"channel_point,omitempty"`
}

// OpenStatusUpdate carries exactly one of its branches.
type OpenStatusUpdate struct {
	ChanPending  *PendingUpdate      `json:"chan_pending,omitempty"`
	Confirmation *ConfirmationUpdate `json:"confirmation,omitempty"`
	ChanOpen     *ChannelOpenUpdate  `json:"chan_open,omitempty"`
}

type CloseChannelRequest struct {
	ChannelPoint *ChannelPoint `json:"channel_point,omitempty"`
	Force        bool          `json:"force,omitempty"`
	TargetConf   int32         `json:"target_conf,omitempty"`
	SatPerByte   int64         `json:"sat_per_byte,string,omitempty"`
}

type ChannelCloseUpdate struct {
	ClosingTxid []byte `json:"closing_txid,omitempty"`
	Success     bool   `json:"success,omitempty"`
}

// CloseStatusUpdate carries exactly one of its branches.
type CloseStatusUpdate struct {
	ClosePending *PendingUpdate      `json:"close_pending,omitempty"`
	Confirmation *ConfirmationUpdate `json:"confirmation,omitempty"`
	ChanClose    *ChannelCloseUpdate `json:"chan_close,omitempty"`
}

// ---- payments ----

type Hop struct {
	ChanId           uint64 `json:"chan_id,string,omitempty"`
	ChanCapacity     int64  `json:"chan_capacity,string,omitempty"`
	AmtToForward     int64  `json:"amt_to_forward,string,omitempty"`
	Fee              int64  `json:"fee,string,omitempty"`
	Expiry           uint32 `json:"expiry,omitempty"`
	AmtToForwardMsat int64  `json:"amt_to_forward_msat,string,omitempty"`
	FeeMsat          int64  `json:"fee_msat,string,omitempty"`
	PubKey           string `json:"pub_key,omitempty"`
}

type Route struct {
	TotalTimeLock uint32 `json:"total_time_lock,omitempty"`
	TotalFees     int64  `json:"total_fees,string,omitempty"`
	TotalAmt      int64  `json:"total_amt,string,omitempty"`
	Hops          []*Hop `json:"hops,omitempty"`
	TotalFeesMsat int64  `json:"total_fees_msat,string,omitempty"`
	TotalAmtMsat  int64  `json:"total_amt_msat,string,omitempty"`
}

type SendRequest struct {
	Dest              []byte `json:"dest,omitempty"`
	DestString        string `json:"dest_string,omitempty"`
	Amt               int64  `json:"amt,string,omitempty"`
	PaymentHash       []byte `json:"payment_hash,omitempty"`
	PaymentHashString string `json:"payment_hash_string,omitempty"`
	PaymentRequest    string `json:"payment_request,omitempty"`
	FinalCltvDelta    int32  `json:"final_cltv_delta,omitempty"`
}

type SendResponse struct {
	PaymentError    string `json:"payment_error,omitempty"`
	PaymentPreimage []byte `json:"payment_preimage,omitempty"`
	PaymentRoute    *Route `json:"payment_route,omitempty"`
}

type Payment struct {
	PaymentHash     string   `json:"payment_hash,omitempty"`
	Value           int64    `json:"value,string,omitempty"`
	CreationDate    int64    `json:"creation_date,string,omitempty"`
	Path            []string `json:"path,omitempty"`
	Fee             int64    `json:"fee,string,omitempty"`
	PaymentPreimage string   `json:"payment_preimage,omitempty"`
}

type ListPaymentsRequest struct{}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments,omitempty"`
}

type DeleteAllPaymentsRequest struct{}

type DeleteAllPaymentsResponse struct{}

// ---- invoices ----

type Invoice struct {
	Memo            string `json:"memo,omitempty"`
	Receipt         []byte `json:"receipt,omitempty"`
	RPreimage       []byte `json:"r_preimage,omitempty"`
	RHash           []byte `json:"r_hash,omitempty"`
	Value           int64  `json:"value,string,omitempty"`
	Settled         bool   `json:"settled,omitempty"`
	CreationDate    int64  `json:"creation_date,string,omitempty"`
	SettleDate      int64  `json:"settle_date,string,omitempty"`
	PaymentRequest  string `json:"payment_request,omitempty"`
	DescriptionHash []byte `json:"description_hash,omitempty"`
	Expiry          int64  `json:"expiry,string,omitempty"`
	FallbackAddr    string `json:"fallback_addr,omitempty"`
	CltvExpiry      uint64 `json:"cltv_expiry,string,omitempty"`
	Private         bool   `json:"private,omitempty"`
	AddIndex        uint64 `json:"add_index,string,omitempty"`
	SettleIndex     uint64 `json:"settle_index,string,omitempty"`
	AmtPaid         int64  `json:"amt_paid,string,omitempty"`
}

type AddInvoiceResponse struct {
	RHash          []byte `json:"r_hash,omitempty"`
	PaymentRequest string `json:"payment_request,omitempty"`
	AddIndex       uint64 `json:"add_index,string,omitempty"`
}

type PaymentHash struct {
	RHashStr string `json:"r_hash_str,omitempty"`
	RHash    []byte `json:"r_hash,omitempty"`
}

type ListInvoiceRequest struct {
	PendingOnly    bool   `json:"pending_only,omitempty"`
	IndexOffset    uint64 `json:"index_offset,string,omitempty"`
	NumMaxInvoices uint64 `json:"num_max_invoices,string,omitempty"`
	Reversed       bool   `json:"reversed,omitempty"`
}

type ListInvoiceResponse struct {
	Invoices         []*Invoice `json:"invoices,omitempty"`
	LastIndexOffset  uint64     `json:"last_index_offset,string,omitempty"`
	FirstIndexOffset uint64     `json:"first_index_offset,string,omitempty"`
}

type InvoiceSubscription struct {
	AddIndex    uint64 `json:"add_index,string,omitempty"`
	SettleIndex uint64 `json:"settle_index,string,omitempty"`
}

type PayReqString struct {
	PayReq string `json:"pay_req,omitempty"`
}

type PayReq struct {
	Destination     string `json:"destination,omitempty"`
	PaymentHash     string `json:"payment_hash,omitempty"`
	NumSatoshis     int64  `json:"num_satoshis,string,omitempty"`
	Timestamp       int64  `json:"timestamp,string,omitempty"`
	Expiry          int64  `json:"expiry,string,omitempty"`
	Description     string `json:"description,omitempty"`
	DescriptionHash string `json:"description_hash,omitempty"`
	FallbackAddr    string `json:"fallback_addr,omitempty"`
	CltvExpiry      int64  `json:"cltv_expiry,string,omitempty"`
}

// ---- graph ----

type ChannelGraphRequest struct {
	IncludeUnannounced bool `json:"include_unannounced,omitempty"`
}

type NodeAddress struct {
	Network string `json:"network,omitempty"`
	Addr    string `json:"addr,omitempty"`
}

type LightningNode struct {
	LastUpdate uint32         `json:"last_update,omitempty"`
	PubKey     string         `json:"pub_key,omitempty"`
	Alias      string         `json:"alias,omitempty"`
	Addresses  []*NodeAddress `json:"addresses,omitempty"`
	Color      string         `json:"color,omitempty"`
}

type RoutingPolicy struct {
	TimeLockDelta    uint32 `json:"time_lock_delta,omitempty"`
	MinHtlc          int64  `json:"min_htlc,string,omitempty"`
	FeeBaseMsat      int64  `json:"fee_base_msat,string,omitempty"`
	FeeRateMilliMsat int64  `json:"fee_rate_milli_msat,string,omitempty"`
	Disabled         bool   `json:"disabled,omitempty"`
}

type ChannelEdge struct {
	ChannelId   uint64         `json:"channel_id,string,omitempty"`
	ChanPoint   string         `json:"chan_point,omitempty"`
	LastUpdate  uint32         `json:"last_update,omitempty"`
	Node1Pub    string         `json:"node1_pub,omitempty"`
	Node2Pub    string         `json:"node2_pub,omitempty"`
	Capacity    int64          `json:"capacity,string,omitempty"`
	Node1Policy *RoutingPolicy `json:"node1_policy,omitempty"`
	Node2Policy *RoutingPolicy `json:"node2_policy,omitempty"`
}

type ChannelGraph struct {
	Nodes []*LightningNode `json:"nodes,omitempty"`
	Edges []*ChannelEdge   `json:"edges,omitempty"`
}

type ChanInfoRequest struct {
	ChanId uint64 `json:"chan_id,string,omitempty"`
}

type NodeInfoRequest struct {
	PubKey string `json:"pub_key,omitempty"`
}

type NodeInfo struct {
	Node          *LightningNode `json:"node,omitempty"`
	NumChannels   uint32         `json:"num_channels,omitempty"`
	TotalCapacity int64          `json:"total_capacity,string,omitempty"`
}

type QueryRoutesRequest struct {
	PubKey    string `json:"pub_key,omitempty"`
	Amt       int64  `json:"amt,string,omitempty"`
	NumRoutes int32  `json:"num_routes,omitempty"`
}

type QueryRoutesResponse struct {
	Routes []*Route `json:"routes,omitempty"`
}

type NetworkInfoRequest struct{}

type NetworkInfo struct {
	GraphDiameter        uint32  `json:"graph_diameter,omitempty"`
	AvgOutDegree         float64 `json:"avg_out_degree,omitempty"`
	MaxOutDegree         uint32  `json:"max_out_degree,omitempty"`
	NumNodes             uint32  `json:"num_nodes,omitempty"`
	NumChannels          uint32  `json:"num_channels,omitempty"`
	TotalNetworkCapacity int64   `json:"total_network_capacity,string,omitempty"`
	AvgChannelSize       float64 `json:"avg_channel_size,omitempty"`
	MinChannelSize       int64   `json:"min_channel_size,string,omitempty"`
	MaxChannelSize       int64   `json:"max_channel_size,string,omitempty"`
}

type GraphTopologySubscription struct{}

type NodeUpdate struct {
	Addresses      []string `json:"addresses,omitempty"`
	IdentityKey    string   `json:"identity_key,omitempty"`
	GlobalFeatures []byte   `json:"global_features,omitempty"`
	Alias          string   `json:"alias,omitempty"`
}

type ChannelEdgeUpdate struct {
	ChanId          uint64         `json:"chan_id,string,omitempty"`
	ChanPoint       *ChannelPoint  `json:"chan_point,omitempty"`
	Capacity        int64          `json:"capacity,string,omitempty"`
	RoutingPolicy   *RoutingPolicy `json:"routing_policy,omitempty"`
	AdvertisingNode string         `json:"advertising_node,omitempty"`
	ConnectingNode  string         `json:"connecting_node,omitempty"`
}

type ClosedChannelUpdate struct {
	ChanId       uint64        `json:"chan_id,string,omitempty"`
	Capacity     int64         `json:"capacity,string,omitempty"`
	ClosedHeight uint32        `json:"closed_height,omitempty"`
	ChanPoint    *ChannelPoint `json:"chan_point,omitempty"`
}

type GraphTopologyUpdate struct {
	NodeUpdates    []*NodeUpdate          `json:"node_updates,omitempty"`
	ChannelUpdates []*ChannelEdgeUpdate   `json:"channel_updates,omitempty"`
	ClosedChans    []*ClosedChannelUpdate `json:"closed_chans,omitempty"`
}

// ---- fees ----

type FeeReportRequest struct{}

type ChannelFeeReport struct {
	ChanPoint   string  `json:"chan_point,omitempty"`
	BaseFeeMsat int64   `json:"base_fee_msat,string,omitempty"`
	FeePerMil   int64   `json:"fee_per_mil,string,omitempty"`
	FeeRate     float64 `json:"fee_rate,omitempty"`
}

type FeeReportResponse struct {
	ChannelFees []*ChannelFeeReport `json:"channel_fees,omitempty"`
	DayFeeSum   uint64              `json:"day_fee_sum,string,omitempty"`
	WeekFeeSum  uint64              `json:"week_fee_sum,string,omitempty"`
	MonthFeeSum uint64              `json:"month_fee_sum,string,omitempty"`
}

// PolicyUpdateRequest applies to every channel when Global is set, otherwise
// to ChanPoint only.
type PolicyUpdateRequest struct {
	Global        bool          `json:"global,omitempty"`
	ChanPoint     *ChannelPoint `json:"chan_point,omitempty"`
	BaseFeeMsat   int64         `json:"base_fee_msat,string,omitempty"`
	FeeRate       float64       `json:"fee_rate,omitempty"`
	TimeLockDelta uint32        `json:"time_lock_delta,omitempty"`
}

type PolicyUpdateResponse struct{}
