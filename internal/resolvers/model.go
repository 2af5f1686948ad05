package resolvers

import "time"

// GraphQL output objects. JSON tags are the GraphQL field names; the runtime
// reads fields through them. Absent sub-objects and dates are nil pointers.

type Balance struct {
	Balance            int64 `json:"balance"`
	ConfirmedBalance   int64 `json:"confirmedBalance"`
	UnconfirmedBalance int64 `json:"unconfirmedBalance"`
	PendingOpenBalance int64 `json:"pendingOpenBalance"`
}

type Transaction struct {
	TxHash           string     `json:"txHash"`
	Amount           int64      `json:"amount"`
	NumConfirmations int64      `json:"numConfirmations"`
	BlockHash        string     `json:"blockHash"`
	BlockHeight      int64      `json:"blockHeight"`
	CreatedOn        *time.Time `json:"createdOn"`
	TotalFees        int64      `json:"totalFees"`
}

type Peer struct {
	ID             int64  `json:"id"`
	PublicKey      string `json:"publicKey"`
	Address        string `json:"address"`
	BytesSent      int64  `json:"bytesSent"`
	BytesReceived  int64  `json:"bytesReceived"`
	AmountSent     int64  `json:"amountSent"`
	AmountReceived int64  `json:"amountReceived"`
	PingTime       int64  `json:"pingTime"`
	IsInbound      bool   `json:"isInbound"`
}

type OkResult struct {
	Success bool `json:"success"`
}

type DebugLevelResult struct {
	SubSystems string `json:"subSystems"`
}

type SendCoinsResult struct {
	TxHash string `json:"txHash"`
}

type NewAddressResult struct {
	Address string `json:"address"`
}

type SignMessageResult struct {
	Signature string `json:"signature"`
}

type VerifyMessageResult struct {
	Valid     bool   `json:"valid"`
	PublicKey string `json:"publicKey"`
}

type ConnectPeerResult struct {
	ID int64 `json:"id"`
}

type Info struct {
	PublicKey       string   `json:"publicKey"`
	Alias           string   `json:"alias"`
	PendingChannels int64    `json:"pendingChannels"`
	ActiveChannels  int64    `json:"activeChannels"`
	ConnectedPeers  int64    `json:"connectedPeers"`
	BlockHeight     int64    `json:"blockHeight"`
	BlockHash       string   `json:"blockHash"`
	Chains          []string `json:"chains"`
	IsSynchronized  bool     `json:"isSynchronized"`
	IsTestnet       bool     `json:"isTestnet"`
}

type PendingChannelsInfo struct {
	AmountInLimbo     int64                       `json:"amountInLimbo"`
	PendingOpen       []*PendingOpenChannel       `json:"pendingOpen"`
	PendingClose      []*PendingCloseChannel      `json:"pendingClose"`
	PendingForceClose []*PendingForceCloseChannel `json:"pendingForceClose"`
}

type PendingChannel struct {
	RemotePublicKey string `json:"remotePublicKey"`
	ChannelPoint    string `json:"channelPoint"`
	Capacity        int64  `json:"capacity"`
	LocalBalance    int64  `json:"localBalance"`
	RemoteBalance   int64  `json:"remoteBalance"`
}

type PendingOpenChannel struct {
	Channel            *PendingChannel `json:"channel"`
	ConfirmationHeight int64           `json:"confirmationHeight"`
	BlocksUntilOpen    int64           `json:"blocksUntilOpen"`
	CommitFee          int64           `json:"commitFee"`
	CommitWeight       int64           `json:"commitWeight"`
	FeePerKw           int64           `json:"feePerKw"`
}

type PendingCloseChannel struct {
	Channel       *PendingChannel `json:"channel"`
	ClosingTxHash string          `json:"closingTxHash"`
}

type PendingForceCloseChannel struct {
	Channel             *PendingChannel `json:"channel"`
	ClosingTxHash       string          `json:"closingTxHash"`
	AmountInLimbo       int64           `json:"amountInLimbo"`
	MaturityHeight      int64           `json:"maturityHeight"`
	BlocksUntilMaturity int64           `json:"blocksUntilMaturity"`
}

type HTLC struct {
	Incoming         bool   `json:"incoming"`
	Amount           int64  `json:"amount"`
	Hashlock         string `json:"hashlock"`
	ExpirationHeight int64  `json:"expirationHeight"`
}

type Channel struct {
	Active                bool    `json:"active"`
	RemotePublicKey       string  `json:"remotePublicKey"`
	ChannelPoint          string  `json:"channelPoint"`
	ID                    string  `json:"id"`
	Capacity              int64   `json:"capacity"`
	LocalBalance          int64   `json:"localBalance"`
	RemoteBalance         int64   `json:"remoteBalance"`
	CommitFee             int64   `json:"commitFee"`
	CommitWeight          int64   `json:"commitWeight"`
	FeePerKw              int64   `json:"feePerKw"`
	UnsettledBalance      int64   `json:"unsettledBalance"`
	TotalSatoshisSent     int64   `json:"totalSatoshisSent"`
	TotalSatoshisReceived int64   `json:"totalSatoshisReceived"`
	NumUpdates            int64   `json:"numUpdates"`
	PendingHtlcs          []*HTLC `json:"pendingHtlcs"`
}

// OpenChannelStatusUpdate has exactly one branch set.
type OpenChannelStatusUpdate struct {
	ChannelPending *ChannelPendingUpdate `json:"channelPending"`
	Confirmation   *ConfirmationUpdate   `json:"confirmation"`
	ChannelOpen    *ChannelOpenUpdate    `json:"channelOpen"`
}

// CloseChannelStatusUpdate has exactly one branch set.
type CloseChannelStatusUpdate struct {
	ClosePending *ChannelPendingUpdate `json:"closePending"`
	Confirmation *ConfirmationUpdate   `json:"confirmation"`
	ChannelClose *ChannelCloseUpdate   `json:"channelClose"`
}

type ChannelPendingUpdate struct {
	TxHash      string `json:"txHash"`
	OutputIndex int64  `json:"outputIndex"`
}

type ConfirmationUpdate struct {
	BlockHash            string `json:"blockHash"`
	BlockHeight          int64  `json:"blockHeight"`
	NumConfirmationsLeft int64  `json:"numConfirmationsLeft"`
}

type ChannelOpenUpdate struct {
	ChannelPoint *ChannelPoint `json:"channelPoint"`
}

type ChannelCloseUpdate struct {
	ClosingTxHash string `json:"closingTxHash"`
	Success       bool   `json:"success"`
}

type GraphTopologyUpdate struct {
	NodeUpdates    []*NodeUpdate          `json:"nodeUpdates"`
	ChannelUpdates []*ChannelEdgeUpdate   `json:"channelUpdates"`
	ClosedChannels []*ClosedChannelUpdate `json:"closedChannels"`
}

type NodeUpdate struct {
	Addresses      []string `json:"addresses"`
	PublicKey      string   `json:"publicKey"`
	GlobalFeatures string   `json:"globalFeatures"`
	Alias          string   `json:"alias"`
}

type ChannelEdgeUpdate struct {
	ID              string         `json:"id"`
	ChannelPoint    *ChannelPoint  `json:"channelPoint"`
	Capacity        int64          `json:"capacity"`
	Policy          *RoutingPolicy `json:"policy"`
	AdvertisingNode string         `json:"advertisingNode"`
	ConnectingNode  string         `json:"connectingNode"`
}

type ClosedChannelUpdate struct {
	ID           string        `json:"id"`
	Capacity     int64         `json:"capacity"`
	ClosedHeight int64         `json:"closedHeight"`
	ChannelPoint *ChannelPoint `json:"channelPoint"`
}

type ChannelPoint struct {
	FundingTxHash string `json:"fundingTxHash"`
	OutputIndex   int64  `json:"outputIndex"`
}

type PaymentStatusUpdate struct {
	PaymentError    string `json:"paymentError"`
	PaymentPreimage string `json:"paymentPreimage"`
	PaymentRoute    *Route `json:"paymentRoute"`
}

type Payment struct {
	PaymentHash string     `json:"paymentHash"`
	Amount      int64      `json:"amount"`
	CreatedOn   *time.Time `json:"createdOn"`
	Path        []string   `json:"path"`
	TotalFees   int64      `json:"totalFees"`
}

type Hop struct {
	ChannelID       string `json:"channelId"`
	ChannelCapacity int64  `json:"channelCapacity"`
	AmountToForward int64  `json:"amountToForward"`
	Fee             int64  `json:"fee"`
	Expiry          int64  `json:"expiry"`
	PublicKey       string `json:"publicKey"`
}

type Route struct {
	TotalTimeLock int64  `json:"totalTimeLock"`
	TotalFees     int64  `json:"totalFees"`
	TotalAmount   int64  `json:"totalAmount"`
	Hops          []*Hop `json:"hops"`
}

type ChannelGraph struct {
	Nodes []*LightningNode `json:"nodes"`
	Edges []*ChannelEdge   `json:"edges"`
}

type NodeAddress struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

type LightningNode struct {
	UpdatedOn *time.Time     `json:"updatedOn"`
	PublicKey string         `json:"publicKey"`
	Alias     string         `json:"alias"`
	Addresses []*NodeAddress `json:"addresses"`
}

type NodeInfo struct {
	Node          *LightningNode `json:"node"`
	NumChannels   int64          `json:"numChannels"`
	TotalCapacity int64          `json:"totalCapacity"`
}

type NetworkInfo struct {
	GraphDiameter        int64   `json:"graphDiameter"`
	AverageOutDegree     float64 `json:"averageOutDegree"`
	MaxOutDegree         int64   `json:"maxOutDegree"`
	NumNodes             int64   `json:"numNodes"`
	NumChannels          int64   `json:"numChannels"`
	TotalNetworkCapacity int64   `json:"totalNetworkCapacity"`
	AverageChannelSize   float64 `json:"averageChannelSize"`
	MinChannelSize       int64   `json:"minChannelSize"`
	MaxChannelSize       int64   `json:"maxChannelSize"`
}

type ChannelFeeReport struct {
	ChannelPoint string  `json:"channelPoint"`
	FeeBaseMsat  int64   `json:"feeBaseMsat"`
	FeePerMilli  int64   `json:"feePerMilli"`
	FeeRateMsat  float64 `json:"feeRateMsat"`
}

type ChannelEdge struct {
	ID           string             `json:"id"`
	ChannelPoint *ChannelPoint      `json:"channelPoint"`
	UpdatedOn    *time.Time         `json:"updatedOn"`
	PublicKeys   *PublicKeyEdge     `json:"publicKeys"`
	Capacity     int64              `json:"capacity"`
	Policies     *RoutingPolicyEdge `json:"policies"`
}

type PublicKeyEdge struct {
	A string `json:"a"`
	B string `json:"b"`
}

type RoutingPolicyEdge struct {
	A *RoutingPolicy `json:"a"`
	B *RoutingPolicy `json:"b"`
}

type RoutingPolicy struct {
	TimeLockDelta int64 `json:"timeLockDelta"`
	MinHtlc       int64 `json:"minHtlc"`
	FeeBaseMsat   int64 `json:"feeBaseMsat"`
	FeeRateMsat   int64 `json:"feeRateMsat"`
}

type AddInvoiceResult struct {
	Hash           string `json:"hash"`
	PaymentRequest string `json:"paymentRequest"`
}

type Invoice struct {
	Memo           string     `json:"memo"`
	Receipt        string     `json:"receipt"`
	Preimage       string     `json:"preimage"`
	PreimageHash   string     `json:"preimageHash"`
	Amount         int64      `json:"amount"`
	IsSettled      bool       `json:"isSettled"`
	CreatedOn      *time.Time `json:"createdOn"`
	SettledOn      *time.Time `json:"settledOn"`
	PaymentRequest string     `json:"paymentRequest"`
}

type DecodedPaymentRequest struct {
	Destination string     `json:"destination"`
	PaymentHash string     `json:"paymentHash"`
	Amount      int64      `json:"amount"`
	CreatedOn   *time.Time `json:"createdOn"`
	ExpiresOn   *time.Time `json:"expiresOn"`
	Memo        string     `json:"memo"`
}

// Input objects, decoded from GraphQL arguments with mapstructure.

type InvoiceParams struct {
	Memo           string     `mapstructure:"memo"`
	Receipt        string     `mapstructure:"receipt"`
	Preimage       string     `mapstructure:"preimage"`
	PreimageHash   string     `mapstructure:"preimageHash"`
	Amount         int64      `mapstructure:"amount"`
	IsSettled      bool       `mapstructure:"isSettled"`
	CreatedOn      *time.Time `mapstructure:"createdOn"`
	SettledOn      *time.Time `mapstructure:"settledOn"`
	PaymentRequest string     `mapstructure:"paymentRequest"`
}

type Recipient struct {
	Address string `mapstructure:"address"`
	Amount  int64  `mapstructure:"amount"`
}

type OpenChannelPoint struct {
	FundingTxHash string `mapstructure:"fundingTxHash"`
	OutputIndex   int64  `mapstructure:"outputIndex"`
}
