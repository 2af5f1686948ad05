package resolvers

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/hanpama/lngraph/internal/lnrpc"
)

func peers(res *lnrpc.ListPeersResponse) ([]*Peer, error) {
	return each(res.Peers, func(p *lnrpc.Peer) *Peer {
		return &Peer{
			ID:             int64(p.PeerId),
			PublicKey:      p.PubKey,
			Address:        p.Address,
			BytesSent:      int64(p.BytesSent),
			BytesReceived:  int64(p.BytesRecv),
			AmountSent:     p.SatSent,
			AmountReceived: p.SatRecv,
			PingTime:       p.PingTime,
			IsInbound:      p.Inbound,
		}
	}), nil
}

type connectPeerArgs struct {
	PeerAddress string `mapstructure:"peerAddress"`
	Persist     bool   `mapstructure:"persist"`
}

func connectPeerRequest(a connectPeerArgs, _ any) (*lnrpc.ConnectPeerRequest, error) {
	pubkey, host, found := strings.Cut(a.PeerAddress, "@")
	if !found || pubkey == "" || host == "" {
		return nil, errors.Errorf("peerAddress %q must have the form <pubkey>@host", a.PeerAddress)
	}
	return &lnrpc.ConnectPeerRequest{
		Addr: &lnrpc.LightningAddress{Pubkey: pubkey, Host: host},
		Perm: a.Persist,
	}, nil
}

func connectPeer(res *lnrpc.ConnectPeerResponse) (*ConnectPeerResult, error) {
	return &ConnectPeerResult{ID: int64(res.PeerId)}, nil
}

type disconnectPeerArgs struct {
	PublicKey string `mapstructure:"publicKey"`
}

func disconnectPeerRequest(a disconnectPeerArgs, _ any) (*lnrpc.DisconnectPeerRequest, error) {
	return &lnrpc.DisconnectPeerRequest{PubKey: a.PublicKey}, nil
}

func info(res *lnrpc.GetInfoResponse) (*Info, error) {
	return &Info{
		PublicKey:       res.IdentityPubkey,
		Alias:           res.Alias,
		PendingChannels: int64(res.NumPendingChannels),
		ActiveChannels:  int64(res.NumActiveChannels),
		ConnectedPeers:  int64(res.NumPeers),
		BlockHeight:     int64(res.BlockHeight),
		BlockHash:       res.BlockHash,
		Chains:          res.Chains,
		IsSynchronized:  res.SyncedToChain,
		IsTestnet:       res.Testnet,
	}, nil
}

type setAliasArgs struct {
	Alias string `mapstructure:"alias"`
}

func setAliasRequest(a setAliasArgs, _ any) (*lnrpc.SetAliasRequest, error) {
	return &lnrpc.SetAliasRequest{NewAlias: a.Alias}, nil
}

type debugLevelArgs struct {
	Show  bool   `mapstructure:"show"`
	Level string `mapstructure:"level"`
}

func debugLevelRequest(a debugLevelArgs, _ any) (*lnrpc.DebugLevelRequest, error) {
	return &lnrpc.DebugLevelRequest{Show: a.Show, LevelSpec: a.Level}, nil
}

func debugLevel(res *lnrpc.DebugLevelResponse) (*DebugLevelResult, error) {
	return &DebugLevelResult{SubSystems: res.SubSystems}, nil
}
