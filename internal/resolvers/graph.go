package resolvers

import (
	"github.com/hanpama/lngraph/internal/lnrpc"
)

func channelGraph(res *lnrpc.ChannelGraph) (*ChannelGraph, error) {
	out := &ChannelGraph{Nodes: each(res.Nodes, lightningNode)}
	for _, e := range res.Edges {
		edge, err := channelEdge(e)
		if err != nil {
			return nil, err
		}
		if edge != nil {
			out.Edges = append(out.Edges, edge)
		}
	}
	return out, nil
}

type channelInfoArgs struct {
	ID string `mapstructure:"id"`
}

func channelInfoRequest(a channelInfoArgs, _ any) (*lnrpc.ChanInfoRequest, error) {
	id, err := parseChanID(a.ID)
	if err != nil {
		return nil, err
	}
	return &lnrpc.ChanInfoRequest{ChanId: id}, nil
}

type nodeInfoArgs struct {
	PublicKey string `mapstructure:"publicKey"`
}

func nodeInfoRequest(a nodeInfoArgs, _ any) (*lnrpc.NodeInfoRequest, error) {
	return &lnrpc.NodeInfoRequest{PubKey: a.PublicKey}, nil
}

func nodeInfo(res *lnrpc.NodeInfo) (*NodeInfo, error) {
	return &NodeInfo{
		Node:          lightningNode(res.Node),
		NumChannels:   int64(res.NumChannels),
		TotalCapacity: res.TotalCapacity,
	}, nil
}

func networkInfo(res *lnrpc.NetworkInfo) (*NetworkInfo, error) {
	return &NetworkInfo{
		GraphDiameter:        int64(res.GraphDiameter),
		AverageOutDegree:     res.AvgOutDegree,
		MaxOutDegree:         int64(res.MaxOutDegree),
		NumNodes:             int64(res.NumNodes),
		NumChannels:          int64(res.NumChannels),
		TotalNetworkCapacity: res.TotalNetworkCapacity,
		AverageChannelSize:   res.AvgChannelSize,
		MinChannelSize:       res.MinChannelSize,
		MaxChannelSize:       res.MaxChannelSize,
	}, nil
}

func topologyUpdate(res *lnrpc.GraphTopologyUpdate) (*GraphTopologyUpdate, error) {
	return &GraphTopologyUpdate{
		NodeUpdates: each(res.NodeUpdates, func(n *lnrpc.NodeUpdate) *NodeUpdate {
			return &NodeUpdate{
				Addresses:      n.Addresses,
				PublicKey:      n.IdentityKey,
				GlobalFeatures: hexString(n.GlobalFeatures),
				Alias:          n.Alias,
			}
		}),
		ChannelUpdates: each(res.ChannelUpdates, func(c *lnrpc.ChannelEdgeUpdate) *ChannelEdgeUpdate {
			return &ChannelEdgeUpdate{
				ID:              chanID(c.ChanId),
				ChannelPoint:    channelPoint(c.ChanPoint),
				Capacity:        c.Capacity,
				Policy:          routingPolicy(c.RoutingPolicy),
				AdvertisingNode: c.AdvertisingNode,
				ConnectingNode:  c.ConnectingNode,
			}
		}),
		ClosedChannels: each(res.ClosedChans, func(c *lnrpc.ClosedChannelUpdate) *ClosedChannelUpdate {
			return &ClosedChannelUpdate{
				ID:           chanID(c.ChanId),
				Capacity:     c.Capacity,
				ClosedHeight: int64(c.ClosedHeight),
				ChannelPoint: channelPoint(c.ChanPoint),
			}
		}),
	}, nil
}
