package gqlrt_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hanpama/lngraph/internal/executor"
	"github.com/hanpama/lngraph/internal/gqlrt"
	"github.com/hanpama/lngraph/internal/introspection"
	language "github.com/hanpama/lngraph/internal/language"
	"github.com/hanpama/lngraph/internal/lnrpc"
	"github.com/hanpama/lngraph/internal/lnrpc/lnrpctest"
	"github.com/hanpama/lngraph/internal/pubsub"
	"github.com/hanpama/lngraph/internal/resolvers"
	"github.com/hanpama/lngraph/internal/schema"
)

func newExecutor(t *testing.T, srv *lnrpctest.Server) *executor.Executor {
	t.Helper()
	sch, err := schema.BuildFromSDL(resolvers.SDL())
	require.NoError(t, err)
	m := resolvers.Build(lnrpc.NewClient(srv.Dial(t)), pubsub.New())
	w := introspection.Wrap(gqlrt.New(m, sch, gqlrt.WithConcurrency(4)), sch)
	return executor.NewExecutor(w.Runtime, w.Schema)
}

func run(t *testing.T, exec *executor.Executor, query string, vars map[string]any) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.ExecuteRequest(ctx, doc, "", vars, nil)
}

func TestRuntime_QueryRootsAndProjection(t *testing.T) {
	srv := lnrpctest.New()
	lnrpctest.HandleUnary(srv, "GetInfo", func(ctx context.Context, req *lnrpc.GetInfoRequest) (*lnrpc.GetInfoResponse, error) {
		return &lnrpc.GetInfoResponse{
			IdentityPubkey:    "02abc",
			Alias:             "alice",
			NumActiveChannels: 2,
			Chains:            []string{"bitcoin"},
		}, nil
	})
	lnrpctest.HandleUnary(srv, "WalletBalance", func(ctx context.Context, req *lnrpc.WalletBalanceRequest) (*lnrpc.WalletBalanceResponse, error) {
		return &lnrpc.WalletBalanceResponse{TotalBalance: 150, ConfirmedBalance: 100, UnconfirmedBalance: 50}, nil
	})
	exec := newExecutor(t, srv)

	res := run(t, exec, `{
		getInfo { alias publicKey chains activeChannels }
		balance: getWalletBalance { balance confirmedBalance pendingOpenBalance }
	}`, nil)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"getInfo": map[string]any{
			"alias":          "alice",
			"publicKey":      "02abc",
			"chains":         []any{"bitcoin"},
			"activeChannels": int64(2),
		},
		"balance": map[string]any{
			"balance":            int64(150),
			"confirmedBalance":   int64(100),
			"pendingOpenBalance": int64(0),
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, srv.Calls("GetInfo"), 1)
	require.Len(t, srv.Calls("WalletBalance"), 1)
}

func TestRuntime_ErrorCodes(t *testing.T) {
	srv := lnrpctest.New()
	lnrpctest.HandleUnary(srv, "LookupInvoice", func(ctx context.Context, req *lnrpc.PaymentHash) (*lnrpc.Invoice, error) {
		return nil, status.Error(codes.NotFound, "unable to locate invoice")
	})
	lnrpctest.HandleUnary(srv, "GetInfo", func(ctx context.Context, req *lnrpc.GetInfoRequest) (*lnrpc.GetInfoResponse, error) {
		return &lnrpc.GetInfoResponse{Alias: "alice"}, nil
	})
	exec := newExecutor(t, srv)

	res := run(t, exec, `{ missing: lookupInvoice(preimageHash: "00ff") { memo } getInfo { alias } }`, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, executor.Path{"missing"}, res.Errors[0].Path)
	require.Contains(t, res.Errors[0].Message, "unable to locate invoice")
	require.Equal(t, map[string]any{"code": "NotFound"}, res.Errors[0].Extensions)

	data := res.Data.(map[string]any)
	require.Nil(t, data["missing"])
	require.Equal(t, map[string]any{"alias": "alice"}, data["getInfo"])

	// rejected before anything reaches the node
	res = run(t, exec, `{ lookupInvoice(preimageHash: "zz") { memo } }`, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, gqlrt.CodeBadUserInput, res.Errors[0].Extensions["code"])
	require.Len(t, srv.Calls("LookupInvoice"), 1)
}

func TestRuntime_DateTime(t *testing.T) {
	srv := lnrpctest.New()
	lnrpctest.HandleUnary(srv, "ListInvoices", func(ctx context.Context, req *lnrpc.ListInvoiceRequest) (*lnrpc.ListInvoiceResponse, error) {
		return &lnrpc.ListInvoiceResponse{Invoices: []*lnrpc.Invoice{
			{Memo: "coffee", RHash: []byte{0xab}, Value: 10, CreationDate: 1600000000},
		}}, nil
	})
	lnrpctest.HandleUnary(srv, "AddInvoice", func(ctx context.Context, req *lnrpc.Invoice) (*lnrpc.AddInvoiceResponse, error) {
		return &lnrpc.AddInvoiceResponse{RHash: []byte{0x01, 0x02}, PaymentRequest: "lnbc1"}, nil
	})
	exec := newExecutor(t, srv)

	res := run(t, exec, `{ listInvoices { memo preimageHash createdOn settledOn } }`, nil)
	require.Empty(t, res.Errors)
	want := map[string]any{
		"listInvoices": []any{
			map[string]any{
				"memo":         "coffee",
				"preimageHash": "ab",
				"createdOn":    "2020-09-13T12:26:40.000Z",
				"settledOn":    nil,
			},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	res = run(t, exec, `mutation Add($p: InvoiceParams) { addInvoice(params: $p) { hash paymentRequest } }`,
		map[string]any{"p": map[string]any{
			"memo":      "tea",
			"amount":    float64(1500),
			"createdOn": "2020-09-13T12:26:40Z",
		}})
	require.Empty(t, res.Errors)
	want = map[string]any{"addInvoice": map[string]any{"hash": "0102", "paymentRequest": "lnbc1"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	calls := srv.Calls("AddInvoice")
	require.Len(t, calls, 1)
	got := calls[0].Request.(*lnrpc.Invoice)
	require.Equal(t, "tea", got.Memo)
	require.Equal(t, int64(1500), got.Value)
	require.Equal(t, int64(1600000000), got.CreationDate)
}

func TestRuntime_DateTimeInputRejected(t *testing.T) {
	srv := lnrpctest.New()
	exec := newExecutor(t, srv)

	res := run(t, exec, `mutation Add($p: InvoiceParams) { addInvoice(params: $p) { hash } }`,
		map[string]any{"p": map[string]any{"createdOn": "yesterday"}})
	require.NotEmpty(t, res.Errors)
	require.Empty(t, srv.Calls("AddInvoice"))
}

func subscribe(t *testing.T, exec *executor.Executor, query string) <-chan *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	ch, err := exec.Subscribe(ctx, doc, "", nil)
	require.NoError(t, err)
	return ch
}

func collect(t *testing.T, ch <-chan *executor.ExecutionResult) []*executor.ExecutionResult {
	t.Helper()
	var out []*executor.ExecutionResult
	timeout := time.After(5 * time.Second)
	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, res)
		case <-timeout:
			t.Fatal("subscription did not end")
		}
	}
}

func TestRuntime_Subscription(t *testing.T) {
	srv := lnrpctest.New()
	lnrpctest.HandleStream(srv, "OpenChannel", func(ctx context.Context, req *lnrpc.OpenChannelRequest, send func(*lnrpc.OpenStatusUpdate) error) error {
		if err := send(&lnrpc.OpenStatusUpdate{ChanPending: &lnrpc.PendingUpdate{Txid: []byte{0x01, 0x02}, OutputIndex: 1}}); err != nil {
			return err
		}
		return send(&lnrpc.OpenStatusUpdate{Confirmation: &lnrpc.ConfirmationUpdate{BlockHeight: 100, NumConfsLeft: 2}})
	})
	exec := newExecutor(t, srv)

	results := collect(t, subscribe(t, exec, `subscription {
		openChannel(nodePublicKey: "02abc", localFundingAmount: 20000) {
			channelPending { txHash outputIndex }
			confirmation { blockHeight numConfirmationsLeft }
		}
	}`))
	require.Len(t, results, 2)

	want := []any{
		map[string]any{"openChannel": map[string]any{
			"channelPending": map[string]any{"txHash": "0201", "outputIndex": int64(1)},
			"confirmation":   nil,
		}},
		map[string]any{"openChannel": map[string]any{
			"channelPending": nil,
			"confirmation":   map[string]any{"blockHeight": int64(100), "numConfirmationsLeft": int64(2)},
		}},
	}
	var got []any
	for _, res := range results {
		require.Empty(t, res.Errors)
		got = append(got, res.Data)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}

	calls := srv.Calls("OpenChannel")
	require.Len(t, calls, 1)
	req := calls[0].Request.(*lnrpc.OpenChannelRequest)
	require.Equal(t, "02abc", req.NodePubkeyString)
	require.Equal(t, int64(20000), req.LocalFundingAmount)
}

func TestRuntime_SubscriptionError(t *testing.T) {
	srv := lnrpctest.New()
	lnrpctest.HandleStream(srv, "OpenChannel", func(ctx context.Context, req *lnrpc.OpenChannelRequest, send func(*lnrpc.OpenStatusUpdate) error) error {
		if err := send(&lnrpc.OpenStatusUpdate{ChanPending: &lnrpc.PendingUpdate{Txid: []byte{0xff}}}); err != nil {
			return err
		}
		return status.Error(codes.Unavailable, "peer went offline")
	})
	exec := newExecutor(t, srv)

	results := collect(t, subscribe(t, exec, `subscription { openChannel(nodePublicKey: "02abc") { channelPending { txHash } } }`))
	require.Len(t, results, 2)
	require.Empty(t, results[0].Errors)

	last := results[1]
	require.Len(t, last.Errors, 1)
	require.Equal(t, "Unavailable", last.Errors[0].Extensions["code"])
	require.Equal(t, map[string]any{"openChannel": nil}, last.Data)
}

func TestRuntime_Introspection(t *testing.T) {
	exec := newExecutor(t, lnrpctest.New())

	res := run(t, exec, `{ __type(name: "Balance") { kind name fields { name type { kind name } } } }`, nil)
	require.Empty(t, res.Errors)

	typ := res.Data.(map[string]any)["__type"].(map[string]any)
	require.Equal(t, "OBJECT", typ["kind"])
	require.Equal(t, "Balance", typ["name"])

	fields := typ["fields"].([]any)
	require.NotEmpty(t, fields)
	first := fields[0].(map[string]any)
	require.Equal(t, "balance", first["name"])
	require.Equal(t, map[string]any{"kind": "SCALAR", "name": "Int"}, first["type"])
}
