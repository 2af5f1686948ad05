package lndconn_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hanpama/lngraph/internal/eventbus"
	"github.com/hanpama/lngraph/internal/events"
	"github.com/hanpama/lngraph/internal/lndconn"
	"github.com/hanpama/lngraph/internal/lnrpc"
	"github.com/hanpama/lngraph/internal/lnrpc/lnrpctest"
)

// selfSigned writes a localhost certificate to dir and returns its path with
// the matching server keypair.
func selfSigned(t *testing.T, dir string) (string, tls.Certificate) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"lnd autogenerated cert"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	path := filepath.Join(dir, "tls.cert")
	require.NoError(t, os.WriteFile(path, certPEM, 0o600))

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)
	return path, pair
}

func TestDial_TLSAndMacaroon(t *testing.T) {
	dir := t.TempDir()
	certPath, pair := selfSigned(t, dir)
	macPath := filepath.Join(dir, "admin.macaroon")
	require.NoError(t, os.WriteFile(macPath, []byte{0x02, 0x01, 0xff}, 0o600))

	srv := lnrpctest.New()
	lnrpctest.HandleUnary(srv, "GetInfo", func(ctx context.Context, req *lnrpc.GetInfoRequest) (*lnrpc.GetInfoResponse, error) {
		return &lnrpc.GetInfoResponse{Alias: "alice"}, nil
	})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.Serve(t, lis, grpc.Creds(credentials.NewServerTLSFromCert(&pair)))

	conn, err := lndconn.Dial(context.Background(),
		lndconn.WithAddress(lis.Addr().String()),
		lndconn.WithCertPath(certPath),
		lndconn.WithMacaroonPath(macPath),
	)
	require.NoError(t, err)
	defer conn.Close()

	info, err := lnrpc.NewClient(conn).GetInfo(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Alias)

	calls := srv.Calls("GetInfo")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"0201ff"}, calls[0].Metadata.Get("macaroon"))
}

func TestDial_MissingCredentials(t *testing.T) {
	dir := t.TempDir()
	certPath, _ := selfSigned(t, dir)

	_, err := lndconn.Dial(context.Background(),
		lndconn.WithCertPath(filepath.Join(dir, "nope.cert")),
		lndconn.WithMacaroonPath(filepath.Join(dir, "admin.macaroon")),
	)
	require.ErrorIs(t, err, lndconn.ErrMissingCert)

	_, err = lndconn.Dial(context.Background(),
		lndconn.WithCertPath(certPath),
		lndconn.WithMacaroonPath(filepath.Join(dir, "admin.macaroon")),
	)
	require.ErrorIs(t, err, lndconn.ErrMissingMacaroon)
}

func TestDial_ReadyTimeout(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	start := time.Now()
	_, err = lndconn.Dial(context.Background(),
		lndconn.WithAddress(addr),
		lndconn.WithReadyTimeout(200*time.Millisecond),
		lndconn.WithDialOptions(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestConn_PublishesCallEvents(t *testing.T) {
	srv := lnrpctest.New()
	lnrpctest.HandleUnary(srv, "WalletBalance", func(ctx context.Context, req *lnrpc.WalletBalanceRequest) (*lnrpc.WalletBalanceResponse, error) {
		return &lnrpc.WalletBalanceResponse{TotalBalance: 10}, nil
	})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.Serve(t, lis)

	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var (
		mu       sync.Mutex
		finished []events.GRPCClientFinish
	)
	unsubscribe := eventbus.Subscribe(func(ctx context.Context, e events.GRPCClientFinish) {
		mu.Lock()
		finished = append(finished, e)
		mu.Unlock()
	})
	defer unsubscribe()

	conn, err := lndconn.Dial(context.Background(),
		lndconn.WithAddress(lis.Addr().String()),
		lndconn.WithDialOptions(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := lnrpc.NewClient(conn)
	_, err = client.WalletBalance(context.Background(), nil)
	require.NoError(t, err)
	_, err = client.ListPeers(context.Background(), nil)
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, finished, 2)
	assert.Equal(t, "lnrpc.Lightning", finished[0].Service)
	assert.Equal(t, "WalletBalance", finished[0].Method)
	assert.Equal(t, codes.OK, finished[0].Code)
	assert.Equal(t, "ListPeers", finished[1].Method)
	assert.Equal(t, codes.Unimplemented, finished[1].Code)
	assert.NotEmpty(t, finished[0].CallID)
	assert.NotEqual(t, finished[0].CallID, finished[1].CallID)

	require.NoError(t, conn.Healthy())
	require.NoError(t, conn.Close())
	require.Error(t, conn.Healthy())
}

func TestConn_StreamFinishesWhenStreamEnds(t *testing.T) {
	srv := lnrpctest.New()
	lnrpctest.HandleStream(srv, "OpenChannel", func(ctx context.Context, req *lnrpc.OpenChannelRequest, send func(*lnrpc.OpenStatusUpdate) error) error {
		return send(&lnrpc.OpenStatusUpdate{ChanPending: &lnrpc.PendingUpdate{Txid: []byte{0x01}}})
	})
	lnrpctest.HandleStream(srv, "SubscribeInvoices", func(ctx context.Context, req *lnrpc.InvoiceSubscription, send func(*lnrpc.Invoice) error) error {
		if err := send(&lnrpc.Invoice{Memo: "first"}); err != nil {
			return err
		}
		<-ctx.Done()
		return ctx.Err()
	})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.Serve(t, lis)

	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var (
		mu       sync.Mutex
		finished []events.GRPCClientFinish
	)
	snapshot := func() []events.GRPCClientFinish {
		mu.Lock()
		defer mu.Unlock()
		return append([]events.GRPCClientFinish(nil), finished...)
	}
	unsubscribe := eventbus.Subscribe(func(ctx context.Context, e events.GRPCClientFinish) {
		mu.Lock()
		finished = append(finished, e)
		mu.Unlock()
	})
	defer unsubscribe()

	conn, err := lndconn.Dial(context.Background(),
		lndconn.WithAddress(lis.Addr().String()),
		lndconn.WithDialOptions(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	defer conn.Close()
	client := lnrpc.NewClient(conn)

	// Ends on EOF from the node.
	open, err := client.OpenChannel(context.Background(), &lnrpc.OpenChannelRequest{NodePubkeyString: "02abc"})
	require.NoError(t, err)
	_, err = open.Recv()
	require.NoError(t, err)
	assert.Empty(t, snapshot(), "finish published while the stream is still open")
	_, err = open.Recv()
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, open.Close())

	got := snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "OpenChannel", got[0].Method)
	assert.True(t, got[0].Streaming)
	assert.Equal(t, codes.OK, got[0].Code)
	assert.NoError(t, got[0].Err)

	// Ends when the subscriber goes away.
	invoices, err := client.SubscribeInvoices(context.Background(), nil)
	require.NoError(t, err)
	first, err := invoices.Recv()
	require.NoError(t, err)
	assert.Equal(t, "first", first.Memo)
	assert.Len(t, snapshot(), 1)
	require.NoError(t, invoices.Close())

	require.Eventually(t, func() bool { return len(snapshot()) == 2 }, 5*time.Second, 10*time.Millisecond)
	got = snapshot()
	assert.Equal(t, "SubscribeInvoices", got[1].Method)
	assert.Equal(t, codes.Canceled, got[1].Code)
	assert.NotEqual(t, got[0].CallID, got[1].CallID)
}
