package lndconn

import (
	"context"
	"encoding/hex"
	"os"

	"github.com/pkg/errors"
	"google.golang.org/grpc/credentials"
)

var (
	ErrMissingCert     = errors.New("lndconn: tls certificate not found")
	ErrMissingMacaroon = errors.New("lndconn: macaroon not found")
)

func loadTLS(path string) (credentials.TransportCredentials, error) {
	if path == "" {
		return nil, ErrMissingCert
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrMissingCert, "%s", path)
		}
		return nil, errors.Wrap(err, "lndconn: stat tls certificate")
	}
	creds, err := credentials.NewClientTLSFromFile(path, "")
	if err != nil {
		return nil, errors.Wrapf(err, "lndconn: load tls certificate %s", path)
	}
	return creds, nil
}

// macaroon attaches the hex encoded admin macaroon to every call.
type macaroon string

func loadMacaroon(path string) (macaroon, error) {
	if path == "" {
		return "", ErrMissingMacaroon
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrMissingMacaroon, "%s", path)
		}
		return "", errors.Wrapf(err, "lndconn: read macaroon %s", path)
	}
	return macaroon(hex.EncodeToString(b)), nil
}

func (m macaroon) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"macaroon": string(m)}, nil
}

func (m macaroon) RequireTransportSecurity() bool { return true }

var _ credentials.PerRPCCredentials = macaroon("")
