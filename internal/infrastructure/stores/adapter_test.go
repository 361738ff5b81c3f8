package stores

import (
	"context"
	"encoding/json"

	"github.com/cartcompare/backend/internal/infrastructure/httpclient"
)

// fakeGetter serves a canned JSON payload in place of the fetch client.
type fakeGetter struct {
	payload  string
	err      error
	calls    int
	lastURL  string
	lastOpts httpclient.Options
}

func (f *fakeGetter) GetJSON(ctx context.Context, rawURL string, opts httpclient.Options, out any) error {
	f.calls++
	f.lastURL = rawURL
	f.lastOpts = opts
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}
