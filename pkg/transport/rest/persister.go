package rest

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-formkit/pkg/validation"
)

// Persister saves submission payloads to a REST collection: new records are
// POSTed to Path and edits are PUT to Path/{id}.
type Persister struct {
	Client *Client
	Path   string
}

var _ validation.Persister = (*Persister)(nil)

// Save implements validation.Persister.
func (p *Persister) Save(ctx context.Context, isEdit bool, recordID string, body any) (bool, error) {
	path := strings.TrimRight(p.Path, "/")
	if isEdit {
		if err := p.Client.Put(ctx, path+"/"+url.PathEscape(recordID), body, nil); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := p.Client.Post(ctx, path, body, nil); err != nil {
		return false, err
	}
	return true, nil
}
