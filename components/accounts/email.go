package accounts

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goliatone/go-userforms/pkg/host"
	"github.com/goliatone/go-userforms/pkg/renderers/vanilla"
)

// ResetLink builds the address mailed to the account owner. The query
// carries action=rp, the key and the login.
func (c *Component) ResetLink(key, login string) string {
	query := url.Values{}
	query.Set("action", "rp")
	query.Set("key", key)
	query.Set("login", login)
	return c.opts.Site.URL + c.opts.Site.ResetPath + "?" + query.Encode()
}

func (c *Component) resetEmail(ctx context.Context, account *host.Account, key string) (host.Email, error) {
	body, err := c.opts.Renderer.RenderResetEmail(ctx, vanilla.ResetEmail{
		SiteURL: c.opts.Site.URL,
		Login:   account.Login,
		Link:    c.ResetLink(key, account.Login),
	})
	if err != nil {
		return host.Email{}, err
	}
	return host.Email{
		To:      account.Email,
		Subject: fmt.Sprintf("[%s] Password Reset", c.opts.Site.Name),
		Body:    body,
	}, nil
}
