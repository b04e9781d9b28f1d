// Package accounts serves the registration, login, password reset request
// and password reset operations over HTTP, and renders the forms that submit
// to them.
//
// Every operation runs the same pipeline: the anti-forgery token is checked,
// the url-encoded payload parsed, the operation schema validated, identity
// checked against the host, and the host mutation applied. The response is a
// single JSON result, {"status":1} on success or {"status":0,"errors":{...}}
// with one message per error key. A rejected token short-circuits with HTTP
// 403 and a malformed request with HTTP 400.
//
// The component never stores anything itself; accounts, sessions, reset keys,
// metadata, mail and tokens are delegated to a host.Platform.
package accounts
