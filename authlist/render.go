package authlist

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// RowProps are the inputs of Row.
type RowProps struct {
	Record    Record
	RevokeURL string
	// RevokeErr, when set, is shown next to the revoke control.
	RevokeErr error
	// CSRFToken, when set, is submitted with the revoke form as _csrf.
	CSRFToken string
}

// TableOption configures Table.
type TableOption func(*tableOptions)

type tableOptions struct {
	csrfToken string
}

// WithCSRFToken adds token to every revoke form of the table.
func WithCSRFToken(token string) TableOption {
	return func(o *tableOptions) { o.csrfToken = token }
}

// Row renders one table row: name, issue date and a revoke form that
// submits a DELETE (through the _method override) to RevokeURL.
func Row(p RowProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		writeRow(&b, p)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Table renders the state as a table, one row per record in order.
func Table(s State, routes Routes, opts ...TableOption) templ.Component {
	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}

	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<table class="table authorizations">`)
		b.WriteString(`<thead><tr><th>Name</th><th>Issued</th><th></th></tr></thead>`)
		b.WriteString(`<tbody>`)
		if s.LoadErr != nil {
			b.WriteString(`<tr class="danger load-error"><td colspan="3">Could not load authorized applications: `)
			b.WriteString(templ.EscapeString(s.LoadErr.Error()))
			b.WriteString(`</td></tr>`)
		}
		for _, r := range s.Authorizations {
			writeRow(&b, RowProps{
				Record:    r,
				RevokeURL: routes.RevokeURL(r.ClientID),
				RevokeErr: s.RevokeErr(r.ClientID),
				CSRFToken: o.csrfToken,
			})
		}
		b.WriteString(`</tbody></table>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeRow(b *strings.Builder, p RowProps) {
	b.WriteString(`<tr data-client-id="`)
	b.WriteString(templ.EscapeString(p.Record.ClientID))
	b.WriteString(`"><td>`)
	b.WriteString(templ.EscapeString(p.Record.ClientName))
	b.WriteString(`</td><td>`)
	b.WriteString(templ.EscapeString(p.Record.Issued))
	b.WriteString(`</td><td>`)
	b.WriteString(`<form method="post" action="`)
	b.WriteString(templ.EscapeString(p.RevokeURL))
	b.WriteString(`"><input type="hidden" name="_method" value="DELETE">`)
	if p.CSRFToken != "" {
		b.WriteString(`<input type="hidden" name="_csrf" value="`)
		b.WriteString(templ.EscapeString(p.CSRFToken))
		b.WriteString(`">`)
	}
	b.WriteString(`<button type="submit" class="btn btn-link" title="Revoke">`)
	b.WriteString(`<span class="glyphicon glyphicon-remove"></span></button>`)
	if p.RevokeErr != nil {
		b.WriteString(`<span class="text-danger revoke-error">`)
		b.WriteString(templ.EscapeString(p.RevokeErr.Error()))
		b.WriteString(`</span>`)
	}
	b.WriteString(`</form></td></tr>`)
}
