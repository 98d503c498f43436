package authlist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_RendersRowsInOrder(t *testing.T) {
	var b strings.Builder
	s := State{Authorizations: []Record{foo, bar}}
	require.NoError(t, Table(s, BaseRoutes{}).Render(context.Background(), &b))
	got := b.String()

	assert.Contains(t, got, `<thead><tr><th>Name</th><th>Issued</th><th></th></tr></thead>`)
	assert.Equal(t, 2, strings.Count(got, "<tr data-client-id="))

	fooAt := strings.Index(got, `data-client-id="a1"`)
	barAt := strings.Index(got, `data-client-id="b2"`)
	require.NotEqual(t, -1, fooAt)
	require.NotEqual(t, -1, barAt)
	assert.Less(t, fooAt, barAt)

	assert.Contains(t, got, `<td>Foo</td><td>2021-01-01</td>`)
	assert.Contains(t, got, `action="/api/account/authorizations/a1"`)
	assert.Contains(t, got, `<input type="hidden" name="_method" value="DELETE">`)
	assert.Contains(t, got, `<span class="glyphicon glyphicon-remove"></span>`)
	assert.NotContains(t, got, "load-error")
}

func TestTable_CSRFToken(t *testing.T) {
	var b strings.Builder
	s := State{Authorizations: []Record{foo, bar}}
	require.NoError(t, Table(s, BaseRoutes{}, WithCSRFToken(`t"k`)).Render(context.Background(), &b))

	assert.Equal(t, 2, strings.Count(b.String(), `<input type="hidden" name="_csrf" value="t&#34;k">`))

	b.Reset()
	require.NoError(t, Table(s, BaseRoutes{}).Render(context.Background(), &b))
	assert.NotContains(t, b.String(), `name="_csrf"`)
}

func TestTable_Empty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Table(State{}, BaseRoutes{}).Render(context.Background(), &b))

	assert.Contains(t, b.String(), "<th>Name</th>")
	assert.NotContains(t, b.String(), "<tr data-client-id=")
}

func TestTable_Errors(t *testing.T) {
	s := State{Authorizations: []Record{foo}}.
		ApplyLoadError(errors.New("connection refused")).
		ApplyRevokeError("a1", errors.New("unexpected status 500"))

	var b strings.Builder
	require.NoError(t, Table(s, BaseRoutes{}).Render(context.Background(), &b))
	got := b.String()

	assert.Contains(t, got, `class="danger load-error"`)
	assert.Contains(t, got, "connection refused")
	assert.Contains(t, got, `<span class="text-danger revoke-error">unexpected status 500</span>`)
}

func TestRow_EscapesContent(t *testing.T) {
	var b strings.Builder
	r := Record{ClientID: `x"y`, ClientName: "<script>alert(1)</script>", Issued: "2021-01-01"}
	require.NoError(t, Row(RowProps{Record: r, RevokeURL: "/revoke?a=1&b=2"}).Render(context.Background(), &b))
	got := b.String()

	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;")
	assert.Contains(t, got, `data-client-id="x&#34;y"`)
	assert.Contains(t, got, `action="/revoke?a=1&amp;b=2"`)
	assert.True(t, strings.HasPrefix(got, "<tr"))
	assert.True(t, strings.HasSuffix(got, "</tr>"))
}
