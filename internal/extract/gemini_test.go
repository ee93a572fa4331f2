package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	t.Parallel()

	t.Run("clean object", func(t *testing.T) {
		t.Parallel()
		res, err := decodeResponse(`{"partyName":"Ravi Textiles","amount":512.5,"lineItems":["Cotton Silk"],"date":"2026-08-28"}`)
		require.NoError(t, err)
		require.Equal(t, "Ravi Textiles", res.PartyName)
		require.True(t, res.Amount.Equal(decimal.RequireFromString("512.5")))
		require.Equal(t, []string{"Cotton Silk"}, res.Items)
		require.Equal(t, "2026-08-28", res.Date)
	})

	t.Run("fenced markdown", func(t *testing.T) {
		t.Parallel()
		raw := "```json\n{\"partyName\":\"Meena\",\"amount\":300}\n```"
		res, err := decodeResponse(raw)
		require.NoError(t, err)
		require.Equal(t, "Meena", res.PartyName)
	})

	t.Run("surrounding prose", func(t *testing.T) {
		t.Parallel()
		res, err := decodeResponse(`Here is the bill: {"partyName":"Meena","amount":300} hope that helps`)
		require.NoError(t, err)
		require.Equal(t, "Meena", res.PartyName)
	})

	t.Run("bad date is dropped not fatal", func(t *testing.T) {
		t.Parallel()
		res, err := decodeResponse(`{"partyName":"Meena","amount":300,"date":"28/08/2026"}`)
		require.NoError(t, err)
		require.Empty(t, res.Date)
	})

	var extErr *Error

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		_, err := decodeResponse(`{"partyName": "Ravi", "amount":`)
		require.ErrorAs(t, err, &extErr)
	})

	t.Run("empty response", func(t *testing.T) {
		t.Parallel()
		_, err := decodeResponse("   ")
		require.ErrorAs(t, err, &extErr)
	})

	t.Run("missing partyName", func(t *testing.T) {
		t.Parallel()
		_, err := decodeResponse(`{"amount":300}`)
		require.ErrorAs(t, err, &extErr)
	})

	t.Run("missing amount", func(t *testing.T) {
		t.Parallel()
		_, err := decodeResponse(`{"partyName":"Ravi"}`)
		require.ErrorAs(t, err, &extErr)
	})

	t.Run("negative amount", func(t *testing.T) {
		t.Parallel()
		_, err := decodeResponse(`{"partyName":"Ravi","amount":-3}`)
		require.ErrorAs(t, err, &extErr)
	})
}

func TestCleanModelJSON(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"noise {\"a\":1} trailing", `{"a":1}`},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, cleanModelJSON(tc.in))
	}
}
