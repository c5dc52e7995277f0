package twse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stockDayFields = `["日期","成交股數","成交金額","開盤價","最高價","最低價","收盤價","漲跌價差","成交筆數"]`

func TestFetchQuote(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		close   float64
		change  float64
		pct     string
		present bool
		noPct   bool
	}{
		{
			name: "two sessions",
			body: `{"stat":"OK","fields":` + stockDayFields + `,"data":[
				["113/01/03","1","1","590.00","593.00","589.00","600.00","-3.00","1"],
				["113/01/04","1","1","590.00","593.00","589.00","606.00","+6.00","1"]]}`,
			close: 606, change: 6, pct: "+1.00%", present: true,
		},
		{
			name: "decline",
			body: `{"stat":"OK","fields":` + stockDayFields + `,"data":[
				["113/01/03","1","1","1","1","1","1,000.00","0","1"],
				["113/01/04","1","1","1","1","1","987.50","0","1"]]}`,
			close: 987.5, change: -12.5, pct: "-1.25%", present: true,
		},
		{
			name: "single row",
			body: `{"stat":"OK","fields":` + stockDayFields + `,"data":[["113/01/04","1","1","1","1","1","606.00","0","1"]]}`,
		},
		{
			name: "previous close placeholder",
			body: `{"stat":"OK","fields":` + stockDayFields + `,"data":[
				["113/01/03","1","1","1","1","1","--","0","1"],
				["113/01/04","1","1","1","1","1","606.00","0","1"]]}`,
		},
		{
			name: "previous close zero",
			body: `{"stat":"OK","fields":` + stockDayFields + `,"data":[
				["113/01/03","1","1","1","1","1","0.00","0","1"],
				["113/01/04","1","1","1","1","1","10.00","0","1"]]}`,
			close: 10, change: 10, present: true, noPct: true,
		},
		{
			name: "no data status",
			body: `{"stat":"很抱歉，沒有符合條件的資料!"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{bodies: map[string]string{"day?date=20240104&stock=2330": tc.body}}
			q, err := NewFetcher(src, testEndpoints).FetchQuote(context.Background(), "2330", "20240104")
			require.NoError(t, err)
			assert.Equal(t, "2330", q.Ticker)

			closeV, okClose := q.Close.Get()
			changeV, okChange := q.Change.Get()
			assert.Equal(t, okClose, okChange, "close and change must be present together")
			assert.Equal(t, tc.present, okClose)
			if !tc.present {
				assert.False(t, q.ChangePct.Present())
				return
			}
			assert.InDelta(t, tc.close, closeV, 1e-9)
			assert.InDelta(t, tc.change, changeV, 1e-9)
			if tc.noPct {
				assert.False(t, q.ChangePct.Present())
				return
			}
			pct, ok := q.ChangePct.Get()
			require.True(t, ok)
			assert.Equal(t, tc.pct, pct)
		})
	}
}

func TestFetchQuote_TransportError(t *testing.T) {
	_, err := NewFetcher(&fakeSource{}, testEndpoints).FetchQuote(context.Background(), "2330", "20240104")
	require.Error(t, err)
}

func TestQuoteFromHistory_ColumnMissing(t *testing.T) {
	_, err := QuoteFromHistory("2330", MarketTable{Stat: "OK", Fields: []string{"日期"}, Data: [][]string{{"a"}, {"b"}}})
	var cm *ColumnMissingError
	assert.True(t, errors.As(err, &cm))
}
