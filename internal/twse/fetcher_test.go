package twse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/source"
)

// fakeSource serves canned bodies keyed by URL; missing URLs fail.
type fakeSource struct {
	bodies map[string]string
	calls  []string
}

func (f *fakeSource) Get(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	b, ok := f.bodies[url]
	if !ok {
		return nil, &source.StatusError{URL: url, StatusCode: http.StatusNotFound}
	}
	return []byte(b), nil
}

func (f *fakeSource) GetDecoded(ctx context.Context, url string, _ encoding.Encoding) ([]byte, error) {
	return f.Get(ctx, url)
}

var testEndpoints = Endpoints{
	ForeignJSON: "json?date={date}",
	ForeignCSV:  "csv?date={date}",
	StockDay:    "day?date={date}&stock={stock}",
}

const fallbackCSV = "113年01月05日 外資及陸資買賣超彙總表\n" +
	"\n" +
	"\"單位：股\"\n" +
	"\"\",\"證券代號\",\"證券名稱\",\"外資買進股數\",\"外資賣出股數\",\"買賣超股數\",\n" +
	"\"\",=\"2330\",\"台積電      \",\"20,000,000\",\"18,500,000\",\"1,500,000\",\n" +
	"\"\",=\"2317\",\"鴻海        \",\"1,000\",\"3,600\",\"-2,600\",\n" +
	"\"說明:\"\n"

func TestFetchDataset_JSONFirst(t *testing.T) {
	src := &fakeSource{bodies: map[string]string{
		"json?date=20240105": `{"stat":"OK","date":"20240105","fields":["證券代號","買賣超股數"],"data":[["2330","1,500,000"]]}`,
	}}
	f := NewFetcher(src, testEndpoints)

	tbl, err := f.FetchDataset(context.Background(), "20240105")
	require.NoError(t, err)
	assert.True(t, tbl.HasData())
	assert.Equal(t, []string{"json?date=20240105"}, src.calls)
}

func TestFetchDataset_FallsBackToCSV(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{name: "transport error", json: ""},
		{name: "malformed body", json: "<html>busy</html>"},
		{name: "non-success status", json: `{"stat":"很抱歉，沒有符合條件的資料!"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bodies := map[string]string{"csv?date=20240105": fallbackCSV}
			if tc.json != "" {
				bodies["json?date=20240105"] = tc.json
			}
			f := NewFetcher(&fakeSource{bodies: bodies}, testEndpoints)

			tbl, err := f.FetchDataset(context.Background(), "20240105")
			require.NoError(t, err)
			assert.Contains(t, tbl.Fields, ColumnCode)
			assert.Contains(t, tbl.Fields, ColumnNetShares)
			require.Len(t, tbl.Data, 3)
			assert.Equal(t, "2330", tbl.Data[0][1])
			assert.Equal(t, "台積電", tbl.Data[0][2])
			assert.Equal(t, models.TradingDate("20240105"), tbl.Date)
		})
	}
}

func TestFetchDataset_SchemaNotFound(t *testing.T) {
	f := NewFetcher(&fakeSource{bodies: map[string]string{
		"csv?date=20240106": "查詢日期無資料\n",
	}}, testEndpoints)

	_, err := f.FetchDataset(context.Background(), "20240106")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
}

func TestFetchDataset_Big5OverHTTP(t *testing.T) {
	big5, err := traditionalchinese.Big5.NewEncoder().String(fallbackCSV)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("response") == "json" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(big5))
	}))
	defer srv.Close()

	f := NewFetcher(source.NewClient(source.WithRateLimit(0)), Endpoints{
		ForeignJSON: srv.URL + "/fund/TWT38U?response=json&date={date}",
		ForeignCSV:  srv.URL + "/fund/TWT38U?response=csv&date={date}",
	})
	got, err := f.FetchForeignNet(context.Background(), "20240105", []string{"2330", "2317"})
	require.NoError(t, err)
	assert.Equal(t, models.Some[int64](1500), got["2330"])
	assert.Equal(t, models.Some[int64](-3), got["2317"])
}

func TestFetchForeignNet_EndToEndLots(t *testing.T) {
	src := &fakeSource{bodies: map[string]string{
		"json?date=20240105": `{"stat":"OK","fields":["證券代號","買賣超股數"],"data":[["2330","1500000"]]}`,
	}}
	f := NewFetcher(src, testEndpoints)

	got, err := f.FetchForeignNet(context.Background(), "20240105", []string{"2330"})
	require.NoError(t, err)
	v, ok := got["2330"].Get()
	require.True(t, ok)
	assert.Equal(t, int64(1500), v)
}

func TestFetchForeignNet_NoRows(t *testing.T) {
	src := &fakeSource{bodies: map[string]string{
		"json?date=20240106": `{"stat":"OK","fields":["證券代號","買賣超股數"],"data":[]}`,
	}}
	_, err := NewFetcher(src, testEndpoints).FetchForeignNet(context.Background(), "20240106", []string{"2330"})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestForeignNet_NameBasedLookup(t *testing.T) {
	original := MarketTable{
		Fields: []string{"證券代號", "證券名稱", "買賣超股數"},
		Data: [][]string{
			{"2330", "台積電", "1,500,000"},
			{"2317", "鴻海", "-2,600"},
			{"9999"},
		},
	}
	reordered := MarketTable{
		Fields: []string{"買賣超股數", "證券名稱", "證券代號"},
		Data: [][]string{
			{"-2,600", "鴻海", "2317"},
			{"1,500,000", "台積電", "2330"},
		},
	}
	tickers := []string{"2330", "2317", "3231"}

	a, err := ForeignNet(original, tickers, UnitShares)
	require.NoError(t, err)
	b, err := ForeignNet(reordered, tickers, UnitShares)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, models.Some[int64](1500000), a["2330"])
	assert.False(t, a["3231"].Present())
}

func TestForeignNet_ColumnMissing(t *testing.T) {
	_, err := ForeignNet(MarketTable{Fields: []string{"證券代號"}}, []string{"2330"}, UnitLots)
	var cm *ColumnMissingError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, ColumnNetShares, cm.Name)
}

func TestParseTabular_HeaderBeyondScanWindow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < headerScanLines; i++ {
		b.WriteString("preamble\n")
	}
	b.WriteString("證券代號,買賣超股數\n2330,1\n")

	_, err := parseTabular(b.String(), "20240105", []string{ColumnCode, ColumnNetShares})
	assert.ErrorIs(t, err, ErrSchemaNotFound)
}

func TestParseUnit(t *testing.T) {
	assert.Equal(t, UnitShares, ParseUnit("SHARES"))
	assert.Equal(t, UnitLots, ParseUnit("lots"))
	assert.Equal(t, UnitLots, ParseUnit(""))
}
