package fubon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/twpulse/internal/domain/models"
)

type fakeRenderer struct {
	markup string
	err    error
	gotURL string
	gotWS  WaitStrategy
}

func (f *fakeRenderer) Render(_ context.Context, url string, wait WaitStrategy) (string, error) {
	f.gotURL = url
	f.gotWS = wait
	return f.markup, f.err
}

// The outer row wraps the real data table; its first cell contains every
// broker name, and its cells 1-3 are text, so it must be rejected.
const brokerPage = `<html><body>
<div>資料日期：20240105　單位：張</div>
<table>
  <tr>
    <td>摩根大通 美林 <table><tr><td>x</td></tr></table></td>
    <td>買進</td><td>賣出</td><td>差額</td>
  </tr>
  <tr><td>券商</td><td>買進</td><td>賣出</td><td>差額</td></tr>
  <tr><td> 摩根大通 </td><td>12,345</td><td>10,000</td><td>2,345</td></tr>
  <tr><td>美林</td><td>--</td><td>--</td><td>-1,200</td></tr>
  <tr><td>美林</td><td>1</td><td>2</td><td>-1</td></tr>
  <tr><td>花旗環球</td><td>3</td><td>4</td></tr>
</table>
</body></html>`

func TestParseBrokerPage_MatchesDataRows(t *testing.T) {
	got, err := ParseBrokerPage(brokerPage, []string{"美林", "摩根大通", "花旗環球"})
	require.NoError(t, err)

	assert.Equal(t, models.Some("20240105"), got.Date)
	assert.Equal(t, models.Some("張"), got.Unit)
	assert.Equal(t, []models.BrokerRow{
		{Name: "美林", Buy: "--", Sell: "--", Diff: "-1,200"},
		{Name: "摩根大通", Buy: "12,345", Sell: "10,000", Diff: "2,345"},
		{Name: "花旗環球", Buy: "-", Sell: "-", Diff: "-"},
	}, got.Brokers)
}

func TestParseBrokerPage_UnitStopsAtCellBoundary(t *testing.T) {
	page := `<table><tr><td>資料日期：20240105</td><td>單位：張</td><td>券商名稱</td></tr></table>`

	got, err := ParseBrokerPage(page, []string{"美林"})
	require.NoError(t, err)

	assert.Equal(t, models.Some("20240105"), got.Date)
	assert.Equal(t, models.Some("張"), got.Unit)
}

func TestParseBrokerPage_EmptyShellGivesPlaceholders(t *testing.T) {
	got, err := ParseBrokerPage(`<html><body><table></table></body></html>`, []string{"美林", "摩根大通"})
	require.NoError(t, err)

	assert.False(t, got.Date.Present())
	assert.False(t, got.Unit.Present())
	require.Len(t, got.Brokers, 2)
	assert.Equal(t, placeholderRow("美林"), got.Brokers[0])
	assert.Equal(t, placeholderRow("摩根大通"), got.Brokers[1])
	assert.Empty(t, got.Error)
}

func TestBrokerScraper_PassesWaitStrategy(t *testing.T) {
	r := &fakeRenderer{markup: brokerPage}
	ws := WaitStrategy{NetworkIdle: true, Selector: "table"}

	got := NewBrokerScraper(r, "https://broker.example/zgb", ws).FetchBrokerRankings(context.Background(), []string{"摩根大通"})

	assert.Equal(t, "https://broker.example/zgb", r.gotURL)
	assert.Equal(t, ws, r.gotWS)
	require.Len(t, got.Brokers, 1)
	assert.Equal(t, "12,345", got.Brokers[0].Buy)
}

func TestBrokerScraper_RenderFailureDegrades(t *testing.T) {
	r := &fakeRenderer{err: errors.New("chrome failed to start")}

	got := NewBrokerScraper(r, "u", WaitStrategy{}).FetchBrokerRankings(context.Background(), []string{"美林", "美商高盛"})

	assert.False(t, got.Date.Present())
	assert.False(t, got.Unit.Present())
	assert.Equal(t, "chrome failed to start", got.Error)
	assert.Equal(t, []models.BrokerRow{placeholderRow("美林"), placeholderRow("美商高盛")}, got.Brokers)
}

func TestLooksNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1,234", true},
		{"-1,234,567", true},
		{"12345", true},
		{" 42 ", true},
		{"-", false},
		{"--", false},
		{"1,23", false},
		{"1.5", false},
		{"買進", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksNumeric(tt.in); got != tt.want {
			t.Errorf("looksNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
