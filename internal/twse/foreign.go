package twse

import (
	"strings"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/numeric"
)

// Unit is the unit foreign net volumes are reported in.
type Unit string

const (
	UnitShares Unit = "shares"
	UnitLots   Unit = "lots"
)

// ParseUnit maps a config value to a Unit, defaulting to lots.
func ParseUnit(s string) Unit {
	if strings.EqualFold(strings.TrimSpace(s), string(UnitShares)) {
		return UnitShares
	}
	return UnitLots
}

// ForeignNet extracts the net foreign volume of each ticker from t.
//
// Columns are resolved by name. Rows too short to hold both columns are
// skipped. Every requested ticker is a key of the result; the value is
// absent when the ticker is not listed or its cell is not numeric. The same
// unit conversion is applied to every table so values of different dates
// stay comparable.
func ForeignNet(t MarketTable, tickers []string, unit Unit) (map[string]models.Optional[int64], error) {
	idxCode, err := t.Column(ColumnCode)
	if err != nil {
		return nil, err
	}
	idxNet, err := t.Column(ColumnNetShares)
	if err != nil {
		return nil, err
	}
	need := max(idxCode, idxNet)

	out := make(map[string]models.Optional[int64], len(tickers))
	for _, tk := range tickers {
		out[tk] = models.None[int64]()
	}

	for _, row := range t.Data {
		if len(row) <= need {
			continue
		}
		code := strings.TrimSpace(row[idxCode])
		if _, ok := out[code]; !ok {
			continue
		}
		v := numeric.ParseInt(row[idxNet])
		if unit == UnitLots {
			v = numeric.SharesToLots(v)
		}
		out[code] = v
	}
	return out, nil
}
