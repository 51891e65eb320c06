// Package ugl writes order documents in the fixed-width UGL interchange format.
package ugl

import (
	"strconv"
	"strings"
	"time"

	"uglgen/internal"
	"uglgen/internal/util"
)

const (
	DefaultFileName = "ugl.001"

	HeaderWidth   = 165
	AddressWidth  = 150
	PositionWidth = 177

	keyWidth         = 15
	descriptionWidth = 60
	qtyWidth         = 11
	posWidth         = 3

	terminator = "END"
)

// Fixed address block of the ordering warehouse.
const addressRecord = "ADR1684" + "                                                        " +
	"Lager" + "                         " +
	"Ludwigstr. 81-85" + "                 " +
	"63110 Rodgau - Jugesheim"

var (
	headerGap   = strings.Repeat(" ", 65)
	headerTail  = strings.Repeat(" ", 26)
	positionGap = strings.Repeat(" ", 5)
	// zero/space filler between description and unit code
	positionFiller = "000000000000" + strings.Repeat(" ", 11) + "0000000000" + " H" + strings.Repeat(" ", 19)
)

type Encoder struct {
	Now func() time.Time
}

func NewEncoder() *Encoder {
	return &Encoder{Now: time.Now}
}

// Encode renders header, address, one position per item and the END line,
// separated by "\n" without a trailing newline. Overlong fields are cut,
// never rejected.
func (e *Encoder) Encode(items []internal.ResolvedLineItem) string {
	records := make([]string, 0, len(items)+3)
	records = append(records, HeaderRecord(e.now()), addressRecord)
	for i, item := range items {
		records = append(records, PositionRecord(i+1, item))
	}
	records = append(records, terminator)
	return strings.Join(records, "\n")
}

func (e *Encoder) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func HeaderRecord(date time.Time) string {
	day := date.Format("20060102")
	return "KOPWORO01    PMKA01    BE" + headerGap + "4001926        " + day + "EUR04.00Bestellung" + headerTail + day
}

func AddressRecord() string { return addressRecord }

func PositionRecord(lineNo int, item internal.ResolvedLineItem) string {
	pos := util.PadLeftZero(strconv.Itoa(lineNo), posWidth)
	qty := util.PadLeftZero(strconv.Itoa(item.Quantity.Value), qtyWidth) + "0"

	var b strings.Builder
	b.Grow(PositionWidth)
	b.WriteString("POA00000000")
	b.WriteString(pos)
	b.WriteString("000000000")
	b.WriteString(pos)
	b.WriteString(util.PadRight(item.ArticleKey, keyWidth))
	b.WriteString(positionGap)
	b.WriteString(qty)
	b.WriteString(util.PadRight(item.Description, descriptionWidth))
	b.WriteString(positionFiller)
	b.WriteString(item.Quantity.Unit.Code())
	b.WriteString("2L")
	return b.String()
}
