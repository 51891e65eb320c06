package internal

type Unit string

const (
	UnitPiece Unit = "PIECE"
	UnitMeter Unit = "METER"
)

// Code returns the three-letter unit code used in position records.
func (u Unit) Code() string {
	if u == UnitMeter {
		return "MTR"
	}
	return "STK"
}

type UnitPolicy string

const (
	PolicyPiece  UnitPolicy = "piece"
	PolicyMeter  UnitPolicy = "meter"
	PolicyLegacy UnitPolicy = "legacy"
)

type ArticleKey string

const (
	KeyArticleNumber ArticleKey = "article_number"
	KeyEAN           ArticleKey = "ean"
)

type CatalogEntry struct {
	ArticleNumber string `json:"articleNumber"`
	EAN           string `json:"ean"`
	Description   string `json:"description"`
}

type QuantitySpec struct {
	Value int  `json:"value"`
	Unit  Unit `json:"unit"`
}

type MatchResult struct {
	Entry    *CatalogEntry `json:"entry"`
	Score    float64       `json:"score"`
	RunnerUp float64       `json:"runnerUp"`
	Matched  bool          `json:"matched"`
}

type ResolvedLineItem struct {
	Fragment    string       `json:"fragment"`
	ArticleKey  string       `json:"articleKey"`
	Description string       `json:"description"`
	Quantity    QuantitySpec `json:"quantity"`
	EAN         string       `json:"ean"`
	Score       float64      `json:"score"`
}
