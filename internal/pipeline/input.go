package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/samber/lo"
)

var ErrUnsupportedInput = errors.New("unsupported input type")

var spaceRun = regexp.MustCompile(`\s+`)

// ReadInput turns an input source into order text. For "text" the value is
// the text itself, for every other kind it is a file path. Line-oriented
// sources contribute one fragment per non-empty line.
func ReadInput(kind string, value string) (string, error) {
	switch kind {
	case "text":
		return value, nil
	case "file", "html", "eml", "pdf":
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedInput, kind)
	}

	blob, err := os.ReadFile(value)
	if err != nil {
		return "", err
	}
	switch kind {
	case "file":
		return joinLines(splitLines(string(blob))), nil
	case "html":
		return textFromHTML(string(blob))
	case "eml":
		return textFromEmail(blob)
	default:
		return textFromPDF(blob)
	}
}

func textFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script,style,head").Remove()

	lines := []string{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			if c := normalizeSpaces(cell.Text()); c != "" {
				cells = append(cells, c)
			}
		})
		lines = append(lines, strings.Join(cells, " "))
	})
	doc.Find("p,li").Each(func(_ int, sel *goquery.Selection) {
		lines = append(lines, normalizeSpaces(sel.Text()))
	})
	if len(lo.Compact(lines)) == 0 {
		lines = splitLines(doc.Text())
	}
	return joinLines(lines), nil
}

func textFromEmail(raw []byte) (string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(env.Text) != "" {
		return joinLines(splitLines(env.Text)), nil
	}
	if env.HTML != "" {
		return textFromHTML(env.HTML)
	}
	return "", nil
}

func textFromPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	lines := []string{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, splitLines(text)...)
	}
	return joinLines(lines), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return lo.FilterMap(strings.Split(text, "\n"), func(line string, _ int) (string, bool) {
		line = normalizeSpaces(line)
		return line, line != ""
	})
}

func joinLines(lines []string) string {
	return strings.Join(lo.Compact(lines), ", ")
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(input, " "))
}
