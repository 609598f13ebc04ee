package pgn

import (
	"regexp"

	"github.com/fe64/nnuetrain/internal/domain"
)

const (
	GameResultNone     = "*"
	GameResultWhiteWin = "1-0"
	GameResultBlackWin = "0-1"
	GameResultDraw     = "1/2-1/2"
)

// ParseResult converts a PGN result to an outcome from White's point of view.
func ParseResult(s string) (float64, bool) {
	switch s {
	case GameResultWhiteWin:
		return domain.OutcomeWhiteWin, true
	case GameResultBlackWin:
		return domain.OutcomeBlackWin, true
	case GameResultDraw:
		return domain.OutcomeDraw, true
	default:
		return 0, false
	}
}

func tagValue(tags []string, key string) (string, bool) {
	for _, tag := range tags {
		var match = tagPairRegex.FindStringSubmatch(tag)
		if match != nil && match[1] == key {
			return match[2], true
		}
	}
	return "", false
}

var tagPairRegex = regexp.MustCompile(`^\[(\w+)\s+"(.*)"\]$`)
