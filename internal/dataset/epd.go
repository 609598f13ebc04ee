package dataset

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/pgn"
	"github.com/notnil/chess"
)

// EpdProvider reads positions labelled with a game result, one per line:
//
//	rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - c9 "1/2-1/2";
//
// Lines without move counters are taken as ply 0. Malformed lines are logged and skipped.
type EpdProvider struct {
	FilePath string
}

func (dp *EpdProvider) Load(
	ctx context.Context,
	dataset chan<- domain.DatasetItem,
) error {
	file, err := os.Open(dp.FilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	var scanner = bufio.NewScanner(file)
	var lineNumber, skippedCount int
	for scanner.Scan() {
		lineNumber++
		var s = strings.TrimSpace(scanner.Text())
		if s == "" {
			continue
		}
		item, err := parseEpdLine(s)
		if err != nil {
			skippedCount++
			log.Println("skip epd line", fmt.Sprintf("%v:%v", dp.FilePath, lineNumber), err)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case dataset <- item:
		}
	}
	if skippedCount != 0 {
		log.Println("loadEpd",
			"lineCount", lineNumber,
			"skippedCount", skippedCount)
	}
	return scanner.Err()
}

func parseEpdLine(s string) (domain.DatasetItem, error) {
	var index = strings.Index(s, "\"")
	if index < 0 {
		return domain.DatasetItem{}, fmt.Errorf("epd result not found %v", s)
	}
	var outcome, ok = pgn.ParseResult(strings.TrimRight(s[index+1:], "\";"))
	if !ok {
		return domain.DatasetItem{}, fmt.Errorf("bad epd result %v", s)
	}

	var fields = strings.Fields(s[:index])
	if len(fields) > 0 && fields[len(fields)-1] == "c9" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 4 {
		fields = append(fields, "0", "1")
	}
	fen, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		return domain.DatasetItem{}, err
	}
	var game = chess.NewGame(fen)
	return domain.DatasetItem{
		Position: pgn.NewPosition(game.Position()),
		Outcome:  outcome,
	}, nil
}
