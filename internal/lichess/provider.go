package lichess

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/pgn"
)

// Provider turns the games of a Lichess user into dataset items.
type Provider struct {
	Client *Client
	Query  GameQuery
	Filter pgn.Filter
	Seed   int64
}

// DefaultFilter keeps every position from the eleventh move on.
func DefaultFilter() pgn.Filter {
	return pgn.Filter{
		MinPly: 20,
	}
}

func NewProvider(username string, maxGames int) *Provider {
	return &Provider{
		Client: NewClient(),
		Query: GameQuery{
			Username: username,
			Max:      maxGames,
		},
		Filter: DefaultFilter(),
	}
}

// Load downloads the games and replays them. A download that fails after some games
// were received keeps those games.
func (p *Provider) Load(
	ctx context.Context,
	items chan<- domain.DatasetItem,
) error {
	var rnd = rand.New(rand.NewSource(p.Seed))
	var skippedCount int
	var emit = func(item domain.DatasetItem) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case items <- item:
			return nil
		}
	}
	log.Println("downloadGames",
		"username", p.Query.Username,
		"max", p.Query.Max)
	gamesCount, err := p.Client.StreamGames(ctx, p.Query, func(game Game) error {
		var outcome, ok = gameOutcome(&game)
		if !ok {
			skippedCount++
			return nil
		}
		chessGame, err := pgn.PlaySAN(game.InitialFen, strings.Fields(game.Moves))
		if err != nil {
			skippedCount++
			log.Println("skip game", game.ID, err)
			return nil
		}
		return pgn.Replay(chessGame, outcome, &p.Filter, rnd, emit)
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		if gamesCount == 0 {
			return fmt.Errorf("download games of %v: %w", p.Query.Username, err)
		}
		log.Println("downloadGames stopped",
			"gamesCount", gamesCount,
			"error", err)
	}
	log.Println("downloadGames",
		"gamesCount", gamesCount,
		"skippedCount", skippedCount)
	return nil
}

// gameOutcome returns the result from White's point of view. Unfinished games and
// variants other than standard chess have none.
func gameOutcome(game *Game) (float64, bool) {
	if game.Variant != "" && game.Variant != "standard" && game.Variant != "fromPosition" {
		return 0, false
	}
	switch game.Status {
	case "created", "started", "aborted", "noStart", "unknownFinish":
		return 0, false
	}
	switch game.Winner {
	case "white":
		return domain.OutcomeWhiteWin, true
	case "black":
		return domain.OutcomeBlackWin, true
	default:
		return domain.OutcomeDraw, true
	}
}
