package pgn

import (
	"bufio"
	"io"
	"os"
	"strings"
)

type GameRaw struct {
	Tags    []string
	BodyRaw string
}

func (g GameRaw) String() string {
	var sb strings.Builder
	for _, tag := range g.Tags {
		sb.WriteString(tag)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(g.BodyRaw)
	sb.WriteString("\n")
	return sb.String()
}

func WalkPgnFile(
	filepath string,
	onGame func(GameRaw) error,
) error {
	file, err := os.Open(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WalkGames(file, onGame)
}

// WalkGames splits a PGN stream into raw games without interpreting the moves,
// so that one broken game does not stop the rest of the stream.
func WalkGames(
	r io.Reader,
	onGame func(GameRaw) error,
) error {
	var tags []string
	var body = &strings.Builder{}
	var hasBody bool

	var scanner = bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line = strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if hasBody {
				if len(tags) != 0 && body.Len() != 0 {
					var err = onGame(GameRaw{
						Tags:    tags,
						BodyRaw: body.String(),
					})
					if err != nil {
						return err
					}
				}
				hasBody = false
				tags = nil
				body.Reset()
			}
			tags = append(tags, line)
		} else {
			hasBody = true
			body.WriteString(line)
			body.WriteString(" ")
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if hasBody && len(tags) != 0 && body.Len() != 0 {
		return onGame(GameRaw{
			Tags:    tags,
			BodyRaw: body.String(),
		})
	}
	return nil
}
