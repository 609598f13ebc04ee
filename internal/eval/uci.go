package eval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/target"
)

var (
	ErrEngineClosed = errors.New("engine closed")
	ErrNoScore      = errors.New("engine reported no score")
)

const defaultDepth = 10

// UciEngine analyses positions with an external UCI engine process.
// It serves one caller at a time.
type UciEngine struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
}

// NewUciEngine starts the engine and waits until it is ready.
func NewUciEngine(ctx context.Context, path string, args ...string) (*UciEngine, error) {
	var cmd = exec.CommandContext(ctx, path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %v: %w", path, err)
	}
	var engine = newUciEngine(stdout, stdin)
	engine.cmd = cmd
	if err := engine.handshake(); err != nil {
		engine.Close()
		return nil, err
	}
	return engine, nil
}

func newUciEngine(r io.Reader, w io.WriteCloser) *UciEngine {
	var scanner = bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &UciEngine{
		stdin:   w,
		scanner: scanner,
	}
}

func (e *UciEngine) handshake() error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok"); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

// Evaluate searches pos to the given depth and returns the last reported score
// converted to White's point of view.
func (e *UciEngine) Evaluate(ctx context.Context, pos *domain.Position, depth int) (target.Score, error) {
	if depth <= 0 {
		depth = defaultDepth
	}
	if err := ctx.Err(); err != nil {
		return target.Score{}, err
	}
	if err := e.send("position fen " + pos.FEN()); err != nil {
		return target.Score{}, err
	}
	if err := e.send("go depth " + strconv.Itoa(depth)); err != nil {
		return target.Score{}, err
	}
	var score target.Score
	var found bool
	for {
		line, err := e.readLine()
		if err != nil {
			return target.Score{}, err
		}
		var fields = strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "bestmove" {
			break
		}
		if fields[0] == "info" {
			if s, ok := parseScore(fields[1:]); ok {
				score, found = s, true
			}
		}
		if err := ctx.Err(); err != nil {
			e.abort()
			return target.Score{}, err
		}
	}
	if !found {
		return target.Score{}, ErrNoScore
	}
	if !pos.WhiteMove {
		score.Centipawns = -score.Centipawns
	}
	return score, nil
}

// parseScore reads "score cp X" or "score mate N" from the arguments of an info line.
// Bound scores are ignored.
func parseScore(args []string) (target.Score, bool) {
	var index = findIndexString(args, "score")
	if index < 0 || index+2 >= len(args) {
		return target.Score{}, false
	}
	if index+3 < len(args) && (args[index+3] == "lowerbound" || args[index+3] == "upperbound") {
		return target.Score{}, false
	}
	var value, err = strconv.Atoi(args[index+2])
	if err != nil {
		return target.Score{}, false
	}
	switch args[index+1] {
	case "cp":
		return target.Score{Centipawns: value}, true
	case "mate":
		// mate 0: the side to move is mated
		if value == 0 {
			value = -1
		}
		return target.Score{Centipawns: value, Mate: true}, true
	}
	return target.Score{}, false
}

func findIndexString(slice []string, value string) int {
	for p, v := range slice {
		if v == value {
			return p
		}
	}
	return -1
}

// abort stops the running search and discards its output up to bestmove.
func (e *UciEngine) abort() {
	if e.send("stop") != nil {
		return
	}
	for {
		line, err := e.readLine()
		if err != nil || strings.HasPrefix(line, "bestmove") {
			return
		}
	}
}

func (e *UciEngine) send(command string) error {
	_, err := io.WriteString(e.stdin, command+"\n")
	return err
}

func (e *UciEngine) readLine() (string, error) {
	if !e.scanner.Scan() {
		if err := e.scanner.Err(); err != nil {
			return "", err
		}
		return "", ErrEngineClosed
	}
	return e.scanner.Text(), nil
}

func (e *UciEngine) waitFor(token string) error {
	for {
		line, err := e.readLine()
		if err != nil {
			return fmt.Errorf("waiting for %v: %w", token, err)
		}
		if strings.TrimSpace(line) == token {
			return nil
		}
	}
}

// Close asks the engine to quit and waits for the process.
func (e *UciEngine) Close() error {
	e.send("quit")
	e.stdin.Close()
	if e.cmd != nil {
		return e.cmd.Wait()
	}
	return nil
}
