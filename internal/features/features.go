package features

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fe64/nnuetrain/internal/domain"
)

// InputSize is the number of network inputs: one plane of 64 squares per coloured piece.
const InputSize = domain.PieceChannels * domain.SquareCount

var ErrInvalidSquareMapping = errors.New("invalid square mapping")

// Encode returns the active inputs of the position in ascending order.
func Encode(pos *domain.Position) ([]int16, error) {
	var buffer [domain.SquareCount]int16
	var size int
	for sq, piece := range pos.Board {
		if piece == domain.NoPiece {
			continue
		}
		var index = InputIndex(piece, sq)
		if index < 0 || index >= InputSize {
			return nil, fmt.Errorf("%w piece %v square %v index %v",
				ErrInvalidSquareMapping, piece, sq, index)
		}
		buffer[size] = int16(index)
		size++
	}
	var result = make([]int16, size)
	copy(result, buffer[:size])
	sortIndices(result)
	return result, nil
}

func InputIndex(piece domain.Piece, sq int) int {
	return piece.Channel()*domain.SquareCount + sq
}

// Mirror maps the inputs of a position to the inputs of its colour-flipped mirror.
func Mirror(input []int16) []int16 {
	var result = make([]int16, len(input))
	for i, index := range input {
		var sq = int(index) % domain.SquareCount
		var channel = int(index) / domain.SquareCount
		if channel >= 6 {
			channel -= 6
		} else {
			channel += 6
		}
		result[i] = int16(channel*domain.SquareCount + domain.FlipSquare(sq))
	}
	sortIndices(result)
	return result
}

func sortIndices(input []int16) {
	sort.Slice(input, func(i, j int) bool { return input[i] < input[j] })
}
