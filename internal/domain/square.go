package domain

const SquareCount = 64

// Squares follow the evaluator's board layout: a8 = 0, b8 = 1, ..., h1 = 63.
const (
	SquareA8 = 0
	SquareH8 = 7
	SquareA1 = 56
	SquareH1 = 63
)

const (
	FileA = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const (
	Rank1 = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

// MakeSquare converts a file and a rank (both from 0, rank 0 being White's back rank)
// to the evaluator's square index.
func MakeSquare(file, rank int) int {
	return (7-rank)*8 + file
}

func File(sq int) int {
	return sq & 7
}

func Rank(sq int) int {
	return 7 - sq>>3
}

// FlipSquare mirrors the square vertically.
func FlipSquare(sq int) int {
	return sq ^ 56
}

func SquareName(sq int) string {
	if sq < 0 || sq >= SquareCount {
		return "-"
	}
	return string([]byte{byte('a' + File(sq)), byte('1' + Rank(sq))})
}

func ParseSquare(s string) (int, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, false
	}
	return MakeSquare(int(s[0]-'a'), int(s[1]-'1')), true
}
