// Package search produces the vectors used for recipe similarity.
package search

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// Dimensions is the width of every recipe embedding column.
const Dimensions = 64

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "with": {}, "to": {},
	"in": {}, "for": {}, "on": {}, "or": {}, "my": {}, "our": {},
}

// Tokens lowercases text and splits it into words, dropping stop words.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop || len(f) < 2 {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Embed hashes the words of text into a fixed-width, unit-length vector.
// Texts sharing vocabulary land close together under cosine distance.
func Embed(text string) pgvector.Vector {
	vec := make([]float32, Dimensions)
	for _, tok := range Tokens(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		idx := sum % Dimensions
		// the high bit picks the sign so collisions partly cancel
		if sum&(1<<31) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		// pgvector rejects an all-zero vector for cosine distance
		vec[0] = 1
		return pgvector.NewVector(vec)
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return pgvector.NewVector(vec)
}

// Cosine returns the cosine similarity of two embeddings of equal width.
func Cosine(a, b pgvector.Vector) float64 {
	as, bs := a.Slice(), b.Slice()
	if len(as) != len(bs) || len(as) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range as {
		dot += float64(as[i] * bs[i])
		na += float64(as[i] * as[i])
		nb += float64(bs[i] * bs[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
