// Package integrations defines where distance matrices come from.
package integrations

import "context"

// MatrixSource produces a square distance matrix whose row and column 0 are the depot.
type MatrixSource interface {
	Name() string
	Load(ctx context.Context) ([][]float64, error)
}

// Inline serves a matrix that is already in memory, such as a request body.
type Inline [][]float64

func (m Inline) Name() string { return "inline" }

func (m Inline) Load(context.Context) ([][]float64, error) { return m, nil }
