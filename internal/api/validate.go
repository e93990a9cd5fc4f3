package api

import (
	"fmt"

	"colroute/internal/ga"
	"colroute/internal/model"
)

// validateRunRequest builds the oracle and effective GA config for req, or
// explains why the request cannot run.
func (s *Server) validateRunRequest(req *model.RunRequest) (*ga.Oracle, ga.Config, error) {
	if len(req.Matrix) == 0 {
		return nil, ga.Config{}, fmt.Errorf("matrix is required")
	}
	if limit := s.Cfg.Server.MaxPoints; len(req.Matrix) > limit {
		return nil, ga.Config{}, fmt.Errorf("matrix has %d points; at most %d allowed", len(req.Matrix), limit)
	}
	if len(req.Label) > 200 {
		return nil, ga.Config{}, fmt.Errorf("label must be at most 200 characters")
	}
	cfg := req.Config.Apply(s.Cfg.GA)
	if err := cfg.Validate(); err != nil {
		return nil, ga.Config{}, err
	}
	o, err := ga.NewOracle(req.Matrix)
	if err != nil {
		return nil, ga.Config{}, err
	}
	return o, cfg, nil
}
