package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snackstack/internal/domain"
	applog "snackstack/internal/log"
	"snackstack/internal/repos"
)

var ErrUnknownNudgeType = errors.New("unknown nudge type")

// NudgeService records nudge outcomes and received telemetry, and serves
// the admin report.
type NudgeService struct {
	Nudges *repos.NudgeRepo
	Now    func() time.Time
}

func NewNudgeService(nudges *repos.NudgeRepo) *NudgeService {
	return &NudgeService{Nudges: nudges, Now: time.Now}
}

// Record satisfies nudge.Journal. Failures only cost report accuracy.
func (s *NudgeService) Record(sessionID string, kind domain.Kind, outcome string) {
	if err := s.Nudges.Insert(sessionID, kind.String(), outcome, s.Now()); err != nil {
		applog.Warn(nil, "nudge.journal.fail", err, map[string]any{"session": sessionID, "kind": kind.String()})
	}
}

// Receive stores one telemetry report from POST /api/v1/user/nudge.
func (s *NudgeService) Receive(email, productName, nudgeType string) error {
	if !domain.Kind(nudgeType).Valid() {
		return ErrUnknownNudgeType
	}
	if err := s.Nudges.InsertTelemetry(email, productName, nudgeType, s.Now()); err != nil {
		return fmt.Errorf("store telemetry: %w", err)
	}
	return nil
}

// SendNudge satisfies nudge.Telemetry when the engine and the sink share a
// process.
func (s *NudgeService) SendNudge(_ context.Context, email, productName string, kind domain.Kind) error {
	return s.Receive(email, productName, kind.String())
}

type NudgeReport struct {
	Outcomes  []repos.NudgeStat     `json:"outcomes"`
	Telemetry []repos.TelemetryStat `json:"telemetry"`
}

func (s *NudgeService) Report() (NudgeReport, error) {
	out, err := s.Nudges.Report()
	if err != nil {
		return NudgeReport{}, err
	}
	tel, err := s.Nudges.TelemetryReport()
	if err != nil {
		return NudgeReport{}, err
	}
	return NudgeReport{Outcomes: out, Telemetry: tel}, nil
}
