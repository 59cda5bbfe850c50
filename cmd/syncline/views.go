package main

import (
	"syncline/internal/align"
	"syncline/internal/syncer"
)

// outcomeView is the JSON shape for one finished sync request.
type outcomeView struct {
	State              string     `json:"state"`
	Code               string     `json:"code"`
	OperationID        string     `json:"operation_id"`
	OffsetSamples      int64      `json:"offset_samples,omitempty"`
	OffsetMilliseconds float64    `json:"offset_ms,omitempty"`
	Confidence         float64    `json:"confidence,omitempty"`
	PeakCorrelation    float64    `json:"peak_correlation,omitempty"`
	SecondaryPeakRatio float64    `json:"secondary_peak_ratio,omitempty"`
	SNREstimate        float64    `json:"snr_estimate,omitempty"`
	NoiseFloorDB       float64    `json:"noise_floor_db,omitempty"`
	Method             string     `json:"method,omitempty"`
	DegradationLevel   string     `json:"degradation_level"`
	WallTimeMS         float64    `json:"wall_time_ms"`
	RealtimeRatio      float64    `json:"realtime_ratio"`
	Drift              *driftView `json:"drift,omitempty"`
	Error              string     `json:"error,omitempty"`
}

type driftView struct {
	Detected          bool    `json:"detected"`
	PPM               float64 `json:"ppm"`
	Keyframes         int     `json:"keyframes"`
	CorrectionApplied bool    `json:"correction_applied"`
}

func newOutcomeView(outcome *syncer.Outcome) outcomeView {
	view := outcomeView{
		State:            string(outcome.State),
		Code:             string(outcome.Code),
		OperationID:      outcome.OperationID,
		DegradationLevel: outcome.Level.String(),
		WallTimeMS:       float64(outcome.WallTime.Microseconds()) / 1000,
		RealtimeRatio:    outcome.RealtimeRatio,
	}
	if outcome.Err != nil {
		view.Error = outcome.Err.Error()
	}
	if result := outcome.Result; result != nil {
		view.OffsetSamples = result.OffsetSamples
		view.OffsetMilliseconds = result.OffsetMilliseconds
		view.Confidence = result.Confidence
		view.PeakCorrelation = result.PeakCorrelation
		view.SecondaryPeakRatio = result.SecondaryPeakRatio
		view.SNREstimate = result.SNREstimate
		view.NoiseFloorDB = result.NoiseFloorDB
		view.Method = result.Method
		view.Drift = newDriftView(result.Drift)
	}
	return view
}

func newDriftView(drift *align.DriftInfo) *driftView {
	if drift == nil {
		return nil
	}
	return &driftView{
		Detected:          drift.Detected,
		PPM:               drift.PPM,
		Keyframes:         len(drift.Keyframes),
		CorrectionApplied: drift.CorrectionApplied,
	}
}
