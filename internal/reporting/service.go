package reporting

import (
	"context"
	"errors"

	"voicebot-platform/internal/calllog"
	"voicebot-platform/internal/intent"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

type Service struct {
	repo calllog.Repository
}

func NewService(repo calllog.Repository) *Service { return &Service{repo: repo} }

// Dispositions summarizes finished calls within the request window. Counts
// are derived from the immutable call log, never from live sessions.
func (s *Service) Dispositions(ctx context.Context, req DispositionRequest) (DispositionSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return DispositionSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return DispositionSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.List(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return DispositionSummary{}, err
	}

	out := DispositionSummary{Range: req.Range}
	for _, r := range rows {
		out.TotalCalls++
		out.TotalTurns += r.TurnCount
		out.TotalDurationSeconds += r.DurationSeconds

		switch r.Status {
		case calllog.CallStatusCompleted:
			out.CompletedCalls++
		case calllog.CallStatusFailed:
			out.FailedCalls++
		case calllog.CallStatusBusy:
			out.BusyCalls++
		case calllog.CallStatusNoAnswer:
			out.NoAnswerCalls++
		case calllog.CallStatusEvicted:
			out.EvictedCalls++
		}

		switch intent.EndReason(r.Reason) {
		case intent.EndReasonDate:
			out.DateConfirmed++
		case intent.EndReasonDecline:
			out.Declined++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}
