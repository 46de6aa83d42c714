package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/repository"
)

var ErrInvalidFeedback = errors.New("invalid feedback")

type SubmitFeedbackInput struct {
	BookingID      uint
	Rating         int
	RecommendScore int
	Comment        string
}

// FeedbackStats aggregates reviews for a retreat. NPS follows the standard
// formula: promoters score >= 9, detractors <= 6 on the 0-10 recommend scale.
type FeedbackStats struct {
	Responses     int     `json:"responses"`
	AverageRating float64 `json:"average_rating"`
	Promoters     int     `json:"promoters"`
	Detractors    int     `json:"detractors"`
	NPS           float64 `json:"nps"`
}

type FeedbackService interface {
	Submit(ctx context.Context, in SubmitFeedbackInput) (*models.Feedback, error)
	Stats(ctx context.Context, retreatID uint) (*FeedbackStats, error)
	ListByBand(ctx context.Context, retreatID uint, band string) ([]models.Feedback, error)
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
	bookingRepo  repository.BookingRepository
}

func NewFeedbackService(feedbackRepo repository.FeedbackRepository, bookingRepo repository.BookingRepository) FeedbackService {
	return &feedbackService{feedbackRepo: feedbackRepo, bookingRepo: bookingRepo}
}

func (s *feedbackService) Submit(ctx context.Context, in SubmitFeedbackInput) (*models.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1-5", ErrInvalidFeedback)
	}
	if in.RecommendScore < 0 || in.RecommendScore > 10 {
		return nil, fmt.Errorf("%w: recommend score must be 0-10", ErrInvalidFeedback)
	}

	booking, err := s.bookingRepo.FindByID(ctx, in.BookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	feedback := &models.Feedback{
		BookingID:      booking.ID,
		RetreatID:      booking.RetreatID,
		Rating:         in.Rating,
		RecommendScore: in.RecommendScore,
		Comment:        in.Comment,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *feedbackService) Stats(ctx context.Context, retreatID uint) (*FeedbackStats, error) {
	items, err := s.feedbackRepo.FindByRetreatID(ctx, retreatID)
	if err != nil {
		return nil, err
	}

	stats := &FeedbackStats{Responses: len(items)}
	if len(items) == 0 {
		return stats, nil
	}

	var ratingSum int
	for _, f := range items {
		ratingSum += f.Rating
		switch {
		case f.RecommendScore >= 9:
			stats.Promoters++
		case f.RecommendScore <= 6:
			stats.Detractors++
		}
	}
	stats.AverageRating = float64(ratingSum) / float64(len(items))
	stats.NPS = float64(stats.Promoters-stats.Detractors) / float64(len(items)) * 100
	return stats, nil
}

// ListByBand filters reviews by star rating: low 1-2, medium 3, high 4-5.
// Medium is a single value on a 5-point scale, so the bands cover the whole
// range without overlap.
func (s *feedbackService) ListByBand(ctx context.Context, retreatID uint, band string) ([]models.Feedback, error) {
	var min, max int
	switch band {
	case "":
		min, max = 1, 5
	case "low":
		min, max = 1, 2
	case "medium":
		min, max = 3, 3
	case "high":
		min, max = 4, 5
	default:
		return nil, fmt.Errorf("%w: unknown band %q", ErrInvalidFeedback, band)
	}
	return s.feedbackRepo.FindByRatingRange(ctx, retreatID, min, max)
}
