package service

import (
	"time"

	"github.com/chrisdamba/whattoeat/internal/hours"
	"github.com/chrisdamba/whattoeat/internal/models"
)

func setStatus(r *models.Restaurant, now time.Time) {
	r.Status = models.RestaurantStatusClosed
	if hours.IsOpenNow(r.OpeningHours, now) {
		r.Status = models.RestaurantStatusOpen
	}
	if r.OpeningHours == nil {
		return
	}
	if line, err := hours.DayLine(r.OpeningHours.WeekdayText, now.Weekday()); err == nil {
		r.TodayHours = line
	}
}
