package model

// DailyCount is one point of the weekly booking trend.
type DailyCount struct {
	Date         Date `json:"date"`
	Reservations int  `json:"reservations"`
}

// SeatPopularity is one entry of the popular-locations ranking.
type SeatPopularity struct {
	SeatID       uint64 `json:"-"`
	Location     string `json:"location"`
	SeatNumber   string `json:"seatNumber"`
	Reservations int    `json:"reservations"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalSeats        int              `json:"totalSeats"`
	TotalUsers        int              `json:"totalUsers"`
	TotalReservations int              `json:"totalReservations"`
	TodayReservations int              `json:"todayReservations"`
	OccupancyRate     int              `json:"occupancyRate"`
	WeeklyTrend       []DailyCount     `json:"weeklyTrend"`
	PopularLocations  []SeatPopularity `json:"popularLocations"`
}
